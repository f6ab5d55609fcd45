package sink

import (
	"context"

	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// SnapshotFunc is called for each snapshot.
type SnapshotFunc func(ctx context.Context, snap viewstate.Snapshot) error

// Callback delivers snapshots via a Go function call, for editors living in
// the same binary.
type Callback struct {
	fn SnapshotFunc
}

// NewCallback creates a Callback sink. fn may be nil.
func NewCallback(fn SnapshotFunc) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) Send(ctx context.Context, snap viewstate.Snapshot) error {
	if c.fn != nil {
		return c.fn(ctx, snap)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
