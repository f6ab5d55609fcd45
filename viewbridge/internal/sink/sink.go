// Package sink defines output backends for viewbridge snapshots.
package sink

import (
	"context"

	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// Sink is the output interface. Implementations deliver each published
// snapshot to a backend (stdout, webhook, websocket, in-process callback).
type Sink interface {
	Send(ctx context.Context, snap viewstate.Snapshot) error
	Close() error
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
