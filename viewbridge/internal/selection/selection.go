// Package selection projects the editor's selection onto the pinhole mask.
package selection

import (
	"context"

	"github.com/hazyhaar/overlay/viewbridge/internal/pinhole"
	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// Overlay delegates to a pinhole overlay. It carries no state of its own.
type Overlay struct {
	pinhole *pinhole.Overlay
}

// New wraps p.
func New(p *pinhole.Overlay) *Overlay {
	return &Overlay{pinhole: p}
}

// SetSelection isolates r.
func (o *Overlay) SetSelection(ctx context.Context, r viewstate.Rect) error {
	return o.pinhole.SetRect(ctx, &r)
}

// RemoveSelection hides the mask.
func (o *Overlay) RemoveSelection(ctx context.Context) error {
	return o.pinhole.SetRect(ctx, nil)
}

// Update re-projects the current selection rect.
func (o *Overlay) Update(ctx context.Context) error {
	return o.pinhole.Update(ctx)
}

// Rect returns the rendered rect, nil when hidden.
func (o *Overlay) Rect() *viewstate.Rect {
	return o.pinhole.Rect()
}

// Remove deletes the overlay elements.
func (o *Overlay) Remove(ctx context.Context) error {
	return o.pinhole.Remove(ctx)
}
