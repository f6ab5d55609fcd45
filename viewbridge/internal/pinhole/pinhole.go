// Package pinhole maintains an 8-segment mask that covers the overlay area
// everywhere except one rectangular hole.
package pinhole

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// Segment names, in rendering order.
const (
	Left        = "left"
	TopLeft     = "top-left"
	Top         = "top"
	TopRight    = "top-right"
	Right       = "right"
	BottomRight = "bottom-right"
	Bottom      = "bottom"
	BottomLeft  = "bottom-left"
)

// Names lists the segment names in rendering order.
var Names = [8]string{Left, TopLeft, Top, TopRight, Right, BottomRight, Bottom, BottomLeft}

// Segment is one absolutely positioned mask piece. When StretchX is set the
// segment runs from Left to the container's right edge and Width is ignored;
// StretchY does the same vertically.
type Segment struct {
	Name     string  `json:"name"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	StretchX bool    `json:"stretch_x,omitempty"`
	StretchY bool    `json:"stretch_y,omitempty"`
}

// Bounds resolves the segment for a container of size w×h.
func (s Segment) Bounds(w, h float64) viewstate.Rect {
	r := viewstate.Rect{X: s.Left, Y: s.Top, Width: s.Width, Height: s.Height}
	if s.StretchX {
		r.Width = w - s.Left
	}
	if s.StretchY {
		r.Height = h - s.Top
	}
	return r
}

// Layout tiles the area outside hole. The eight segments cover the container
// minus the hole with no gaps and no overlaps for any hole inside the
// container.
func Layout(hole viewstate.Rect) [8]Segment {
	x, y, w, h := hole.X, hole.Y, hole.Width, hole.Height
	return [8]Segment{
		{Name: Left, Left: 0, Top: y, Width: x, Height: h},
		{Name: TopLeft, Left: 0, Top: 0, Width: x, Height: y},
		{Name: Top, Left: x, Top: 0, Width: w, Height: y},
		{Name: TopRight, Left: x + w, Top: 0, Height: y, StretchX: true},
		{Name: Right, Left: x + w, Top: y, Height: h, StretchX: true},
		{Name: BottomRight, Left: x + w, Top: y + h, StretchX: true, StretchY: true},
		{Name: Bottom, Left: x, Top: y + h, Width: w, StretchY: true},
		{Name: BottomLeft, Left: 0, Top: y + h, Width: x, StretchY: true},
	}
}

// Surface renders segments. Implementations own the overlay elements.
type Surface interface {
	// Show makes all eight segments visible with the given geometry, in one
	// step.
	Show(ctx context.Context, segs [8]Segment) error
	// Hide hides all eight segments in one step.
	Hide(ctx context.Context) error
	// Remove deletes the overlay elements.
	Remove(ctx context.Context) error
}

// Overlay is the pinhole mask state. It is safe for concurrent use.
type Overlay struct {
	surface Surface
	logger  *slog.Logger

	mu   sync.Mutex
	hole *viewstate.Rect
}

// New creates an Overlay drawing on surface. It starts hidden.
func New(surface Surface, logger *slog.Logger) *Overlay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Overlay{surface: surface, logger: logger}
}

// SetRect shows the mask around r, or hides it when r is nil.
func (o *Overlay) SetRect(ctx context.Context, r *viewstate.Rect) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if r == nil {
		o.hole = nil
	} else {
		hole := *r
		o.hole = &hole
	}
	return o.applyLocked(ctx)
}

// Update re-applies the current rect, e.g. after the layout shifted without
// a rect change.
func (o *Overlay) Update(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.applyLocked(ctx)
}

// Rect returns the rect currently rendered, or nil when hidden.
func (o *Overlay) Rect() *viewstate.Rect {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hole == nil {
		return nil
	}
	r := *o.hole
	return &r
}

// Remove deletes the overlay elements. The overlay must not be used after.
func (o *Overlay) Remove(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hole = nil
	return o.surface.Remove(ctx)
}

func (o *Overlay) applyLocked(ctx context.Context) error {
	if o.hole == nil {
		return o.surface.Hide(ctx)
	}
	return o.surface.Show(ctx, Layout(*o.hole))
}
