package devtools

import (
	"context"

	"github.com/hazyhaar/overlay/viewbridge/internal/hook"
	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// handle identifies a render node in the page-side registry. Handles are
// only valid until the next Roots call.
type handle int

// Hook reads the first renderer attached to the page's devtools hook.
type Hook struct {
	rt *Runtime
}

var _ hook.Hook = (*Hook)(nil)

// NewHook returns a Hook over rt.
func NewHook(rt *Runtime) *Hook {
	return &Hook{rt: rt}
}

// Roots resets the handle registry and lists the committed tree roots.
func (h *Hook) Roots(ctx context.Context) ([]hook.Node, error) {
	var r struct {
		Hook  bool  `json:"hook"`
		Roots []int `json:"roots"`
	}
	if err := h.rt.call(ctx, "roots", &r); err != nil {
		return nil, err
	}
	if !r.Hook {
		return nil, hook.ErrNoHook
	}
	nodes := make([]hook.Node, len(r.Roots))
	for i, id := range r.Roots {
		nodes[i] = handle(id)
	}
	return nodes, nil
}

func (h *Hook) Children(ctx context.Context, n hook.Node) ([]hook.Node, error) {
	var ids *[]int
	if err := h.rt.call(ctx, "children", &ids, int(n.(handle))); err != nil {
		return nil, err
	}
	if ids == nil {
		return nil, ErrDetached
	}
	nodes := make([]hook.Node, len(*ids))
	for i, id := range *ids {
		nodes[i] = handle(id)
	}
	return nodes, nil
}

func (h *Hook) Props(ctx context.Context, n hook.Node) (viewstate.Props, error) {
	var p *viewstate.Props
	if err := h.rt.call(ctx, "props", &p, int(n.(handle))); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrDetached
	}
	return *p, nil
}

// HostElement returns the first on-screen element at or below n.
func (h *Hook) HostElement(ctx context.Context, n hook.Node) (hook.Element, error) {
	var id *int
	if err := h.rt.call(ctx, "host", &id, int(n.(handle))); err != nil {
		return nil, err
	}
	if id == nil {
		return nil, ErrDetached
	}
	if *id == 0 {
		return nil, nil
	}
	return &Element{rt: h.rt, ref: *id}, nil
}
