package devtools

import (
	"context"
	"fmt"

	"github.com/hazyhaar/overlay/viewbridge/internal/hook"
	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// Element is a page element addressed by registry handle (int) or by CSS
// selector (string). Selector elements survive registry resets.
type Element struct {
	rt  *Runtime
	ref any
}

var _ hook.Element = (*Element)(nil)

// containerJS runs without the helper so checking for the container leaves
// no page state behind.
const containerJS = `sel => document.querySelector(sel) !== null`

// Container resolves the root container element by selector. It does not
// inject the helper.
func (rt *Runtime) Container(ctx context.Context, selector string) (*Element, error) {
	res, err := rt.page.Context(ctx).Eval(containerJS, selector)
	if err != nil {
		return nil, fmt.Errorf("devtools: container: %w", err)
	}
	if !res.Value.Bool() {
		return nil, ErrNoContainer
	}
	return &Element{rt: rt, ref: selector}, nil
}

func (e *Element) Rect(ctx context.Context) (viewstate.Rect, error) {
	var r *viewstate.Rect
	if err := e.rt.call(ctx, "rect", &r, e.ref); err != nil {
		return viewstate.Rect{}, err
	}
	if r == nil {
		return viewstate.Rect{}, ErrDetached
	}
	return *r, nil
}

func (e *Element) Parent(ctx context.Context) (hook.Element, error) {
	var id *int
	if err := e.rt.call(ctx, "parent", &id, e.ref); err != nil {
		return nil, err
	}
	if id == nil {
		return nil, ErrDetached
	}
	if *id == 0 {
		return nil, nil
	}
	return &Element{rt: e.rt, ref: *id}, nil
}

func (e *Element) Direction(ctx context.Context) (string, error) {
	var d *string
	if err := e.rt.call(ctx, "direction", &d, e.ref); err != nil {
		return "", err
	}
	if d == nil {
		return "", ErrDetached
	}
	return *d, nil
}
