// Package hook defines the capabilities viewbridge needs from a rendering
// runtime's introspection hook. The core (walker, builder, bridge) only
// depends on these interfaces; the devtools package implements them over a
// live page and hooktest implements them in memory.
package hook

import (
	"context"
	"errors"

	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// ErrNoHook is returned by Roots when the page exposes no introspection hook
// (or no attached rendering runtime).
var ErrNoHook = errors.New("hook: introspection hook not available")

// Node is an opaque render-tree node owned by the host runtime. viewbridge
// never mutates it and only passes it back to the Hook that produced it.
type Node any

// Hook enumerates the render tree and resolves nodes to host elements.
// Only the first attached rendering runtime is addressed.
type Hook interface {
	// Roots lists the tree roots, in the runtime's order.
	Roots(ctx context.Context) ([]Node, error)
	// Children lists the node's children in order. Leaves return an empty slice.
	Children(ctx context.Context, n Node) ([]Node, error)
	// Props returns the node's prop bag. The result may be shared with the
	// runtime; callers clone before retaining it.
	Props(ctx context.Context, n Node) (viewstate.Props, error)
	// HostElement resolves the on-screen element for a node. It returns
	// nil, nil when the node has none.
	HostElement(ctx context.Context, n Node) (Element, error)
}

// Element is an on-screen host element owned by the page document.
type Element interface {
	// Rect is the element's absolute bounding rectangle.
	Rect(ctx context.Context) (viewstate.Rect, error)
	// Parent returns the parent element, or nil, nil at the top.
	Parent(ctx context.Context) (Element, error)
	// Direction is the resolved layout-flow axis ("row", "column", ...).
	Direction(ctx context.Context) (string, error)
}
