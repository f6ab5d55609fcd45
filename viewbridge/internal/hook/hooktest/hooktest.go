// Package hooktest provides an in-memory render tree implementing hook.Hook
// for tests.
package hooktest

import (
	"context"
	"errors"
	"sync"

	"github.com/hazyhaar/overlay/viewbridge/internal/hook"
	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// ErrBroken is returned by elements and nodes marked as broken.
var ErrBroken = errors.New("hooktest: broken")

// Node is a fake render node.
type Node struct {
	Name     string
	Props    viewstate.Props
	Children []*Node
	Host     *Element
	// Broken makes Props and Children fail for this node.
	Broken bool
}

// Element is a fake host element.
type Element struct {
	Name   string
	Bounds viewstate.Rect
	Up     *Element
	Dir    string
	// Broken makes Rect fail for this element.
	Broken bool
}

// Rect implements hook.Element.
func (e *Element) Rect(context.Context) (viewstate.Rect, error) {
	if e.Broken {
		return viewstate.Rect{}, ErrBroken
	}
	return e.Bounds, nil
}

// Parent implements hook.Element.
func (e *Element) Parent(context.Context) (hook.Element, error) {
	if e.Up == nil {
		return nil, nil
	}
	return e.Up, nil
}

// Direction implements hook.Element.
func (e *Element) Direction(context.Context) (string, error) {
	if e.Dir == "" {
		return "row", nil
	}
	return e.Dir, nil
}

// Hook is an in-memory hook.Hook. The zero value reports zero roots.
type Hook struct {
	mu      sync.Mutex
	roots   []*Node
	missing bool
	lookups int
}

// New creates a Hook over the given roots.
func New(roots ...*Node) *Hook {
	return &Hook{roots: roots}
}

// Missing creates a Hook that behaves as if the page exposed no hook.
func Missing() *Hook {
	return &Hook{missing: true}
}

// SetRoots replaces the tree, simulating a re-render.
func (h *Hook) SetRoots(roots ...*Node) {
	h.mu.Lock()
	h.roots = roots
	h.mu.Unlock()
}

// HostLookups returns how many HostElement calls were made.
func (h *Hook) HostLookups() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lookups
}

// Roots implements hook.Hook.
func (h *Hook) Roots(context.Context) ([]hook.Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.missing {
		return nil, hook.ErrNoHook
	}
	out := make([]hook.Node, len(h.roots))
	for i, r := range h.roots {
		out[i] = r
	}
	return out, nil
}

// Children implements hook.Hook.
func (h *Hook) Children(_ context.Context, n hook.Node) ([]hook.Node, error) {
	node := n.(*Node)
	if node.Broken {
		return nil, ErrBroken
	}
	out := make([]hook.Node, len(node.Children))
	for i, c := range node.Children {
		out[i] = c
	}
	return out, nil
}

// Props implements hook.Hook.
func (h *Hook) Props(_ context.Context, n hook.Node) (viewstate.Props, error) {
	node := n.(*Node)
	if node.Broken {
		return nil, ErrBroken
	}
	return node.Props, nil
}

// HostElement implements hook.Hook.
func (h *Hook) HostElement(_ context.Context, n hook.Node) (hook.Element, error) {
	h.mu.Lock()
	h.lookups++
	h.mu.Unlock()
	node := n.(*Node)
	if node.Host == nil {
		return nil, nil
	}
	return node.Host, nil
}

// Tagged builds the two-level shape the instrumentation produces for an
// authored element: a wrapper carrying the node id whose single child holds
// the authored props.
func Tagged(key, id string, host *Element, props viewstate.Props, children ...*Node) *Node {
	inner := &Node{Name: id + "/inner", Props: props, Children: children}
	return &Node{
		Name:     id,
		Props:    viewstate.Props{key: id},
		Children: []*Node{inner},
		Host:     host,
	}
}
