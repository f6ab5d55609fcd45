// Package walker traverses the render tree exposed by an introspection hook.
package walker

import (
	"context"

	"github.com/hazyhaar/overlay/viewbridge/internal/hook"
)

// ChildrenFunc lists a node's children in order.
type ChildrenFunc func(ctx context.Context, n hook.Node) ([]hook.Node, error)

// VisitFunc is called once per node, before any of its descendants.
type VisitFunc func(n hook.Node)

// Stats counts what a walk did.
type Stats struct {
	Visited int
	// Unlisted counts nodes whose children could not be listed; their
	// subtrees were not visited.
	Unlisted int
}

// Walk visits every node reachable from roots in pre-order: a node, then its
// children in their original order. Roots are walked one after the other.
//
// The traversal uses an explicit stack so deep trees do not grow the Go
// stack. The tree must be acyclic; the host runtime guarantees that shape and
// Walk does not check it.
//
// A children error skips that node's subtree and the walk continues. Walk
// only stops early when ctx is cancelled, in which case ctx.Err() is
// returned together with the stats so far.
func Walk(ctx context.Context, roots []hook.Node, children ChildrenFunc, visit VisitFunc) (Stats, error) {
	var st Stats

	stack := make([]hook.Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visit(n)
		st.Visited++

		kids, err := children(ctx, n)
		if err != nil {
			st.Unlisted++
			continue
		}
		// Push in reverse so the first child pops first.
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}

	return st, nil
}
