// Package builder derives a ViewState from one full pass over the render
// tree: it classifies every node, resolves tagged nodes to host elements and
// records their geometry and slot layout.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/overlay/viewbridge/internal/geometry"
	"github.com/hazyhaar/overlay/viewbridge/internal/hook"
	"github.com/hazyhaar/overlay/viewbridge/internal/walker"
	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// Keys are the reserved prop-bag keys shared with the rendering layer.
type Keys struct {
	NodeID   string
	SlotName string
	SlotType string
	ParentID string
}

// DefaultKeys returns the default reserved keys.
func DefaultKeys() Keys {
	return Keys{
		NodeID:   viewstate.DefaultNodeIDKey,
		SlotName: viewstate.DefaultSlotNameKey,
		SlotType: viewstate.DefaultSlotTypeKey,
		ParentID: viewstate.DefaultParentIDKey,
	}
}

func (k *Keys) defaults() {
	d := DefaultKeys()
	if k.NodeID == "" {
		k.NodeID = d.NodeID
	}
	if k.SlotName == "" {
		k.SlotName = d.SlotName
	}
	if k.SlotType == "" {
		k.SlotType = d.SlotType
	}
	if k.ParentID == "" {
		k.ParentID = d.ParentID
	}
}

// Stats summarises one pass.
type Stats struct {
	Visited    int
	Tagged     int // element entries written, duplicates included
	Slots      int
	Skipped    int // tagged nodes or slot markers that produced nothing
	Duplicates int // entries that overwrote an earlier one with the same id
	NoHook     bool
}

// Builder runs passes against one hook.
type Builder struct {
	hook   hook.Hook
	keys   Keys
	logger *slog.Logger
}

// New creates a Builder. Empty keys fall back to the defaults.
func New(h hook.Hook, keys Keys, logger *slog.Logger) *Builder {
	keys.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{hook: h, keys: keys, logger: logger}
}

// Keys returns the reserved keys in use.
func (b *Builder) Keys() Keys { return b.keys }

// Build runs one pass. Every rect is relative to container.
//
// A missing hook is not an error: it logs a warning and returns an empty
// ViewState. Per-node failures skip that node. Build only returns an error
// when no consistent snapshot can be produced at all (container unreadable,
// roots unreadable, ctx cancelled); the caller must then keep its previous
// snapshot.
func (b *Builder) Build(ctx context.Context, container hook.Element) (viewstate.ViewState, Stats, error) {
	var st Stats
	result := make(viewstate.ViewState)

	roots, err := b.hook.Roots(ctx)
	if errors.Is(err, hook.ErrNoHook) {
		b.logger.Warn("builder: introspection hook not available, empty view state")
		st.NoHook = true
		return result, st, nil
	}
	if err != nil {
		return nil, st, fmt.Errorf("builder: list roots: %w", err)
	}

	origin, err := container.Rect(ctx)
	if err != nil {
		return nil, st, fmt.Errorf("builder: container rect: %w", err)
	}

	p := &pass{
		Builder: b,
		ctx:     ctx,
		origin:  origin,
		result:  result,
		st:      &st,
	}

	ws, err := walker.Walk(ctx, roots, b.hook.Children, p.visit)
	st.Visited = ws.Visited
	if err != nil {
		return nil, st, fmt.Errorf("builder: walk: %w", err)
	}
	if ws.Unlisted > 0 {
		b.logger.Debug("builder: subtrees not listed", "count", ws.Unlisted)
	}
	return result, st, nil
}

// pass holds the state of one Build call.
type pass struct {
	*Builder
	ctx    context.Context
	origin viewstate.Rect
	result viewstate.ViewState
	st     *Stats
}

func (p *pass) visit(n hook.Node) {
	props, err := p.hook.Props(p.ctx, n)
	if err != nil {
		p.logger.Debug("builder: read props failed", "error", err)
		return
	}

	if id, ok := props.String(p.keys.NodeID); ok {
		p.element(n, id)
		return
	}
	if slot, ok := props.String(p.keys.SlotName); ok {
		p.slot(n, slot, props)
	}
}

func (p *pass) element(n hook.Node, id string) {
	el, err := p.hook.HostElement(p.ctx, n)
	if err != nil || el == nil {
		p.skip("element", id, err)
		return
	}
	abs, err := el.Rect(p.ctx)
	if err != nil {
		p.skip("element", id, err)
		return
	}

	if _, dup := p.result[id]; dup {
		p.st.Duplicates++
	}
	// Last write wins for duplicate ids.
	p.result[id] = viewstate.NodeViewState{
		NodeID: id,
		Rect:   geometry.RelativeBoundingBox(p.origin, abs),
		Props:  p.unwrapProps(n),
		Slots:  make(map[string]viewstate.SlotViewState),
	}
	p.st.Tagged++
}

// unwrapProps returns a copy of the first child's props. The instrumentation
// wraps each authored element in one indirection layer.
func (p *pass) unwrapProps(n hook.Node) viewstate.Props {
	kids, err := p.hook.Children(p.ctx, n)
	if err != nil || len(kids) == 0 {
		return viewstate.Props{}
	}
	props, err := p.hook.Props(p.ctx, kids[0])
	if err != nil {
		return viewstate.Props{}
	}
	return props.Clone()
}

func (p *pass) slot(n hook.Node, name string, props viewstate.Props) {
	parentID, _ := props.String(p.keys.ParentID)
	parent, ok := p.result[parentID]
	if !ok {
		p.skip("slot", name, nil)
		return
	}

	first, err := p.hook.HostElement(p.ctx, n)
	if err != nil || first == nil {
		p.skip("slot", name, err)
		return
	}
	box, err := first.Parent(p.ctx)
	if err != nil || box == nil {
		p.skip("slot", name, err)
		return
	}
	abs, err := box.Rect(p.ctx)
	if err != nil {
		p.skip("slot", name, err)
		return
	}
	dir, err := box.Direction(p.ctx)
	if err != nil {
		p.skip("slot", name, err)
		return
	}

	typ, _ := props.String(p.keys.SlotType)
	parent.Slots[name] = viewstate.SlotViewState{
		Type:      typ,
		Rect:      geometry.RelativeBoundingBox(p.origin, abs),
		Direction: dir,
	}
	p.st.Slots++
}

func (p *pass) skip(kind, name string, err error) {
	p.st.Skipped++
	if err != nil {
		p.logger.Debug("builder: skipped node", "kind", kind, "name", name, "error", err)
	}
}
