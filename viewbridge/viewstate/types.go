// Package viewstate defines the structured types published by viewbridge.
// These are the public API contract: an editor imports this package to read
// the geometry and slot layout of the tagged nodes of a live page.
package viewstate

// Default reserved prop keys. They are the contract with the rendering layer
// that produces tagged nodes.
const (
	DefaultNodeIDKey   = "data-viewbridge-id"
	DefaultSlotNameKey = "data-viewbridge-slot"
	DefaultSlotTypeKey = "data-viewbridge-slot-type"
	DefaultParentIDKey = "parentId"
)

// Rect is a rectangle relative to the bridge's root container, not to the
// viewport.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Props is a snapshot of a render node's prop bag.
type Props map[string]any

// SlotViewState is the layout of one named slot of a tagged element.
type SlotViewState struct {
	Type      string `json:"type"`
	Rect      Rect   `json:"rect"`
	Direction string `json:"direction"` // resolved flex-direction of the slot container
}

// NodeViewState is the view of one tagged element.
type NodeViewState struct {
	NodeID string                   `json:"nodeId"`
	Rect   Rect                     `json:"rect"`
	Props  Props                    `json:"props"`
	Slots  map[string]SlotViewState `json:"slots"`
}

// ViewState maps node ids to their view. It is rebuilt wholesale on every
// pass; within one pass every Rect is relative to the same container.
type ViewState map[string]NodeViewState

// Snapshot is the envelope emitted to sinks after each pass.
type Snapshot struct {
	ID        string    `json:"id"`  // UUIDv7
	Seq       uint64    `json:"seq"` // monotonically increasing per bridge
	PageURL   string    `json:"page_url"`
	ViewState ViewState `json:"view_state"`
	Timestamp int64     `json:"timestamp"` // epoch milliseconds
}
