package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/hazyhaar/overlay/viewbridge/internal/hook/hooktest"
	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

const idKey = viewstate.DefaultNodeIDKey

var container = &hooktest.Element{Name: "root", Bounds: viewstate.Rect{X: 100, Y: 100, Width: 500, Height: 500}}

func build(t *testing.T, h *hooktest.Hook) (viewstate.ViewState, Stats) {
	t.Helper()
	vs, st, err := New(h, Keys{}, nil).Build(context.Background(), container)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return vs, st
}

func slotMarker(name, typ, parentID string, host *hooktest.Element) *hooktest.Node {
	return &hooktest.Node{
		Name: "slot:" + name,
		Props: viewstate.Props{
			viewstate.DefaultSlotNameKey: name,
			viewstate.DefaultSlotTypeKey: typ,
			viewstate.DefaultParentIDKey: parentID,
		},
		Host: host,
	}
}

func TestBuild_SingleTaggedChild(t *testing.T) {
	host := &hooktest.Element{Bounds: viewstate.Rect{X: 110, Y: 120, Width: 100, Height: 50}, Up: container}
	root := &hooktest.Node{Name: "app", Children: []*hooktest.Node{
		hooktest.Tagged(idKey, "n1", host, viewstate.Props{"label": "Hello"}),
	}}

	vs, st := build(t, hooktest.New(root))

	got, ok := vs["n1"]
	if !ok {
		t.Fatalf("n1 missing from %v", vs)
	}
	want := viewstate.Rect{X: 10, Y: 20, Width: 100, Height: 50}
	if got.Rect != want {
		t.Errorf("Rect: got %+v, want %+v", got.Rect, want)
	}
	if got.NodeID != "n1" {
		t.Errorf("NodeID: got %q", got.NodeID)
	}
	if got.Props["label"] != "Hello" {
		t.Errorf("Props: got %v, want label=Hello from first child", got.Props)
	}
	if got.Slots == nil || len(got.Slots) != 0 {
		t.Errorf("Slots: got %v, want empty map", got.Slots)
	}
	if st.Visited != 3 || st.Tagged != 1 {
		t.Errorf("stats: got %+v", st)
	}
}

func TestBuild_ZeroRoots(t *testing.T) {
	vs, _ := build(t, hooktest.New())
	if vs == nil || len(vs) != 0 {
		t.Fatalf("zero roots: got %v, want empty map", vs)
	}
}

func TestBuild_MissingHook(t *testing.T) {
	vs, st, err := New(hooktest.Missing(), Keys{}, nil).Build(context.Background(), container)
	if err != nil {
		t.Fatalf("missing hook should not error: %v", err)
	}
	if !st.NoHook {
		t.Error("NoHook not reported")
	}
	if vs == nil || len(vs) != 0 {
		t.Fatalf("missing hook: got %v, want empty map", vs)
	}
}

func TestBuild_UnresolvedHostSkipped(t *testing.T) {
	host := &hooktest.Element{Bounds: viewstate.Rect{X: 100, Y: 100, Width: 1, Height: 1}}
	root := &hooktest.Node{Children: []*hooktest.Node{
		hooktest.Tagged(idKey, "ghost", nil, nil),
		hooktest.Tagged(idKey, "real", host, nil),
	}}

	vs, st := build(t, hooktest.New(root))
	if _, ok := vs["ghost"]; ok {
		t.Error("node without host element should be skipped")
	}
	if _, ok := vs["real"]; !ok {
		t.Error("rest of the pass should proceed")
	}
	if st.Skipped != 1 {
		t.Errorf("Skipped: got %d, want 1", st.Skipped)
	}
}

func TestBuild_BrokenElementSkipped(t *testing.T) {
	broken := &hooktest.Element{Broken: true}
	root := &hooktest.Node{Children: []*hooktest.Node{hooktest.Tagged(idKey, "bad", broken, nil)}}

	vs, st := build(t, hooktest.New(root))
	if len(vs) != 0 || st.Skipped != 1 {
		t.Fatalf("broken element: got %v, stats %+v", vs, st)
	}
}

func TestBuild_DuplicateIDsLastWriteWins(t *testing.T) {
	first := &hooktest.Element{Bounds: viewstate.Rect{X: 100, Y: 100, Width: 10, Height: 10}}
	second := &hooktest.Element{Bounds: viewstate.Rect{X: 300, Y: 350, Width: 20, Height: 30}}
	root := &hooktest.Node{Children: []*hooktest.Node{
		hooktest.Tagged(idKey, "dup", first, viewstate.Props{"v": "first"}),
		hooktest.Tagged(idKey, "dup", second, viewstate.Props{"v": "second"}),
	}}

	vs, st := build(t, hooktest.New(root))
	if len(vs) != 1 {
		t.Fatalf("entries: got %d, want 1", len(vs))
	}
	got := vs["dup"]
	if got.Rect != (viewstate.Rect{X: 200, Y: 250, Width: 20, Height: 30}) {
		t.Errorf("Rect: got %+v, want the later node's rect", got.Rect)
	}
	if got.Props["v"] != "second" {
		t.Errorf("Props: got %v, want the later node's props", got.Props)
	}
	if st.Duplicates != 1 {
		t.Errorf("Duplicates: got %d, want 1", st.Duplicates)
	}
}

func TestBuild_Slot(t *testing.T) {
	parentHost := &hooktest.Element{Bounds: viewstate.Rect{X: 100, Y: 100, Width: 400, Height: 300}}
	slotBox := &hooktest.Element{Bounds: viewstate.Rect{X: 120, Y: 150, Width: 360, Height: 200}, Dir: "column"}
	firstSlotted := &hooktest.Element{Bounds: viewstate.Rect{X: 120, Y: 150, Width: 50, Height: 50}, Up: slotBox}

	card := hooktest.Tagged(idKey, "card", parentHost, viewstate.Props{"title": "Card"},
		slotMarker("body", "children", "card", firstSlotted),
	)

	vs, st := build(t, hooktest.New(card))

	slot, ok := vs["card"].Slots["body"]
	if !ok {
		t.Fatalf("slot body missing: %+v", vs["card"])
	}
	want := viewstate.SlotViewState{
		Type:      "children",
		Rect:      viewstate.Rect{X: 20, Y: 50, Width: 360, Height: 200},
		Direction: "column",
	}
	if slot != want {
		t.Errorf("slot: got %+v, want %+v", slot, want)
	}
	if st.Slots != 1 {
		t.Errorf("Slots: got %d, want 1", st.Slots)
	}
}

func TestBuild_SlotUnknownParentSkipped(t *testing.T) {
	box := &hooktest.Element{Bounds: viewstate.Rect{X: 100, Y: 100, Width: 5, Height: 5}}
	first := &hooktest.Element{Up: box}
	root := &hooktest.Node{Children: []*hooktest.Node{slotMarker("body", "children", "nobody", first)}}

	vs, st := build(t, hooktest.New(root))
	if len(vs) != 0 || st.Skipped != 1 {
		t.Fatalf("orphan slot: got %v, stats %+v", vs, st)
	}
}

func TestBuild_SlotWithoutContainerSkipped(t *testing.T) {
	parentHost := &hooktest.Element{Bounds: viewstate.Rect{X: 100, Y: 100, Width: 10, Height: 10}}
	detached := &hooktest.Element{Bounds: viewstate.Rect{X: 1, Y: 1, Width: 1, Height: 1}}

	card := hooktest.Tagged(idKey, "card", parentHost, nil,
		slotMarker("body", "children", "card", detached),
		slotMarker("footer", "children", "card", nil),
	)

	vs, st := build(t, hooktest.New(card))
	if len(vs["card"].Slots) != 0 {
		t.Fatalf("slots: got %v, want none", vs["card"].Slots)
	}
	if st.Skipped != 2 {
		t.Errorf("Skipped: got %d, want 2", st.Skipped)
	}
}

func TestBuild_TaggedNodesInterspersed(t *testing.T) {
	a := &hooktest.Element{Bounds: viewstate.Rect{X: 100, Y: 100, Width: 1, Height: 1}}
	b := &hooktest.Element{Bounds: viewstate.Rect{X: 101, Y: 101, Width: 1, Height: 1}}
	deep := &hooktest.Node{Children: []*hooktest.Node{{Children: []*hooktest.Node{
		hooktest.Tagged(idKey, "b", b, nil),
	}}}}
	root := &hooktest.Node{Children: []*hooktest.Node{
		hooktest.Tagged(idKey, "a", a, nil, deep),
	}}

	vs, _ := build(t, hooktest.New(root))
	if _, ok := vs["a"]; !ok {
		t.Error("outer tagged node missing")
	}
	if _, ok := vs["b"]; !ok {
		t.Error("tagged node nested under a tagged node missing")
	}
}

func TestBuild_ConsecutivePassesEqual(t *testing.T) {
	host := &hooktest.Element{Bounds: viewstate.Rect{X: 150, Y: 160, Width: 30, Height: 40}}
	box := &hooktest.Element{Bounds: viewstate.Rect{X: 150, Y: 180, Width: 30, Height: 20}, Dir: "row"}
	card := hooktest.Tagged(idKey, "c", host, viewstate.Props{"n": float64(1), "tags": []any{"x"}},
		slotMarker("s", "children", "c", &hooktest.Element{Up: box}),
	)
	h := hooktest.New(card)
	b := New(h, Keys{}, nil)

	first, _, err := b.Build(context.Background(), container)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := b.Build(context.Background(), container)
	if err != nil {
		t.Fatal(err)
	}
	if !viewstate.Equal(first, second) {
		t.Fatalf("passes differ:\n%v\n%v", first, second)
	}
}

func TestBuild_PropsAreSnapshots(t *testing.T) {
	host := &hooktest.Element{Bounds: viewstate.Rect{X: 100, Y: 100, Width: 1, Height: 1}}
	live := viewstate.Props{"label": "before"}
	root := hooktest.Tagged(idKey, "n", host, live)

	vs, _ := build(t, hooktest.New(root))
	live["label"] = "after"

	if vs["n"].Props["label"] != "before" {
		t.Fatalf("props alias the live bag: got %v", vs["n"].Props)
	}
}

func TestBuild_CustomKeys(t *testing.T) {
	host := &hooktest.Element{Bounds: viewstate.Rect{X: 100, Y: 100, Width: 1, Height: 1}}
	root := hooktest.Tagged("data-sid", "custom", host, nil)

	vs, _, err := New(hooktest.New(root), Keys{NodeID: "data-sid"}, nil).Build(context.Background(), container)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := vs["custom"]; !ok {
		t.Fatalf("custom key not honoured: %v", vs)
	}
}

func TestBuild_ContainerUnreadable(t *testing.T) {
	_, _, err := New(hooktest.New(), Keys{}, nil).Build(context.Background(), &hooktest.Element{Broken: true})
	if !errors.Is(err, hooktest.ErrBroken) {
		t.Fatalf("err: got %v, want ErrBroken", err)
	}
}
