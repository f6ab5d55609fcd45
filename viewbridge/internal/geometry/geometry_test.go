package geometry

import (
	"testing"

	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

func TestRelativeBoundingBox_Scenario(t *testing.T) {
	container := viewstate.Rect{X: 100, Y: 100, Width: 500, Height: 500}
	child := viewstate.Rect{X: 110, Y: 120, Width: 100, Height: 50}

	got := RelativeBoundingBox(container, child)
	want := viewstate.Rect{X: 10, Y: 20, Width: 100, Height: 50}
	if got != want {
		t.Fatalf("RelativeBoundingBox: got %+v, want %+v", got, want)
	}
}

func TestRelativeBoundingBox_TranslationInvariant(t *testing.T) {
	container := viewstate.Rect{X: 40, Y: 12, Width: 800, Height: 600}
	child := viewstate.Rect{X: 95.5, Y: 300, Width: 20, Height: 7.25}
	base := RelativeBoundingBox(container, child)

	offsets := [][2]float64{{0, 0}, {13, -7}, {-250, 1000}, {0.5, 0.25}}
	for _, off := range offsets {
		c := container
		c.X += off[0]
		c.Y += off[1]
		ch := child
		ch.X += off[0]
		ch.Y += off[1]

		if got := RelativeBoundingBox(c, ch); got != base {
			t.Errorf("offset %v: got %+v, want %+v", off, got, base)
		}
	}
}

func TestRelativeBoundingBox_ChildOutsideContainer(t *testing.T) {
	container := viewstate.Rect{X: 100, Y: 100, Width: 10, Height: 10}
	child := viewstate.Rect{X: 50, Y: 20, Width: 5, Height: 5}

	got := RelativeBoundingBox(container, child)
	if got.X != -50 || got.Y != -80 {
		t.Fatalf("negative offsets: got %+v", got)
	}
}
