// Package geometry holds the rectangle math of the view-state builder.
package geometry

import "github.com/hazyhaar/overlay/viewbridge/viewstate"

// RelativeBoundingBox returns child's rectangle expressed relative to
// container's top-left corner. Both rectangles are absolute (viewport)
// rectangles read in the same layout pass; no reflow is forced here.
func RelativeBoundingBox(container, child viewstate.Rect) viewstate.Rect {
	return viewstate.Rect{
		X:      child.X - container.X,
		Y:      child.Y - container.Y,
		Width:  child.Width,
		Height: child.Height,
	}
}
