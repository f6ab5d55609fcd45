package devtools

import (
	"context"
	"strconv"

	"github.com/hazyhaar/overlay/viewbridge/internal/pinhole"
)

// Surface renders pinhole segments as absolutely positioned elements inside
// the container.
type Surface struct {
	rt *Runtime
}

var _ pinhole.Surface = (*Surface)(nil)

// NewSurface creates the eight segment elements, hidden, inside the
// container matched by selector.
func NewSurface(ctx context.Context, rt *Runtime, selector string) (*Surface, error) {
	var ok bool
	if err := rt.call(ctx, "overlayCreate", &ok, selector, pinhole.Names[:]); err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoContainer
	}
	return &Surface{rt: rt}, nil
}

type segmentCSS struct {
	Name  string            `json:"name"`
	Style map[string]string `json:"style"`
}

func (s *Surface) Show(ctx context.Context, segs [8]pinhole.Segment) error {
	css := make([]segmentCSS, len(segs))
	for i, seg := range segs {
		css[i] = segmentCSS{Name: seg.Name, Style: Style(seg)}
	}
	return s.rt.call(ctx, "overlayShow", nil, css)
}

func (s *Surface) Hide(ctx context.Context) error {
	return s.rt.call(ctx, "overlayHide", nil)
}

func (s *Surface) Remove(ctx context.Context) error {
	return s.rt.call(ctx, "overlayRemove", nil)
}

// Style renders a segment as inline CSS. Stretched axes anchor to the far
// edge of the container instead of carrying a size.
func Style(seg pinhole.Segment) map[string]string {
	st := map[string]string{
		"left": px(seg.Left),
		"top":  px(seg.Top),
	}
	if seg.StretchX {
		st["right"] = "0px"
	} else {
		st["width"] = px(seg.Width)
	}
	if seg.StretchY {
		st["bottom"] = "0px"
	} else {
		st["height"] = px(seg.Height)
	}
	return st
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
