package transform

import (
	"AnimBoard/internal/geom"
	"AnimBoard/internal/state"
)

// Handle names a region of the active object that a drag can hold.
type Handle string

const (
	HandleNone Handle = ""
	HandleMove Handle = "move"
	HandleNW   Handle = "nw"
	HandleN    Handle = "n"
	HandleNE   Handle = "ne"
	HandleE    Handle = "e"
	HandleSE   Handle = "se"
	HandleS    Handle = "s"
	HandleSW   Handle = "sw"
	HandleW    Handle = "w"
)

// Corner reports whether h is one of the four corner handles.
func (h Handle) Corner() bool {
	return h == HandleNW || h == HandleNE || h == HandleSE || h == HandleSW
}

// Top reports whether h drags the top edge.
func (h Handle) Top() bool {
	return h == HandleNW || h == HandleN || h == HandleNE
}

// HandlePoint is a resize handle and its centre.
type HandlePoint struct {
	Handle Handle
	At     geom.Point
}

// Handles returns the eight resize handles of g in hit-test order. Centres
// follow the signed box, so a box dragged up-left has "nw" at bottom-right.
func Handles(g state.Geometry) [8]HandlePoint {
	x, y, w, h := g.X, g.Y, g.Width, g.Height
	return [8]HandlePoint{
		{HandleNW, geom.Pt(x, y)},
		{HandleN, geom.Pt(x+w/2, y)},
		{HandleNE, geom.Pt(x+w, y)},
		{HandleE, geom.Pt(x+w, y+h/2)},
		{HandleSE, geom.Pt(x+w, y+h)},
		{HandleS, geom.Pt(x+w/2, y+h)},
		{HandleSW, geom.Pt(x, y+h)},
		{HandleW, geom.Pt(x, y+h/2)},
	}
}

// HitTest returns the first resize handle whose square of side
// HandleSize/zoom contains p, or HandleNone.
func HitTest(g state.Geometry, p geom.Point, zoom float64) Handle {
	if zoom <= 0 {
		zoom = 1
	}
	half := HandleSize / zoom / 2
	for _, hp := range Handles(g) {
		if p.X >= hp.At.X-half && p.X <= hp.At.X+half && p.Y >= hp.At.Y-half && p.Y <= hp.At.Y+half {
			return hp.Handle
		}
	}
	return HandleNone
}
