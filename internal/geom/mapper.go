package geom

// Map converts a pointer position in display coordinates into surface space.
//
// bounds is where the surface element is shown on screen; it may be larger or
// smaller than the surface's intrinsic pixel size (zoom, DPI scaling). The
// pointer offset from the element's top-left is scaled by
// surfaceWidth/bounds.Width and surfaceHeight/bounds.Height. A zero-sized
// element maps every pointer to its offset unscaled.
func Map(pointer Point, bounds Rect, surfaceWidth, surfaceHeight float64) Point {
	sx, sy := 1.0, 1.0
	if bounds.Width != 0 {
		sx = surfaceWidth / bounds.Width
	}
	if bounds.Height != 0 {
		sy = surfaceHeight / bounds.Height
	}
	return Point{
		X: (pointer.X - bounds.X) * sx,
		Y: (pointer.Y - bounds.Y) * sy,
	}
}
