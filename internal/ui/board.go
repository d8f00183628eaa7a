package ui

import (
	"image/color"

	"AnimBoard/internal/board"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

const (
	minZoom  = 0.3
	maxZoom  = 3.0
	zoomStep = 1.2
)

// Viewport scrolls and zooms a SurfaceWidget.
type Viewport struct {
	*container.Scroll
	board   *board.Board
	surface *SurfaceWidget
}

func NewViewport(b *board.Board, gridSize float32) *Viewport {
	v := &Viewport{board: b}
	v.surface = NewSurfaceWidget(b, gridSize)
	v.surface.OnZoom = func(in bool) {
		if in {
			v.ZoomIn()
		} else {
			v.ZoomOut()
		}
	}
	v.Scroll = container.NewScroll(v.surface)
	return v
}

// Surface returns the scrolled widget.
func (v *Viewport) Surface() *SurfaceWidget { return v.surface }

func (v *Viewport) ZoomIn() {
	v.setZoom(v.board.Zoom() * zoomStep)
}

func (v *Viewport) ZoomOut() {
	v.setZoom(v.board.Zoom() / zoomStep)
}

func (v *Viewport) setZoom(z float64) {
	v.board.SetZoom(min(max(z, minZoom), maxZoom))
	v.surface.Refresh()
	v.Scroll.Refresh()
}

func (v *Viewport) ResetView() {
	v.setZoom(1)
	v.Scroll.ScrollToTop()
	v.Scroll.Offset = fyne.NewPos(0, 0)
	v.Scroll.Refresh()
}

func (v *Viewport) ToggleGrid() {
	v.board.SetGrid(!v.board.ShowGrid())
}

// createGrid lays grid lines every step units over a w×h area.
func createGrid(w, h, step float32) []fyne.CanvasObject {
	if step < 2 {
		return nil
	}
	var lines []fyne.CanvasObject
	gridColor := color.NRGBA{R: 220, G: 220, B: 220, A: 100}

	// Vertical lines
	for x := float32(0); x <= w; x += step {
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, 0)
		line.Position2 = fyne.NewPos(x, h)
		line.StrokeWidth = 0.5
		lines = append(lines, line)
	}

	// Horizontal lines
	for y := float32(0); y <= h; y += step {
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(0, y)
		line.Position2 = fyne.NewPos(w, y)
		line.StrokeWidth = 0.5
		lines = append(lines, line)
	}

	return lines
}
