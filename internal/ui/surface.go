package ui

import (
	"image"
	"image/color"

	"AnimBoard/internal/board"
	"AnimBoard/internal/geom"
	"AnimBoard/internal/transform"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// SurfaceWidget shows a board's surfaces at the board's zoom and feeds it
// pointer input. It takes over the board's OnRedraw and OnEffectsFrame.
type SurfaceWidget struct {
	widget.BaseWidget
	board    *board.Board
	gridSize float32
	pressed  bool

	fx *canvas.Image

	// OnZoom fires on mouse wheel; in is true for wheel up.
	OnZoom func(in bool)
}

var _ fyne.Widget = (*SurfaceWidget)(nil)
var _ fyne.Draggable = (*SurfaceWidget)(nil)
var _ fyne.Scrollable = (*SurfaceWidget)(nil)
var _ desktop.Mouseable = (*SurfaceWidget)(nil)

func NewSurfaceWidget(b *board.Board, gridSize float32) *SurfaceWidget {
	s := &SurfaceWidget{board: b, gridSize: gridSize}
	s.fx = newSurfaceImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	s.ExtendBaseWidget(s)
	b.OnRedraw = s.Refresh
	b.OnEffectsFrame = s.showEffects
	return s
}

func newSurfaceImage(img image.Image) *canvas.Image {
	c := canvas.NewImageFromImage(img)
	c.FillMode = canvas.ImageFillStretch
	c.ScaleMode = canvas.ImageScalePixels
	return c
}

func (s *SurfaceWidget) showEffects(img image.Image) {
	s.fx.Image = img
	s.fx.Refresh()
}

// displaySize is the surface size on screen.
func (s *SurfaceWidget) displaySize() fyne.Size {
	w, h := s.board.Size()
	z := float32(s.board.Zoom())
	return fyne.NewSize(float32(w)*z, float32(h)*z)
}

func (s *SurfaceWidget) bounds() geom.Rect {
	size := s.displaySize()
	return geom.Rect{Width: float64(size.Width), Height: float64(size.Height)}
}

func toPoint(p fyne.Position) geom.Point {
	return geom.Pt(float64(p.X), float64(p.Y))
}

func (s *SurfaceWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	s.pressed = true
	s.board.PointerDown(toPoint(e.Position), s.bounds())
}

func (s *SurfaceWidget) Dragged(e *fyne.DragEvent) {
	if s.pressed {
		s.board.PointerMove(toPoint(e.Position), s.bounds())
	}
}

func (s *SurfaceWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		s.release()
	}
}

// DragEnd also ends the gesture when the button is released outside the
// widget.
func (s *SurfaceWidget) DragEnd() { s.release() }

func (s *SurfaceWidget) release() {
	if !s.pressed {
		return
	}
	s.pressed = false
	s.board.PointerUp()
}

func (s *SurfaceWidget) Scrolled(e *fyne.ScrollEvent) {
	if s.OnZoom != nil && e.Scrolled.DY != 0 {
		s.OnZoom(e.Scrolled.DY > 0)
	}
}

func (s *SurfaceWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &surfaceRenderer{
		s:       s,
		paper:   canvas.NewRectangle(color.White),
		onion:   newSurfaceImage(s.board.Onion()),
		primary: newSurfaceImage(s.board.Primary()),
		box:     canvas.NewRectangle(color.Transparent),
	}
	accent := theme.Color(theme.ColorNamePrimary)
	r.box.StrokeColor = accent
	r.box.StrokeWidth = 1
	for i := range r.handles {
		h := canvas.NewRectangle(color.White)
		h.StrokeColor = accent
		h.StrokeWidth = 1
		h.Resize(fyne.NewSize(transform.HandleSize, transform.HandleSize))
		r.handles[i] = h
	}
	r.Refresh()
	return r
}

type gridKey struct {
	size fyne.Size
	step float32
	on   bool
}

type surfaceRenderer struct {
	s              *SurfaceWidget
	paper          *canvas.Rectangle
	onion, primary *canvas.Image
	grid           []fyne.CanvasObject
	key            gridKey
	box            *canvas.Rectangle
	handles        [8]*canvas.Rectangle
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0, len(r.grid)+13)
	objects = append(objects, r.paper)
	objects = append(objects, r.grid...)
	objects = append(objects, r.onion, r.primary, r.s.fx, r.box)
	for _, h := range r.handles {
		objects = append(objects, h)
	}
	return objects
}

func (r *surfaceRenderer) Layout(fyne.Size) {
	size := r.s.displaySize()
	for _, o := range []fyne.CanvasObject{r.paper, r.onion, r.primary, r.s.fx} {
		o.Move(fyne.NewPos(0, 0))
		o.Resize(size)
	}
}

func (r *surfaceRenderer) MinSize() fyne.Size {
	return r.s.displaySize()
}

// Refresh pulls the surfaces and the active object from the board.
func (r *surfaceRenderer) Refresh() {
	b := r.s.board
	r.onion.Image = b.Onion()
	r.primary.Image = b.Primary()

	size := r.s.displaySize()
	key := gridKey{size: size, step: r.s.gridSize * float32(b.Zoom()), on: b.ShowGrid()}
	if key != r.key {
		r.key = key
		r.grid = nil
		if key.on {
			r.grid = createGrid(size.Width, size.Height, key.step)
		}
	}
	r.Layout(r.s.Size())
	r.placeSelection()

	r.onion.Refresh()
	r.primary.Refresh()
	canvas.Refresh(r.s)
}

// placeSelection outlines the active object and its handles.
func (r *surfaceRenderer) placeSelection() {
	obj, ok := r.s.board.Active()
	if !ok {
		r.box.Hide()
		for _, h := range r.handles {
			h.Hide()
		}
		return
	}
	z := float32(r.s.board.Zoom())
	box := obj.Rect().Normalize()
	r.box.Move(fyne.NewPos(float32(box.X)*z, float32(box.Y)*z))
	r.box.Resize(fyne.NewSize(float32(box.Width)*z, float32(box.Height)*z))
	r.box.Show()

	half := float32(transform.HandleSize) / 2
	for i, hp := range transform.Handles(obj.Geometry) {
		h := r.handles[i]
		h.Move(fyne.NewPos(float32(hp.At.X)*z-half, float32(hp.At.Y)*z-half))
		h.Show()
	}
}

func (r *surfaceRenderer) Destroy() {}
