// Package transform implements the pointer-driven state machine that creates,
// moves, resizes and commits the active object, and paints freehand strokes.
package transform

import (
	"image"

	"AnimBoard/internal/geom"
	"AnimBoard/internal/logging"
	"AnimBoard/internal/state"
)

// Surface is the primary drawing surface the engine paints into.
type Surface interface {
	// Stroke paints (or with erase, clears) one freehand segment.
	Stroke(from, to geom.Point, width float64, color string, erase bool) error
	// Bake rasterises an object into the committed raster.
	Bake(obj *state.Object, brush state.BrushSettings) error
	// Preview shows obj over the committed raster without baking it.
	Preview(obj *state.Object)
	// Snapshot encodes the committed raster.
	Snapshot() (string, error)
	// Reset clears the committed raster.
	Reset()
	// Restore reverts the committed raster to its last encoded state.
	Restore()
	// Capture copies the committed raster, false while it is not loaded.
	Capture() (image.Image, bool)
}

// HandleSize is the side of a resize handle's hit square at zoom 1.
const HandleSize = 14.0

// Engine is the transform state machine. It is not safe for concurrent use.
type Engine struct {
	surface Surface

	tool       state.Tool
	brush      state.BrushSettings
	zoom       float64
	width      float64
	height     float64
	lockAspect bool
	layer      string

	object   *state.Object
	creating bool
	drawing  bool
	handle   Handle
	ratio    float64 // height/width at drag start
	locked   bool    // ratio applies to this drag
	last     geom.Point

	// OnLayerUpdate receives every new encoded layer.
	OnLayerUpdate func(data string)
	// OnPendingConsumed fires once a staged image became the active object.
	OnPendingConsumed func()
}

// New returns an idle engine over a w×h surface with the pen selected.
func New(s Surface, w, h float64) *Engine {
	return &Engine{
		surface:    s,
		tool:       state.ToolPen,
		brush:      state.DefaultBrush(),
		zoom:       1,
		width:      w,
		height:     h,
		lockAspect: true,
	}
}

// Tool returns the active tool.
func (e *Engine) Tool() state.Tool { return e.tool }

// SetTool switches tools. Leaving the transform-capable tools commits the
// active object first.
func (e *Engine) SetTool(t state.Tool) {
	if t == e.tool {
		return
	}
	if e.object != nil && !t.Transforms() {
		e.Commit()
	}
	e.endGesture()
	e.tool = t
}

// SetBrush replaces the brush. The active object is redrawn with it.
func (e *Engine) SetBrush(b state.BrushSettings) {
	e.brush = b
	if e.object != nil {
		e.surface.Preview(e.object)
	}
}

// Brush returns the current brush.
func (e *Engine) Brush() state.BrushSettings { return e.brush }

// SetZoom sets the display zoom used to size handle hit areas.
func (e *Engine) SetZoom(z float64) {
	if z <= 0 {
		z = 1
	}
	e.zoom = z
}

// SetSize sets the surface size used to place staged and lifted images.
func (e *Engine) SetSize(w, h float64) { e.width, e.height = w, h }

// SetLayer records the committed layer data the host currently holds.
func (e *Engine) SetLayer(data string) { e.layer = data }

// SetLockAspect toggles aspect-ratio lock for corner handles.
func (e *Engine) SetLockAspect(on bool) { e.lockAspect = on }

// LockAspect reports whether corner resizes keep the aspect ratio.
func (e *Engine) LockAspect() bool { return e.lockAspect }

// Active returns a copy of the active object.
func (e *Engine) Active() (state.Object, bool) {
	if e.object == nil {
		return state.Object{}, false
	}
	return *e.object, true
}

// Handle returns the handle held by the current gesture.
func (e *Engine) Handle() Handle { return e.handle }

// Creating reports whether a new object is being dragged out.
func (e *Engine) Creating() bool { return e.creating }

// Drawing reports whether a freehand stroke is in progress.
func (e *Engine) Drawing() bool { return e.drawing }

func (e *Engine) endGesture() {
	e.creating = false
	e.drawing = false
	e.handle = HandleNone
}

func (e *Engine) emit(data string) {
	e.layer = data
	if e.OnLayerUpdate != nil {
		e.OnLayerUpdate(data)
	}
}

// PointerDown starts a gesture at p (surface coordinates).
func (e *Engine) PointerDown(p geom.Point) {
	e.last = p
	switch {
	case e.tool.Freehand():
		if e.object != nil {
			e.Commit()
		}
		e.drawing = true
	case e.object == nil:
		if !e.tool.Creates() {
			return
		}
		if e.tool == state.ToolText {
			e.object = state.NewText(p)
		} else {
			e.object = state.NewShape(p)
		}
		e.creating = true
		e.surface.Preview(e.object)
	default:
		if h := HitTest(e.object.Geometry, p, e.zoom); h != HandleNone {
			e.beginDrag(h)
			return
		}
		if e.object.Rect().Contains(p) {
			e.beginDrag(HandleMove)
			return
		}
		e.Commit()
	}
}

func (e *Engine) beginDrag(h Handle) {
	e.handle = h
	g := e.object.Geometry
	// a zero-width box has no ratio to keep, so it resizes freely
	e.locked = e.lockAspect && h.Corner() && g.Width != 0
	if e.locked {
		e.ratio = g.Height / g.Width
	}
}

// PointerMove continues the gesture at p.
func (e *Engine) PointerMove(p geom.Point) {
	d := p.Sub(e.last)
	dx, dy := d.X, d.Y
	switch {
	case e.creating && e.object != nil:
		e.object.Width = p.X - e.object.X
		e.object.Height = p.Y - e.object.Y
		e.surface.Preview(e.object)
	case e.handle != HandleNone && e.object != nil:
		e.drag(dx, dy)
		e.surface.Preview(e.object)
	case e.drawing:
		if err := e.surface.Stroke(e.last, p, e.brush.Size, e.brush.Color, e.tool == state.ToolEraser); err != nil {
			logging.Logger().Warn("[BOARD] stroke segment", "err", err)
		}
	}
	e.last = p
}

// drag applies a pointer delta to the held handle, keeping the opposite
// edge or corner fixed.
func (e *Engine) drag(dx, dy float64) {
	o := e.object
	switch e.handle {
	case HandleMove:
		o.X += dx
		o.Y += dy
	case HandleNW:
		o.X += dx
		o.Y += dy
		o.Width -= dx
		o.Height -= dy
	case HandleNE:
		o.Y += dy
		o.Width += dx
		o.Height -= dy
	case HandleSW:
		o.X += dx
		o.Width -= dx
		o.Height += dy
	case HandleSE:
		o.Width += dx
		o.Height += dy
	case HandleN:
		o.Y += dy
		o.Height -= dy
	case HandleS:
		o.Height += dy
	case HandleE:
		o.Width += dx
	case HandleW:
		o.X += dx
		o.Width -= dx
	}

	if e.locked {
		h := o.Width * e.ratio
		if e.handle.Top() {
			o.Y += o.Height - h
		}
		o.Height = h
	}
	if img, ok := o.Image(); ok && (dx != 0 || dy != 0) {
		img.Modified = true
	}
}

// PointerUp ends the gesture. A freehand stroke is serialised once; the
// active object stays selected.
func (e *Engine) PointerUp() {
	if e.drawing {
		if data, err := e.surface.Snapshot(); err != nil {
			logging.Logger().Warn("[BOARD] stroke snapshot", "err", err)
		} else {
			logging.Logger().Debug("[BOARD] stroke end", "tool", e.tool)
			e.emit(data)
		}
	}
	e.endGesture()
}

// Commit bakes the active object into the layer and clears it. Without an
// active object it does nothing.
func (e *Engine) Commit() {
	obj := e.object
	if obj == nil {
		return
	}
	e.object = nil
	e.endGesture()
	e.surface.Preview(nil)

	if err := e.surface.Bake(obj, e.brush); err != nil {
		logging.Logger().Warn("[BOARD] commit bake", "err", err)
		e.surface.Restore()
		return
	}
	data, err := e.surface.Snapshot()
	if err != nil {
		// the next stroke must not publish the unsynced object
		logging.Logger().Warn("[BOARD] commit snapshot", "err", err)
		e.surface.Restore()
		return
	}
	logging.Logger().Debug("[BOARD] commit", "x", obj.X, "y", obj.Y, "w", obj.Width, "h", obj.Height)
	e.emit(data)
}

// Cancel discards the active object. An untouched image placed over an
// empty layer is handed back to the host verbatim instead.
func (e *Engine) Cancel() {
	obj := e.object
	if obj == nil {
		return
	}
	e.object = nil
	e.endGesture()
	e.surface.Preview(nil)

	if img, ok := obj.Image(); ok && !img.Modified && e.layer == "" && img.Src != "" {
		logging.Logger().Debug("[BOARD] cancel restores image")
		e.emit(img.Src)
		return
	}
	logging.Logger().Debug("[BOARD] cancel")
}

// Clear empties the layer.
func (e *Engine) Clear() {
	e.surface.Reset()
	e.emit("")
}

// SetText edits the active text object.
func (e *Engine) SetText(s string) {
	if e.object == nil {
		return
	}
	if _, ok := e.object.Text(); !ok {
		return
	}
	e.object.Content = state.TextContent{Text: s}
	e.surface.Preview(e.object)
}

// SetRotation turns the active object, in degrees.
func (e *Engine) SetRotation(deg float64) {
	if e.object == nil || e.object.Rotation == deg {
		return
	}
	e.object.Rotation = deg
	if img, ok := e.object.Image(); ok {
		img.Modified = true
	}
	e.surface.Preview(e.object)
}

// StageImage makes a decoded external image the active object, centred and
// sized to 60% of the shorter surface side. An object already active is
// committed first.
func (e *Engine) StageImage(src string, img image.Image) {
	if img == nil {
		return
	}
	e.Commit()
	size := 0.6 * min(e.width, e.height)
	e.object = state.NewImage(state.Geometry{
		X:      (e.width - size) / 2,
		Y:      (e.height - size) / 2,
		Width:  size,
		Height: size,
	}, src, img)
	e.surface.Preview(e.object)
	if e.OnPendingConsumed != nil {
		e.OnPendingConsumed()
	}
}

// CanLift reports whether LiftLayer would act.
func (e *Engine) CanLift() bool {
	return (e.tool == state.ToolMove || e.tool == state.ToolResize) && e.object == nil && e.layer != ""
}

// LiftLayer turns the committed drawing into an image object covering the
// surface and empties the layer. It reports false when it did nothing.
func (e *Engine) LiftLayer() bool {
	if !e.CanLift() {
		return false
	}
	img, ok := e.surface.Capture()
	if !ok {
		return false
	}
	src := e.layer
	e.surface.Reset()
	e.emit("")
	e.object = state.NewImage(state.Geometry{Width: e.width, Height: e.height}, src, img)
	e.surface.Preview(e.object)
	return true
}
