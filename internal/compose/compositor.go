// Package compose keeps the three drawing surfaces (primary, onion skin,
// effects) and redraws each one only when it has been invalidated.
package compose

import (
	"image"
	"image/color"
	"time"

	"AnimBoard/internal/effects"
	"AnimBoard/internal/geom"
	"AnimBoard/internal/logging"
	"AnimBoard/internal/raster"
	"AnimBoard/internal/state"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// Compositor owns the surfaces. It is not safe for concurrent use; the
// caller serialises access.
type Compositor struct {
	width, height int
	cache         *ImageCache

	layer    state.Layer
	baseSrc  string // layer data the base raster reflects
	baseWant bool   // base still waits for baseSrc to decode
	base     *image.NRGBA
	object   *state.Object
	brush    state.BrushSettings
	view     *image.NRGBA

	prev, next state.Layer
	onion      state.OnionSettings
	onionImg   *image.NRGBA

	fx *gg.Context

	primaryDirty bool
	onionDirty   bool
}

// New creates a compositor for a w×h surface.
func New(w, h int, cache *ImageCache) *Compositor {
	c := &Compositor{cache: cache, brush: state.DefaultBrush()}
	c.Resize(w, h)
	return c
}

// Size returns the surface size in pixels.
func (c *Compositor) Size() (int, int) { return c.width, c.height }

// Resize reallocates every surface and reloads the committed layer.
func (c *Compositor) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c.width, c.height = w, h
	r := image.Rect(0, 0, w, h)
	c.base = image.NewNRGBA(r)
	c.view = image.NewNRGBA(r)
	c.onionImg = image.NewNRGBA(r)
	if c.fx != nil {
		_ = c.fx.Close()
	}
	c.fx = gg.NewContext(w, h)
	c.baseSrc = ""
	c.loadBase()
	c.onionDirty = true
}

// SetLayer replaces the committed layer.
func (c *Compositor) SetLayer(l state.Layer) {
	c.layer = l
	if l.Data == c.baseSrc && !c.baseWant {
		return
	}
	c.loadBase()
}

// Layer returns the committed layer last set.
func (c *Compositor) Layer() state.Layer { return c.layer }

// loadBase rebuilds the base raster from the committed layer. When the
// bitmap is not decoded yet the base stays clear until Accept delivers it.
func (c *Compositor) loadBase() { c.loadFrom(c.layer.Data) }

func (c *Compositor) loadFrom(src string) {
	clear(c.base.Pix)
	c.baseSrc = src
	c.baseWant = false
	if src != "" {
		if img, ok := c.cache.Get(src); ok {
			xdraw.Draw(c.base, c.base.Bounds(), img, img.Bounds().Min, xdraw.Over)
		} else {
			c.baseWant = true
		}
	}
	c.primaryDirty = true
}

// SetNeighbors sets the layers shown by the onion skin.
func (c *Compositor) SetNeighbors(prev, next state.Layer) {
	if prev.Data == c.prev.Data && next.Data == c.next.Data {
		return
	}
	c.prev, c.next = prev, next
	c.onionDirty = true
}

// Neighbors returns the layers last set with SetNeighbors.
func (c *Compositor) Neighbors() (prev, next state.Layer) { return c.prev, c.next }

// SetOnion replaces the onion skin settings.
func (c *Compositor) SetOnion(o state.OnionSettings) {
	if o == c.onion {
		return
	}
	c.onion = o
	c.onionDirty = true
}

// SetBrush replaces the brush used to draw the active object.
func (c *Compositor) SetBrush(b state.BrushSettings) {
	c.brush = b
	if c.object != nil {
		c.primaryDirty = true
	}
}

// Accept applies a decode completion and marks the surfaces showing that
// bitmap dirty.
func (c *Compositor) Accept(d Decoded) {
	if !c.cache.Accept(d) {
		return
	}
	if c.baseWant && d.Src == c.baseSrc {
		// strokes made while waiting stay on top
		under(c.base, d.Image)
		c.baseWant = false
		c.primaryDirty = true
	}
	if d.Src == c.prev.Data || d.Src == c.next.Data {
		c.onionDirty = true
	}
}

// under draws img beneath the existing pixels of dst.
func under(dst *image.NRGBA, img image.Image) {
	top := image.NewNRGBA(dst.Bounds())
	copy(top.Pix, dst.Pix)
	clear(dst.Pix)
	xdraw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, xdraw.Over)
	xdraw.Draw(dst, dst.Bounds(), top, image.Point{}, xdraw.Over)
}

// Dirty reports which surfaces need a redraw.
func (c *Compositor) Dirty() (primary, onion bool) {
	return c.primaryDirty, c.onionDirty
}

// Invalidate marks the primary surface for redraw.
func (c *Compositor) Invalidate() { c.primaryDirty = true }

// Primary returns the primary surface: the committed raster with the active
// object drawn on top. The result is reused between calls.
func (c *Compositor) Primary() *image.NRGBA {
	if !c.primaryDirty {
		return c.view
	}
	copy(c.view.Pix, c.base.Pix)
	if c.object != nil {
		if err := raster.DrawObject(c.view, c.object, c.brush); err != nil {
			logging.Logger().Warn("[BOARD] draw active object", "err", err)
		}
	}
	c.primaryDirty = false
	return c.view
}

// Onion returns the onion skin surface. It is blank while the onion skin is
// disabled; neighbours still decoding are skipped until they arrive.
func (c *Compositor) Onion() *image.NRGBA {
	if !c.onionDirty {
		return c.onionImg
	}
	clear(c.onionImg.Pix)
	c.onionDirty = false
	if !c.onion.Enabled {
		return c.onionImg
	}
	if c.onion.ShowPrevious {
		c.tint(c.prev, raster.TintPrevious)
	}
	if c.onion.ShowNext {
		c.tint(c.next, raster.TintNext)
	}
	return c.onionImg
}

func (c *Compositor) tint(l state.Layer, tint color.NRGBA) {
	img, ok := c.cache.Get(l.Data)
	if !ok {
		return
	}
	raster.Tint(c.onionImg, img, tint, c.onion.Opacity)
}

// Ghost returns the decoded previous frame, if ready.
func (c *Compositor) Ghost() (image.Image, bool) {
	return c.cache.Get(c.prev.Data)
}

// Effects renders one animation frame of a onto the effects surface.
func (c *Compositor) Effects(a *effects.Animator, now time.Time) image.Image {
	c.fx.Clear()
	if err := a.Render(c.fx, now); err != nil {
		logging.Logger().Warn("[BOARD] render effects", "err", err)
	}
	return c.fx.Image()
}

// ClearEffects blanks the effects surface.
func (c *Compositor) ClearEffects() image.Image {
	c.fx.Clear()
	return c.fx.Image()
}

// Surface operations used by the transform engine.

// Stroke paints or erases one freehand segment onto the base raster.
func (c *Compositor) Stroke(from, to geom.Point, width float64, col string, erase bool) error {
	c.primaryDirty = true
	return raster.Segment(c.base, from, to, width, col, erase)
}

// Bake rasterises obj into the base raster.
func (c *Compositor) Bake(obj *state.Object, b state.BrushSettings) error {
	c.primaryDirty = true
	return raster.DrawObject(c.base, obj, b)
}

// Preview sets the active object drawn over the base. Nil removes it.
func (c *Compositor) Preview(obj *state.Object) {
	c.object = obj
	c.primaryDirty = true
}

// Snapshot encodes the base raster. The encoded string is cached with its
// pixels so that the layer it becomes is shown without a decode.
func (c *Compositor) Snapshot() (string, error) {
	s, err := raster.Encode(c.base)
	if err != nil {
		return "", err
	}
	c.cache.Put(s, clone(c.base))
	c.baseSrc = s
	c.baseWant = false
	return s, nil
}

// Reset clears the base raster.
func (c *Compositor) Reset() {
	clear(c.base.Pix)
	c.baseSrc = ""
	c.baseWant = false
	c.primaryDirty = true
}

// Restore reloads the base raster from the last layer loaded or snapshot
// taken, dropping anything baked since.
func (c *Compositor) Restore() { c.loadFrom(c.baseSrc) }

// Capture returns a copy of the base raster, or false while the committed
// layer is still decoding.
func (c *Compositor) Capture() (image.Image, bool) {
	if c.baseWant {
		return nil, false
	}
	return clone(c.base), true
}

func clone(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	xdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, xdraw.Src)
	return dst
}
