package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"AnimBoard/internal/shape"
	"AnimBoard/internal/state"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Placeholder is drawn for an empty text object.
const Placeholder = "Type Here"

// DrawObject rasterises the active object onto dst at its current geometry.
// Zero-area images and text draw nothing; shapes of any size are stroked.
func DrawObject(dst *image.NRGBA, o *state.Object, b state.BrushSettings) error {
	if o == nil {
		return nil
	}
	switch c := o.Content.(type) {
	case *state.ImageContent:
		drawImage(dst, o.Geometry, c.Image)
		return nil
	case state.TextContent:
		return drawText(dst, o.Geometry, c.Text, b)
	default:
		return drawShape(dst, o.Geometry, b)
	}
}

// workArea is the device rectangle that can receive ink from an object
// centred at (cx, cy) reaching ext in every direction.
func workArea(dst *image.NRGBA, cx, cy, ext float64) image.Rectangle {
	r := image.Rect(
		int(math.Floor(cx-ext)), int(math.Floor(cy-ext)),
		int(math.Ceil(cx+ext)), int(math.Ceil(cy+ext)),
	)
	return r.Intersect(dst.Bounds())
}

func drawShape(dst *image.NRGBA, g state.Geometry, b state.BrushSettings) error {
	hw, hh := g.Width/2, g.Height/2
	c := g.Center()
	// curves such as the heart bulge past the box; 1.5 covers them and any rotation
	ext := 1.5*math.Max(math.Abs(hw), math.Abs(hh)) + b.Size + 2
	area := workArea(dst, c.X, c.Y, ext)
	if area.Empty() {
		return nil
	}

	ctx := gg.NewContext(area.Dx(), area.Dy())
	defer ctx.Close()
	ctx.Translate(c.X-float64(area.Min.X), c.Y-float64(area.Min.Y))
	ctx.Rotate(g.Rotation * math.Pi / 180)
	ctx.SetLineWidth(b.Size)
	ctx.SetLineJoin(lineJoin(b.LineJoin))
	ctx.SetLineCap(gg.LineCapRound)
	ctx.SetStrokeBrush(brushFor(b, hw, hh, ctx.TransformPoint))

	kind := shape.ParseKind(b.Shape)
	shape.Render(ctx, kind, hw, hh)
	if err := ctx.Stroke(); err != nil {
		return fmt.Errorf("stroke %s: %w", kind, err)
	}
	xdraw.Draw(dst, area, ctx.Image(), image.Point{}, xdraw.Over)
	return nil
}

// placement maps a sw×sh source onto a w×h box centred at (cx, cy) and
// rotated by rot radians. Negative w or h mirror the source.
func placement(cx, cy, rot, w, h, sw, sh float64) f64.Aff3 {
	sin, cos := math.Sincos(rot)
	sx, sy := w/sw, h/sh
	return f64.Aff3{
		cos * sx, -sin * sy, cx - cos*w/2 + sin*h/2,
		sin * sx, cos * sy, cy - sin*w/2 - cos*h/2,
	}
}

func drawImage(dst *image.NRGBA, g state.Geometry, img image.Image) {
	if img == nil || g.Width == 0 || g.Height == 0 {
		return
	}
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	c := g.Center()
	m := placement(c.X, c.Y, g.Rotation*math.Pi/180, g.Width, g.Height, float64(sb.Dx()), float64(sb.Dy()))
	xdraw.BiLinear.Transform(dst, m, img, sb, xdraw.Over, nil)
}

func drawText(dst *image.NRGBA, g state.Geometry, s string, b state.BrushSettings) error {
	size := math.Abs(g.Height)
	if size < 1 {
		return nil
	}
	if s == "" {
		s = Placeholder
	}
	src, err := fontSource(b.FontFamily)
	if err != nil {
		return err
	}
	face := src.Face(size)
	m := face.Metrics()
	tw := int(math.Ceil(face.Advance(s))) + 2
	th := int(math.Ceil(m.Ascent+m.Descent)) + 2
	bounds := image.Rect(0, 0, tw, th)

	// glyph coverage, baseline placed so the em box is vertically centred
	mask := image.NewAlpha(bounds)
	baseline := float64(th)/2 + (m.Ascent-m.Descent)/2
	text.Draw(mask, s, face, 1, baseline, color.White)

	// the brush sampled in tile space, centre at (tw/2, th/2)
	fill := gg.NewContext(tw, th)
	defer fill.Close()
	fill.Translate(float64(tw)/2, float64(th)/2)
	fill.SetFillBrush(brushFor(b, g.Width/2, g.Height/2, fill.TransformPoint))
	fill.DrawRectangle(-float64(tw)/2, -float64(th)/2, float64(tw), float64(th))
	if err := fill.Fill(); err != nil {
		return fmt.Errorf("fill text brush: %w", err)
	}

	tile := image.NewNRGBA(bounds)
	xdraw.DrawMask(tile, bounds, fill.Image(), image.Point{}, mask, image.Point{}, xdraw.Src)

	c := g.Center()
	place := placement(c.X, c.Y, g.Rotation*math.Pi/180, float64(tw), float64(th), float64(tw), float64(th))
	xdraw.BiLinear.Transform(dst, place, tile, bounds, xdraw.Over, nil)
	return nil
}
