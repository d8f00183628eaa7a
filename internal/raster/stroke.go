package raster

import (
	"fmt"
	"image"
	"math"

	"AnimBoard/internal/geom"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// Segment paints a round-capped line from one point to another in the given
// colour. With erase set the line clears dst instead (destination-out).
func Segment(dst *image.NRGBA, from, to geom.Point, width float64, col string, erase bool) error {
	pad := width/2 + 2
	box := geom.BoundsOf(from, to).Inset(-pad)
	area := image.Rect(
		int(math.Floor(box.X)), int(math.Floor(box.Y)),
		int(math.Ceil(box.X+box.Width)), int(math.Ceil(box.Y+box.Height)),
	).Intersect(dst.Bounds())
	if area.Empty() {
		return nil
	}

	ctx := gg.NewContext(area.Dx(), area.Dy())
	defer ctx.Close()
	ctx.Translate(-float64(area.Min.X), -float64(area.Min.Y))
	ctx.SetLineWidth(width)
	ctx.SetLineCap(gg.LineCapRound)
	ctx.SetLineJoin(gg.LineJoinRound)
	if erase {
		ctx.SetColor(gg.White.Color())
	} else {
		ctx.SetColor(Color(col).Color())
	}
	ctx.MoveTo(from.X, from.Y)
	ctx.LineTo(to.X, to.Y)
	if err := ctx.Stroke(); err != nil {
		return fmt.Errorf("stroke segment: %w", err)
	}

	if !erase {
		xdraw.Draw(dst, area, ctx.Image(), image.Point{}, xdraw.Over)
		return nil
	}
	clearUnder(dst, area, ctx.Image())
	return nil
}

// clearUnder scales dst alpha by the inverse of the mask's coverage over
// area, leaving colour channels as they are.
func clearUnder(dst *image.NRGBA, area image.Rectangle, mask image.Image) {
	mb := mask.Bounds()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			_, _, _, ma := mask.At(mb.Min.X+x-area.Min.X, mb.Min.Y+y-area.Min.Y).RGBA()
			if ma == 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			a := uint32(dst.Pix[i+3])
			dst.Pix[i+3] = uint8((a*(0xffff-ma) + 0x7fff) / 0xffff)
		}
	}
}
