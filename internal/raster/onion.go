package raster

import (
	"image"
	"image/color"
	"math"
)

// Onion tints for the neighbouring frames.
var (
	TintPrevious = color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}
	TintNext     = color.NRGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff}
)

// Tint recolours src with tint, keeping its alpha silhouette, and lays the
// result over dst at the given opacity. Over a transparent dst pixel the
// result is exactly tint with alpha round(srcA·opacity).
func Tint(dst *image.NRGBA, src image.Image, tint color.NRGBA, opacity float64) {
	opacity = math.Max(0, math.Min(1, opacity))
	sb := src.Bounds()
	area := dst.Bounds().Intersect(sb.Sub(sb.Min).Add(dst.Bounds().Min))
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			_, _, _, sa := src.At(sb.Min.X+x-dst.Rect.Min.X, sb.Min.Y+y-dst.Rect.Min.Y).RGBA()
			if sa == 0 {
				continue
			}
			a := uint8(math.Round(float64(sa) / 0xffff * float64(tint.A) * opacity))
			if a == 0 {
				continue
			}
			over(dst, x, y, color.NRGBA{R: tint.R, G: tint.G, B: tint.B, A: a})
		}
	}
}

// over blends a straight-alpha colour onto one dst pixel.
func over(dst *image.NRGBA, x, y int, c color.NRGBA) {
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	da := float64(p[3]) / 255
	if da == 0 {
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
		return
	}
	sa := float64(c.A) / 255
	oa := sa + da*(1-sa)
	mix := func(s, d uint8) uint8 {
		return uint8(math.Round((float64(s)*sa + float64(d)*da*(1-sa)) / oa))
	}
	p[0], p[1], p[2] = mix(c.R, p[0]), mix(c.G, p[1]), mix(c.B, p[2])
	p[3] = uint8(math.Round(oa * 255))
}
