// Package raster turns brush settings, active objects and strokes into pixels.
package raster

import (
	"image/color"
	"math"

	"AnimBoard/internal/state"

	"github.com/gogpu/gg"
)

// Point mapping from an object's local frame (centred, unrotated) into the
// coordinate space the brush is sampled in.
type mapFunc func(x, y float64) (float64, float64)

func identity(x, y float64) (float64, float64) { return x, y }

// Color parses a #rgb, #rrggbb or #rrggbbaa string. Empty means black.
func Color(s string) gg.RGBA {
	if s == "" {
		return gg.Black
	}
	return gg.Hex(s)
}

// NRGBA converts a hex colour to an image colour.
func NRGBA(s string) color.NRGBA {
	return Color(s).Color().(color.NRGBA)
}

// brushFor resolves the stroke/fill brush once per render: a solid colour,
// or a gradient spanning the object's half-extents. The linear gradient runs
// along Angle with endpoints (±cos·|hw|, ±sin·|hh|); the radial one is centred
// with radius max(|hw|, |hh|).
func brushFor(b state.BrushSettings, hw, hh float64, m mapFunc) gg.Brush {
	g := b.Gradient
	if !g.Enabled {
		return gg.Solid(Color(b.Color))
	}
	start, end := Color(g.ColorStart), Color(g.ColorEnd)
	ahw, ahh := math.Abs(hw), math.Abs(hh)

	if g.Kind == state.GradientRadial {
		cx, cy := m(0, 0)
		r := math.Max(ahw, ahh)
		return gg.NewRadialGradientBrush(cx, cy, 0, r).
			AddColorStop(0, start).
			AddColorStop(1, end)
	}

	rad := g.Angle * math.Pi / 180
	x0, y0 := m(-math.Cos(rad)*ahw, -math.Sin(rad)*ahh)
	x1, y1 := m(math.Cos(rad)*ahw, math.Sin(rad)*ahh)
	return gg.NewLinearGradientBrush(x0, y0, x1, y1).
		AddColorStop(0, start).
		AddColorStop(1, end)
}

func lineJoin(j state.LineJoin) gg.LineJoin {
	switch j {
	case state.JoinMiter:
		return gg.LineJoinMiter
	case state.JoinBevel:
		return gg.LineJoinBevel
	default:
		return gg.LineJoinRound
	}
}
