// Package effects renders the animated overlay drawn above the drawing.
package effects

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"sync"
	"time"

	"AnimBoard/internal/raster"
	"AnimBoard/internal/state"

	"github.com/gogpu/gg"
)

const (
	particleCount  = 50
	speedLineCount = 40

	defaultAccent = "#38bdf8"
	defaultLines  = "#ffffff"
)

// Particle is one dot of the particles effect.
type Particle struct {
	X, Y    float64
	Size    float64
	Opacity float64
	VX, VY  float64
}

// Animator owns the particle field and the stacked effect list. Render draws
// one frame; it is driven by a Loop.
type Animator struct {
	mu        sync.Mutex
	width     float64
	height    float64
	rng       *rand.Rand
	particles []Particle
	effects   []state.Effect
	ghost     *gg.ImageBuf
}

// NewAnimator creates an animator for a w×h surface. The particle field is
// generated from seed.
func NewAnimator(w, h int, seed int64) *Animator {
	a := &Animator{rng: rand.New(rand.NewSource(seed))}
	a.Resize(w, h)
	return a
}

// Resize regenerates the particle field for a new surface size.
func (a *Animator) Resize(w, h int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.width, a.height = float64(w), float64(h)
	a.particles = make([]Particle, particleCount)
	for i := range a.particles {
		a.particles[i] = Particle{
			X:       a.rng.Float64() * a.width,
			Y:       a.rng.Float64() * a.height,
			Size:    a.rng.Float64()*3 + 1,
			Opacity: a.rng.Float64()*0.5 + 0.2,
			VX:      (a.rng.Float64() - 0.5) * 0.5,
			VY:      (a.rng.Float64() - 0.5) * 0.5,
		}
	}
}

// SetEffects replaces the effect stack. Order is draw order.
func (a *Animator) SetEffects(effects []state.Effect) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.effects = append(a.effects[:0:0], effects...)
}

// Active reports whether any effect is set.
func (a *Animator) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.effects) > 0
}

// SetGhost sets the previous frame shown by motion_blur. Nil clears it.
func (a *Animator) SetGhost(img image.Image) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if img == nil {
		a.ghost = nil
		return
	}
	a.ghost = gg.ImageBufFromImage(img)
}

// Particles returns a copy of the particle field.
func (a *Animator) Particles() []Particle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Particle(nil), a.particles...)
}

// Step advances every particle by its velocity once.
func (a *Animator) Step() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.step()
}

func (a *Animator) step() {
	for i := range a.particles {
		p := &a.particles[i]
		p.X, p.VX = reflect(p.X+p.VX, p.VX, a.width)
		p.Y, p.VY = reflect(p.Y+p.VY, p.VY, a.height)
	}
}

// reflect bounces v off the walls of [0, limit] and keeps v inside it.
func reflect(v, vel, limit float64) (float64, float64) {
	switch {
	case v < 0:
		v, vel = -v, math.Abs(vel)
	case v > limit:
		v, vel = 2*limit-v, -math.Abs(vel)
	}
	return math.Max(0, math.Min(limit, v)), vel
}

func intensity(e state.Effect) float64 {
	return math.Max(0, math.Min(100, e.Intensity)) / 100
}

func withAlpha(c gg.RGBA, a float64) gg.RGBA {
	c.A *= a
	return c
}

func colorOr(s, fallback string) gg.RGBA {
	if s == "" {
		s = fallback
	}
	return raster.Color(s)
}

// Render draws one frame of every effect onto ctx, which the caller has
// cleared. Particle effects advance the field as they draw.
func (a *Animator) Render(ctx *gg.Context, now time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	ms := float64(now.UnixNano()) / 1e6

	for _, e := range a.effects {
		var err error
		switch e.Type {
		case state.EffectParticles:
			err = a.drawParticles(ctx, e)
		case state.EffectSpeedLines:
			err = a.drawSpeedLines(ctx, e, ms)
		case state.EffectGlow:
			err = a.drawGlow(ctx, e)
		case state.EffectMotionBlur:
			a.drawGhost(ctx, e, ms)
		}
		if err != nil {
			return fmt.Errorf("render %s: %w", e.Type, err)
		}
	}
	return nil
}

func (a *Animator) drawParticles(ctx *gg.Context, e state.Effect) error {
	a.step()
	base := colorOr(e.Color, defaultAccent)
	k := intensity(e)
	for _, p := range a.particles {
		ctx.SetFillBrush(gg.Solid(withAlpha(base, p.Opacity*k)))
		ctx.DrawCircle(p.X, p.Y, p.Size)
		if err := ctx.Fill(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Animator) drawSpeedLines(ctx *gg.Context, e state.Effect, ms float64) error {
	alpha := intensity(e) * 0.4
	if alpha == 0 {
		return nil
	}
	ctx.SetStrokeBrush(gg.Solid(withAlpha(colorOr(e.Color, defaultLines), alpha)))
	ctx.SetLineWidth(1)
	ctx.SetLineCap(gg.LineCapButt)
	for i := 0; i < speedLineCount; i++ {
		y := float64(i)*(a.height/speedLineCount) + math.Sin(ms/100+float64(i))*10
		ctx.MoveTo(0, y)
		ctx.LineTo(a.width, y)
	}
	return ctx.Stroke()
}

func (a *Animator) drawGlow(ctx *gg.Context, e state.Effect) error {
	alpha := intensity(e) * 0.5
	if alpha == 0 {
		return nil
	}
	c := colorOr(e.Color, defaultAccent)
	inner := withAlpha(c, float64(0x44)/255*alpha)
	outer := withAlpha(c, 0)
	ctx.SetFillBrush(gg.NewRadialGradientBrush(a.width/2, a.height/2, 0, a.width).
		AddColorStop(0, inner).
		AddColorStop(1, outer))
	ctx.DrawRectangle(0, 0, a.width, a.height)
	return ctx.Fill()
}

// drawGhost lays the previous frame over the surface with a slow sideways drift.
func (a *Animator) drawGhost(ctx *gg.Context, e state.Effect, ms float64) {
	alpha := intensity(e) * 0.35
	if a.ghost == nil || alpha == 0 {
		return
	}
	ctx.DrawImageEx(a.ghost, gg.DrawImageOptions{
		X:         math.Sin(ms/200) * 6,
		DstWidth:  a.width,
		DstHeight: a.height,
		Opacity:   alpha,
		BlendMode: gg.BlendNormal,
	})
}
