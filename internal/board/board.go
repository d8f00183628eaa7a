// Package board is the host-facing drawing surface. It owns the transform
// engine, the compositor, the effects animator and its loop, and turns host
// inputs into redraws and host outputs into callbacks.
package board

import (
	"context"
	"image"
	"sync"
	"time"

	"AnimBoard/internal/compose"
	"AnimBoard/internal/effects"
	"AnimBoard/internal/geom"
	"AnimBoard/internal/logging"
	"AnimBoard/internal/state"
	"AnimBoard/internal/transform"
)

// Options configures a Board.
type Options struct {
	Width  int
	Height int
	// FPS is the effects loop rate; 60 when zero.
	FPS int
	// Seed seeds the particle field.
	Seed int64
	// Dispatch runs fn on the goroutine that owns the UI. Decode completions
	// and effect ticks go through it. Nil runs fn directly.
	Dispatch func(fn func())
}

// Board is safe for concurrent use. Callbacks run without the board's lock
// held, so they may call back into the board.
type Board struct {
	mu       sync.Mutex
	cache    *compose.ImageCache
	comp     *compose.Compositor
	engine   *transform.Engine
	anim     *effects.Animator
	loop     *effects.Loop
	dispatch func(func())

	zoom     float64
	showGrid bool
	pending  string
	ghostSrc string

	// filled while locked, delivered after unlock
	outbox   []string
	consumed bool

	// OnLayerUpdate receives the encoded layer after every stroke end,
	// commit and clear.
	OnLayerUpdate func(data string)
	// OnPendingConsumed fires once the pending image became the active object.
	OnPendingConsumed func()
	// OnRedraw fires when the primary or onion surface changed.
	OnRedraw func()
	// OnEffectsFrame receives every rendered effects frame. It is also sent
	// one blank frame when the last effect is removed.
	OnEffectsFrame func(img image.Image)
}

// New creates a board with the pen selected and no effects running.
func New(opts Options) *Board {
	if opts.Width < 1 {
		opts.Width = 1
	}
	if opts.Height < 1 {
		opts.Height = 1
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	b := &Board{
		cache:    compose.NewImageCache(),
		anim:     effects.NewAnimator(opts.Width, opts.Height, opts.Seed),
		dispatch: opts.Dispatch,
		zoom:     1,
	}
	if b.dispatch == nil {
		b.dispatch = func(fn func()) { fn() }
	}
	b.comp = compose.New(opts.Width, opts.Height, b.cache)
	b.engine = transform.New(b.comp, float64(opts.Width), float64(opts.Height))
	b.engine.OnLayerUpdate = func(data string) { b.outbox = append(b.outbox, data) }
	b.engine.OnPendingConsumed = func() { b.consumed = true }
	b.loop = effects.NewLoop(opts.FPS, b.tick)
	return b
}

// do runs fn under the lock and then delivers whatever it produced.
func (b *Board) do(fn func()) {
	b.mu.Lock()
	fn()
	out, consumed := b.outbox, b.consumed
	b.outbox, b.consumed = nil, false
	primary, onion := b.comp.Dirty()
	b.mu.Unlock()

	for _, data := range out {
		if b.OnLayerUpdate != nil {
			b.OnLayerUpdate(data)
		}
	}
	if consumed && b.OnPendingConsumed != nil {
		b.OnPendingConsumed()
	}
	if (primary || onion) && b.OnRedraw != nil {
		b.OnRedraw()
	}
}

// Run delivers decode completions through Dispatch until ctx ends.
func (b *Board) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-b.cache.Done():
			b.dispatch(func() { b.Accept(d) })
		}
	}
}

// Settle accepts decode completions on the calling goroutine until none is
// in flight. It must not be used together with Run.
func (b *Board) Settle(ctx context.Context) error {
	return b.cache.Settle(ctx, b.Accept)
}

// Accept applies one decode completion.
func (b *Board) Accept(d compose.Decoded) {
	b.do(func() {
		b.comp.Accept(d)
		if d.Src == b.pending {
			b.pending = ""
			if d.Err != nil {
				logging.Logger().Warn("[BOARD] pending image dropped", "err", d.Err)
			} else {
				b.engine.StageImage(d.Src, d.Image)
			}
		}
		b.refreshGhost()
	})
}

// refreshGhost hands the decoded previous frame to the animator once.
func (b *Board) refreshGhost() {
	prev, _ := b.comp.Neighbors()
	if prev.Data == b.ghostSrc {
		return
	}
	img, ok := b.comp.Ghost()
	if !ok {
		b.anim.SetGhost(nil)
		b.ghostSrc = ""
		return
	}
	b.anim.SetGhost(img)
	b.ghostSrc = prev.Data
}

func (b *Board) trim() {
	prev, next := b.comp.Neighbors()
	b.cache.Retain(b.comp.Layer().Data, prev.Data, next.Data, b.pending)
}

// Host inputs.

// SetLayer replaces the committed layer shown on the primary surface.
func (b *Board) SetLayer(l state.Layer) {
	b.do(func() {
		b.comp.SetLayer(l)
		b.engine.SetLayer(l.Data)
		b.trim()
	})
}

// SetNeighbors sets the previous and next frames shown by the onion skin
// and the motion blur ghost.
func (b *Board) SetNeighbors(prev, next state.Layer) {
	b.do(func() {
		b.comp.SetNeighbors(prev, next)
		b.refreshGhost()
		b.trim()
	})
}

// SetOnion replaces the onion skin settings.
func (b *Board) SetOnion(o state.OnionSettings) {
	b.do(func() { b.comp.SetOnion(o) })
}

// SetBrush replaces the brush.
func (b *Board) SetBrush(br state.BrushSettings) {
	b.do(func() {
		b.engine.SetBrush(br)
		b.comp.SetBrush(br)
	})
}

// Brush returns the current brush.
func (b *Board) Brush() state.BrushSettings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Brush()
}

// SetTool switches tools, committing the active object when leaving the
// transform tools.
func (b *Board) SetTool(t state.Tool) {
	b.do(func() { b.engine.SetTool(t) })
}

// Tool returns the active tool.
func (b *Board) Tool() state.Tool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Tool()
}

// SetZoom sets the display zoom.
func (b *Board) SetZoom(z float64) {
	b.do(func() {
		if z <= 0 {
			z = 1
		}
		b.zoom = z
		b.engine.SetZoom(z)
	})
}

// Zoom returns the display zoom.
func (b *Board) Zoom() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.zoom
}

// SetSize resizes every surface. The committed layer is reloaded at the
// new size.
func (b *Board) SetSize(w, h int) {
	b.do(func() {
		b.comp.Resize(w, h)
		w, h = b.comp.Size()
		b.engine.SetSize(float64(w), float64(h))
		b.anim.Resize(w, h)
	})
}

// Size returns the surface size in pixels.
func (b *Board) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.comp.Size()
}

// SetGrid toggles the grid overlay.
func (b *Board) SetGrid(on bool) {
	b.mu.Lock()
	b.showGrid = on
	b.mu.Unlock()
	if b.OnRedraw != nil {
		b.OnRedraw()
	}
}

// ShowGrid reports whether the grid overlay is on.
func (b *Board) ShowGrid() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.showGrid
}

// SetLockAspect toggles the aspect-ratio lock for corner handles.
func (b *Board) SetLockAspect(on bool) {
	b.do(func() { b.engine.SetLockAspect(on) })
}

// LockAspect reports whether corner resizes keep the aspect ratio.
func (b *Board) LockAspect() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.LockAspect()
}

// SetPendingImage stages an externally supplied encoded image as the next
// active object once it is decoded. An undecodable image is dropped without
// acknowledgement.
func (b *Board) SetPendingImage(src string) {
	b.do(func() {
		if src == "" || src == b.pending {
			return
		}
		if b.cache.Failed(src) {
			logging.Logger().Warn("[BOARD] pending image dropped, decode failed before", "len", len(src))
			return
		}
		if img, ok := b.cache.Get(src); ok {
			b.engine.StageImage(src, img)
			return
		}
		b.pending = src
	})
}

// SetEffects replaces the active effects and starts or stops the loop.
func (b *Board) SetEffects(list []state.Effect) {
	b.mu.Lock()
	b.anim.SetEffects(list)
	active := b.anim.Active()
	b.mu.Unlock()

	if active {
		b.loop.Start()
		return
	}
	// the loop's tick takes the lock, so it stops unlocked
	b.loop.Stop()
	b.mu.Lock()
	img := b.comp.ClearEffects()
	b.mu.Unlock()
	if b.OnEffectsFrame != nil {
		b.OnEffectsFrame(img)
	}
}

func (b *Board) tick(now time.Time) {
	b.dispatch(func() {
		b.mu.Lock()
		if !b.anim.Active() {
			b.mu.Unlock()
			return
		}
		img := b.comp.Effects(b.anim, now)
		b.mu.Unlock()
		if b.OnEffectsFrame != nil {
			b.OnEffectsFrame(img)
		}
	})
}

// Pointer input. Positions are in widget coordinates and bounds is where the
// surface is displayed; both are mapped into surface pixels.

func (b *Board) toSurface(pos geom.Point, bounds geom.Rect) geom.Point {
	w, h := b.comp.Size()
	return geom.Map(pos, bounds, float64(w), float64(h))
}

// PointerDown starts a gesture.
func (b *Board) PointerDown(pos geom.Point, bounds geom.Rect) {
	b.do(func() { b.engine.PointerDown(b.toSurface(pos, bounds)) })
}

// PointerMove continues a gesture.
func (b *Board) PointerMove(pos geom.Point, bounds geom.Rect) {
	b.do(func() { b.engine.PointerMove(b.toSurface(pos, bounds)) })
}

// PointerUp ends a gesture.
func (b *Board) PointerUp() {
	b.do(b.engine.PointerUp)
}

// Commit bakes the active object into the layer.
func (b *Board) Commit() { b.do(b.engine.Commit) }

// Cancel discards the active object.
func (b *Board) Cancel() { b.do(b.engine.Cancel) }

// Clear empties the layer.
func (b *Board) Clear() { b.do(b.engine.Clear) }

// LiftLayer turns the committed drawing into a movable image object. It
// reports false when the move or resize tool is not selected, an object is
// already active, the layer is empty or still decoding.
func (b *Board) LiftLayer() bool {
	var ok bool
	b.do(func() { ok = b.engine.LiftLayer() })
	return ok
}

// SetText edits the active text object.
func (b *Board) SetText(s string) {
	b.do(func() { b.engine.SetText(s) })
}

// SetRotation turns the active object, in degrees.
func (b *Board) SetRotation(deg float64) {
	b.do(func() { b.engine.SetRotation(deg) })
}

// Active returns a copy of the active object.
func (b *Board) Active() (state.Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Active()
}

// Surfaces.

// Primary returns the primary surface. The image is reused by the next
// redraw.
func (b *Board) Primary() image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.comp.Primary()
}

// Onion returns the onion skin surface. The image is reused by the next
// redraw.
func (b *Board) Onion() image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.comp.Onion()
}

// Close stops the effects loop.
func (b *Board) Close() {
	b.loop.Stop()
}
