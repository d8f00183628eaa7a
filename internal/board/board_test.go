package board

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"AnimBoard/internal/geom"
	"AnimBoard/internal/raster"
	"AnimBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// host plays the embedding application: it stores every emitted layer and
// feeds it straight back, the way the frame store does.
type host struct {
	mu       sync.Mutex
	layers   []string
	consumed int
}

func attach(b *Board) *host {
	h := &host{}
	b.OnLayerUpdate = func(data string) {
		h.mu.Lock()
		h.layers = append(h.layers, data)
		h.mu.Unlock()
		b.SetLayer(state.Stamp(data))
	}
	b.OnPendingConsumed = func() {
		h.mu.Lock()
		h.consumed++
		h.mu.Unlock()
	}
	return h
}

func (h *host) emitted() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.layers...)
}

func settle(t *testing.T, b *Board) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, b.Settle(ctx))
}

func alphaAt(img image.Image, x, y int) uint32 {
	_, _, _, a := img.At(x, y).RGBA()
	return a
}

// half-size display: widget coordinates are doubled into surface pixels
var display = geom.Rect{Width: 50, Height: 40}

func stroke(b *Board, pts ...geom.Point) {
	b.PointerDown(pts[0], display)
	for _, p := range pts[1:] {
		b.PointerMove(p, display)
	}
	b.PointerUp()
}

func TestStrokeThroughScaledDisplay(t *testing.T) {
	b := New(Options{Width: 100, Height: 80, Seed: 1})
	defer b.Close()
	h := attach(b)
	redraws := 0
	b.OnRedraw = func() { redraws++ }

	stroke(b, geom.Pt(5, 5), geom.Pt(20, 5))

	out := h.emitted()
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0])
	assert.Positive(t, redraws)
	assert.Positive(t, alphaAt(b.Primary(), 25, 10))
	assert.Zero(t, alphaAt(b.Primary(), 25, 30))
}

func TestToolSwitchCommitsOnce(t *testing.T) {
	b := New(Options{Width: 100, Height: 80, Seed: 1})
	defer b.Close()
	h := attach(b)

	b.SetTool(state.ToolShape)
	stroke(b, geom.Pt(5, 5), geom.Pt(30, 30))
	_, ok := b.Active()
	require.True(t, ok)
	assert.Empty(t, h.emitted())

	b.SetTool(state.ToolMove)
	assert.Empty(t, h.emitted())

	b.SetTool(state.ToolEraser)
	assert.Len(t, h.emitted(), 1)
	_, ok = b.Active()
	assert.False(t, ok)

	b.Commit()
	assert.Len(t, h.emitted(), 1)
}

func TestPendingImageStagedAfterDecode(t *testing.T) {
	b := New(Options{Width: 100, Height: 80, Seed: 1})
	defer b.Close()
	h := attach(b)

	white := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := range white.Pix {
		white.Pix[i] = 255
	}
	src, err := raster.Encode(white)
	require.NoError(t, err)
	b.SetPendingImage(src)
	_, ok := b.Active()
	assert.False(t, ok, "not decoded yet")

	settle(t, b)
	obj, ok := b.Active()
	require.True(t, ok)
	assert.Equal(t, state.Geometry{X: 26, Y: 16, Width: 48, Height: 48}, obj.Geometry)
	assert.Equal(t, 1, h.consumed)

	// the same image again is a new placement
	b.Commit()
	b.SetPendingImage(src)
	settle(t, b)
	_, ok = b.Active()
	assert.True(t, ok)
	assert.Equal(t, 2, h.consumed)
}

func TestPendingImageUndecodable(t *testing.T) {
	b := New(Options{Width: 100, Height: 80, Seed: 1})
	defer b.Close()
	h := attach(b)

	b.SetPendingImage("data:image/png;base64,AAAA")
	settle(t, b)
	_, ok := b.Active()
	assert.False(t, ok)
	assert.Zero(t, h.consumed)
	assert.Empty(t, h.emitted())
	assert.Empty(t, b.pending)

	// sending it again is dropped at once instead of waiting forever
	b.SetPendingImage("data:image/png;base64,AAAA")
	assert.Empty(t, b.pending)
	settle(t, b)
	_, ok = b.Active()
	assert.False(t, ok)
	assert.Zero(t, h.consumed)
}

func TestLiftAndCancelRestoresDrawing(t *testing.T) {
	b := New(Options{Width: 100, Height: 80, Seed: 1})
	defer b.Close()
	h := attach(b)

	stroke(b, geom.Pt(5, 5), geom.Pt(20, 5))
	drawing := h.emitted()[0]

	assert.False(t, b.LiftLayer(), "pen cannot lift")
	b.SetTool(state.ToolMove)
	require.True(t, b.LiftLayer())
	assert.Equal(t, []string{drawing, ""}, h.emitted())

	obj, ok := b.Active()
	require.True(t, ok)
	assert.Equal(t, state.Geometry{Width: 100, Height: 80}, obj.Geometry)
	// the lifted drawing is still visible as the active object
	assert.Positive(t, alphaAt(b.Primary(), 25, 10))

	b.Cancel()
	assert.Equal(t, []string{drawing, "", drawing}, h.emitted())
	settle(t, b)
	assert.Positive(t, alphaAt(b.Primary(), 25, 10))
}

func TestClear(t *testing.T) {
	b := New(Options{Width: 100, Height: 80, Seed: 1})
	defer b.Close()
	h := attach(b)

	stroke(b, geom.Pt(5, 5), geom.Pt(20, 5))
	b.Clear()
	out := h.emitted()
	require.Len(t, out, 2)
	assert.Empty(t, out[1])
	assert.Zero(t, alphaAt(b.Primary(), 25, 10))
}

func TestEffectsLoopLifetime(t *testing.T) {
	b := New(Options{Width: 40, Height: 30, FPS: 200, Seed: 1})
	defer b.Close()

	var frames atomic.Int64
	var last atomic.Value
	b.OnEffectsFrame = func(img image.Image) {
		frames.Add(1)
		last.Store(img)
	}

	b.SetEffects([]state.Effect{state.NewEffect(state.EffectGlow, "#ff0000", 100)})
	assert.True(t, b.loop.Running())
	assert.Eventually(t, func() bool { return frames.Load() >= 2 }, time.Second, 5*time.Millisecond)

	b.SetEffects(nil)
	assert.False(t, b.loop.Running())
	img := last.Load().(image.Image)
	assert.Zero(t, alphaAt(img, 20, 15))

	n := frames.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, frames.Load())
}

func TestSetSizeAndZoom(t *testing.T) {
	b := New(Options{Width: 100, Height: 80, Seed: 1})
	defer b.Close()

	b.SetSize(0, 50)
	w, h := b.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 50, h)

	b.SetZoom(-3)
	assert.Equal(t, 1.0, b.Zoom())
	b.SetZoom(2)
	assert.Equal(t, 2.0, b.Zoom())

	b.SetGrid(true)
	assert.True(t, b.ShowGrid())
}

func TestOnionThroughBoard(t *testing.T) {
	b := New(Options{Width: 20, Height: 20, Seed: 1})
	defer b.Close()

	full := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for i := 3; i < len(full.Pix); i += 4 {
		full.Pix[i] = 255
	}
	prev, err := raster.Encode(full)
	require.NoError(t, err)

	b.SetOnion(state.OnionSettings{Enabled: true, Opacity: 0.5, ShowPrevious: true})
	b.SetNeighbors(state.Layer{Data: prev}, state.Layer{})
	settle(t, b)

	onion, ok := b.Onion().(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 128}, onion.NRGBAAt(10, 10))
}
