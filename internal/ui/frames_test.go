package ui

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"AnimBoard/internal/board"
	"AnimBoard/internal/geom"
	"AnimBoard/internal/net"
	"AnimBoard/internal/raster"
	"AnimBoard/internal/state"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSync stores locally and records what was published.
type fakeSync struct {
	store  *state.FrameStore
	layers []int
	counts []int
	err    error
}

func (f *fakeSync) Publish(i int, data string) (state.Layer, error) {
	f.layers = append(f.layers, i)
	return f.store.SetLocal(i, data), f.err
}

func (f *fakeSync) PublishFrames(n int) error {
	f.counts = append(f.counts, n)
	f.store.Grow(n)
	return f.err
}

var frameBounds = geom.Rect{Width: 40, Height: 30}

func newStrip(t *testing.T, frames int) (*board.Board, *FrameStrip, *fakeSync) {
	t.Helper()
	test.NewTempApp(t)
	store := state.NewFrameStore(frames)
	sync := &fakeSync{store: store}
	b := board.New(board.Options{Width: 40, Height: 30, Seed: 1})
	t.Cleanup(b.Close)
	f := NewFrameStrip(b, store, sync, 1)
	t.Cleanup(f.Stop)
	return b, f, sync
}

func scribble(b *board.Board) {
	b.PointerDown(geom.Pt(5, 5), frameBounds)
	b.PointerMove(geom.Pt(30, 20), frameBounds)
	b.PointerUp()
}

func TestStripPublishesToCurrentFrame(t *testing.T) {
	b, f, sync := newStrip(t, 2)
	f.Next()
	scribble(b)

	assert.Equal(t, []int{1}, sync.layers)
	assert.False(t, sync.store.Get(1).Empty())
	assert.True(t, sync.store.Get(0).Empty())
}

func TestStripNavigation(t *testing.T) {
	_, f, sync := newStrip(t, 1)
	assert.Equal(t, "Frame 1 / 1", f.label.Text)

	f.Add()
	assert.Equal(t, []int{2}, sync.counts)
	assert.Equal(t, 1, f.Current())
	assert.Equal(t, "Frame 2 / 2", f.label.Text)

	f.Next()
	assert.Equal(t, 1, f.Current(), "next stops at the last frame")
	f.Prev()
	f.Prev()
	assert.Equal(t, 0, f.Current())
	assert.Equal(t, "Frame 1 / 2", f.label.Text)
}

func TestStripCommitsBeforeSwitching(t *testing.T) {
	b, f, sync := newStrip(t, 2)
	b.SetTool(state.ToolShape)
	b.PointerDown(geom.Pt(5, 5), frameBounds)
	b.PointerMove(geom.Pt(20, 20), frameBounds)
	b.PointerUp()
	require.Empty(t, sync.layers)

	f.Next()
	assert.Equal(t, []int{0}, sync.layers, "the shape lands on the frame it was drawn on")
	_, active := b.Active()
	assert.False(t, active)
	assert.Equal(t, 1, f.Current())
}

func TestStripReportsSyncFailure(t *testing.T) {
	b, f, sync := newStrip(t, 1)
	sync.err = errors.New("offline")
	var status string
	f.OnStatus = func(s string) { status = s }

	scribble(b)
	assert.Equal(t, "Not synced: offline", status)
	assert.False(t, sync.store.Get(0).Empty(), "the edit is kept locally")
}

func TestStripAppliesRemoteLayer(t *testing.T) {
	b, f, sync := newStrip(t, 2)

	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	data, err := raster.Encode(img)
	require.NoError(t, err)
	l := state.Layer{ID: "remote", Revision: 7, Site: "peer", Data: data}
	require.True(t, sync.store.ApplyRemote(0, l))

	f.Remote(net.LayerMessage(0, l))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, b.Settle(ctx))

	_, _, _, a := b.Primary().At(20, 15).RGBA()
	assert.NotZero(t, a)

	require.True(t, sync.store.Grow(3))
	f.Remote(net.FramesMessage(3))
	assert.Equal(t, "Frame 1 / 3", f.label.Text)
}

func TestStripPlaybackWraps(t *testing.T) {
	_, f, _ := newStrip(t, 3)
	f.step()
	assert.Equal(t, 0, f.Current(), "stepping needs playback")

	f.Goto(2)
	f.TogglePlay()
	f.step()
	assert.Equal(t, 0, f.Current())
	f.step()
	assert.Equal(t, 1, f.Current())
	f.TogglePlay()
	assert.False(t, f.player.Running())
}
