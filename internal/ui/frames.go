package ui

import (
	"fmt"
	"time"

	"AnimBoard/internal/board"
	"AnimBoard/internal/effects"
	"AnimBoard/internal/logging"
	"AnimBoard/internal/net"
	"AnimBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Sync carries local edits to the other peers. Both calls update the local
// store before sending.
type Sync interface {
	Publish(i int, data string) (state.Layer, error)
	PublishFrames(n int) error
}

// FrameStrip keeps the board on the current frame of the store. It owns the
// board's OnLayerUpdate.
type FrameStrip struct {
	store   *state.FrameStore
	sync    Sync
	board   *board.Board
	current int

	label  *widget.Label
	play   *widget.Button
	player *effects.Loop

	// OnStatus reports sync failures and limits.
	OnStatus func(text string)
}

// NewFrameStrip shows frame 0. fps is the playback rate.
func NewFrameStrip(b *board.Board, store *state.FrameStore, sync Sync, fps int) *FrameStrip {
	f := &FrameStrip{store: store, sync: sync, board: b, label: widget.NewLabel("")}
	f.player = effects.NewLoop(fps, func(time.Time) { fyne.Do(f.step) })
	f.play = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), f.TogglePlay)
	b.OnLayerUpdate = f.publish
	f.show(0)
	return f
}

// Object returns the strip's controls.
func (f *FrameStrip) Object() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewButtonWithIcon("", theme.NavigateBackIcon(), f.Prev),
		f.label,
		widget.NewButtonWithIcon("", theme.NavigateNextIcon(), f.Next),
		widget.NewButtonWithIcon("", theme.ContentAddIcon(), f.Add),
		f.play,
	)
}

// Current returns the index of the frame being edited.
func (f *FrameStrip) Current() int { return f.current }

func (f *FrameStrip) status(text string) {
	if f.OnStatus != nil {
		f.OnStatus(text)
	}
}

// publish sends a layer produced on the board and shows the stamped copy.
func (f *FrameStrip) publish(data string) {
	l, err := f.sync.Publish(f.current, data)
	if err != nil {
		logging.Logger().Warn("[BOARD] publish layer", "frame", f.current, "err", err)
		f.status("Not synced: " + err.Error())
	}
	f.board.SetLayer(l)
}

// Goto commits the active object to the current frame and switches to i.
func (f *FrameStrip) Goto(i int) {
	f.board.Commit()
	f.show(i)
}

func (f *FrameStrip) show(i int) {
	f.current = min(max(i, 0), f.store.Len()-1)
	f.board.SetLayer(f.store.Get(f.current))
	f.board.SetNeighbors(f.store.Neighbors(f.current))
	f.updateLabel()
}

func (f *FrameStrip) updateLabel() {
	f.label.SetText(fmt.Sprintf("Frame %d / %d", f.current+1, f.store.Len()))
}

func (f *FrameStrip) Prev() { f.Goto(f.current - 1) }

func (f *FrameStrip) Next() { f.Goto(f.current + 1) }

// Add appends an empty frame and switches to it.
func (f *FrameStrip) Add() {
	n := f.store.Len() + 1
	if n > net.MaxFrames {
		f.status(fmt.Sprintf("At most %d frames", net.MaxFrames))
		return
	}
	f.board.Commit()
	if err := f.sync.PublishFrames(n); err != nil {
		logging.Logger().Warn("[BOARD] publish frames", "count", n, "err", err)
		f.status("Not synced: " + err.Error())
	}
	f.show(n - 1)
}

// step advances playback, wrapping to the first frame.
func (f *FrameStrip) step() {
	if !f.player.Running() {
		return
	}
	f.Goto((f.current + 1) % f.store.Len())
}

// TogglePlay starts or stops timeline playback.
func (f *FrameStrip) TogglePlay() {
	if f.player.Running() {
		f.Stop()
		return
	}
	f.player.Start()
	f.play.SetIcon(theme.MediaPauseIcon())
}

// Stop ends playback.
func (f *FrameStrip) Stop() {
	f.player.Stop()
	f.play.SetIcon(theme.MediaPlayIcon())
}

// Remote reacts to a change a peer made to the store.
func (f *FrameStrip) Remote(m net.Message) {
	switch m.Type {
	case net.TypeFrames:
		f.board.SetNeighbors(f.store.Neighbors(f.current))
		f.updateLabel()
	case net.TypeLayer:
		switch m.Frame {
		case f.current:
			f.board.SetLayer(f.store.Get(f.current))
		case f.current - 1, f.current + 1:
			f.board.SetNeighbors(f.store.Neighbors(f.current))
		}
		f.updateLabel()
	}
}
