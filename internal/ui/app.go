package ui

import (
	"context"

	"AnimBoard/internal/board"
	"AnimBoard/internal/config"
	"AnimBoard/internal/logging"
	"AnimBoard/internal/net"
	"AnimBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Options configures the application window.
type Options struct {
	Title string
	// Config seeds the surface, brush, onion and rates. ConfigPath is
	// where it is saved on exit; empty skips saving.
	Config     config.Config
	ConfigPath string
	Store      *state.FrameStore
	Sync       Sync
	// ShareLink is shown with a copy button when set.
	ShareLink string
}

// App is the main window around one board.
type App struct {
	fyneApp fyne.App
	win     fyne.Window
	board   *board.Board
	view    *Viewport
	frames  *FrameStrip
	status  *widget.Label

	store *state.FrameStore
	cfg   config.Config
	path  string
}

func New(opts Options) *App {
	a := &App{
		fyneApp: app.New(),
		store:   opts.Store,
		cfg:     opts.Config,
		path:    opts.ConfigPath,
	}
	a.win = a.fyneApp.NewWindow(opts.Title)
	a.win.Resize(fyne.NewSize(1280, 800))

	surface := a.cfg.Surface
	a.board = board.New(board.Options{
		Width:    surface.Width,
		Height:   surface.Height,
		FPS:      a.cfg.Effects.FPS,
		Dispatch: fyne.Do,
	})
	a.board.SetBrush(a.cfg.Brush)
	a.board.SetOnion(a.cfg.Onion)
	a.board.SetZoom(surface.Zoom)
	a.board.SetGrid(surface.ShowGrid)

	a.status = widget.NewLabel("Ready")
	// board callbacks run on the UI goroutine
	a.board.OnPendingConsumed = func() { a.status.SetText("Image placed") }
	a.view = NewViewport(a.board, float32(surface.GridSize))
	a.frames = NewFrameStrip(a.board, opts.Store, opts.Sync, a.cfg.Timeline.FPS)
	a.frames.OnStatus = a.status.SetText

	status := a.status.SetText
	toolbar := NewToolbar(a.board, a.view,
		func() { openImage(a.win, a.board, status) },
		func() { exportFlipbook(a.win, a.board, a.store, status) },
		status)
	panel := container.NewVScroll(NewBrushPanel(a.board, a.view, &a.cfg.Onion, &a.cfg.Effects))

	var share fyne.CanvasObject
	if opts.ShareLink != "" {
		link := opts.ShareLink
		share = container.NewHBox(
			widget.NewLabel(link),
			widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
				a.win.Clipboard().SetContent(link)
				a.status.SetText("Link copied")
			}),
		)
	}
	bottom := container.NewBorder(nil, nil, a.frames.Object(), share, a.status)

	a.win.SetContent(container.NewBorder(toolbar, bottom, nil, panel, a.view.Scroll))
	a.win.Canvas().SetOnTypedKey(a.typedKey)
	a.win.SetOnClosed(a.shutdown)
	return a
}

// Run shows the window and blocks until it is closed.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.board.Run(ctx)
	a.win.ShowAndRun()
}

// SetStatus may be called from any goroutine.
func (a *App) SetStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}

// Remote hands a change a peer made to the store to the UI. It may be
// called from any goroutine.
func (a *App) Remote(m net.Message) {
	fyne.Do(func() { a.frames.Remote(m) })
}

func (a *App) typedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyReturn, fyne.KeyEnter:
		a.board.Commit()
	case fyne.KeyEscape:
		a.board.Cancel()
	case fyne.KeyLeft:
		a.frames.Prev()
	case fyne.KeyRight:
		a.frames.Next()
	case fyne.KeyPlus, fyne.KeyEqual:
		a.view.ZoomIn()
	case fyne.KeyMinus:
		a.view.ZoomOut()
	case fyne.Key0:
		a.view.ResetView()
	case fyne.KeyG:
		a.view.ToggleGrid()
	case fyne.KeySpace:
		a.frames.TogglePlay()
	}
}

func (a *App) shutdown() {
	a.frames.Stop()
	a.board.Close()
	if a.path == "" {
		return
	}
	a.cfg.Brush = a.board.Brush()
	a.cfg.Surface.Zoom = a.board.Zoom()
	a.cfg.Surface.ShowGrid = a.board.ShowGrid()
	if err := config.Save(a.path, a.cfg); err != nil {
		logging.Logger().Warn("[BOARD] save settings", "path", a.path, "err", err)
	}
}
