package ui

import (
	"fmt"
	"io"

	"AnimBoard/internal/board"
	"AnimBoard/internal/export"
	"AnimBoard/internal/logging"
	"AnimBoard/internal/raster"
	"AnimBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// exportFlipbook asks for a file and writes every frame to it as a PDF
// page. The active object is committed first so it is part of the export.
func exportFlipbook(win fyne.Window, b *board.Board, store *state.FrameStore, status func(string)) {
	b.Commit()
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			status("Export failed: " + err.Error())
			return
		}
		if writer == nil {
			return // cancelled
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logging.Logger().Warn("[EXPORT] close", "err", err)
			}
		}()
		frames := store.Snapshot()
		w, h := b.Size()
		if err := export.WritePDF(writer, frames, w, h); err != nil {
			logging.Logger().Warn("[EXPORT] write", "uri", writer.URI(), "err", err)
			status("Export failed: " + err.Error())
			return
		}
		status(fmt.Sprintf("Exported flipbook to %s", writer.URI().Name()))
	}, win)
	d.SetFileName("flipbook.pdf")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	d.Show()
}

// openImage asks for an image file and stages it as the board's pending
// image.
func openImage(win fyne.Window, b *board.Board, status func(string)) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			status("Open failed: " + err.Error())
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()
		raw, err := io.ReadAll(reader)
		if err != nil {
			status("Open failed: " + err.Error())
			return
		}
		mime := reader.URI().MimeType()
		if mime == "" {
			mime = "application/octet-stream"
		}
		b.SetPendingImage(raster.DataURL(mime, raw))
		status("Placing " + reader.URI().Name())
	}, win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".webp"}))
	d.Show()
}
