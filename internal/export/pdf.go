// Package export writes the animation's frames to a PDF flipbook.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"AnimBoard/internal/logging"
	"AnimBoard/internal/raster"
	"AnimBoard/internal/state"

	"github.com/jung-kurt/gofpdf"
)

// ErrNothingToExport is returned when every frame is empty.
var ErrNothingToExport = errors.New("export: every frame is empty")

const margin = 10.0 // mm

// WritePDF writes one A4 landscape page per non-empty frame. Each frame is
// scaled to fit the page keeping the w×h surface aspect ratio.
func WritePDF(out io.Writer, frames []state.Layer, w, h int) error {
	if w < 1 || h < 1 {
		return fmt.Errorf("export: bad surface size %dx%d", w, h)
	}
	p := gofpdf.New("L", "mm", "A4", "")
	p.SetTitle("AnimBoard flipbook", true)
	p.SetCreator("AnimBoard", true)
	p.SetFont("Helvetica", "", 9)

	pageW, pageH := p.GetPageSize()
	boxW, boxH := pageW-2*margin, pageH-3*margin
	scale := min(boxW/float64(w), boxH/float64(h))
	imgW, imgH := float64(w)*scale, float64(h)*scale
	x, y := (pageW-imgW)/2, margin

	pages := 0
	for i, l := range frames {
		if l.Empty() {
			continue
		}
		data, err := raster.PNG(l.Data)
		if err != nil {
			logging.Logger().Warn("[EXPORT] frame skipped", "frame", i, "err", err)
			continue
		}
		name := fmt.Sprintf("frame-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		p.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))

		p.AddPage()
		p.SetFillColor(255, 255, 255)
		p.SetDrawColor(200, 200, 200)
		p.Rect(x, y, imgW, imgH, "FD")
		p.ImageOptions(name, x, y, imgW, imgH, false, opts, 0, "")
		p.Text(x, y+imgH+6, fmt.Sprintf("Frame %d / %d", i+1, len(frames)))
		pages++
	}
	if pages == 0 {
		return ErrNothingToExport
	}
	if err := p.Output(out); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logging.Logger().Info("[EXPORT] flipbook written", "pages", pages)
	return nil
}

// ExportPDF writes the flipbook to path.
func ExportPDF(path string, frames []state.Layer, w, h int) error {
	var buf bytes.Buffer
	if err := WritePDF(&buf, frames, w, h); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
