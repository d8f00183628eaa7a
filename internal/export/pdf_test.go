package export

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"AnimBoard/internal/raster"
	"AnimBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(t *testing.T, c color.NRGBA) state.Layer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 12))
	for y := 2; y < 10; y++ {
		for x := 2; x < 14; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	data, err := raster.Encode(img)
	require.NoError(t, err)
	return state.Layer{Data: data}
}

func TestWritePDFOnePagePerFrame(t *testing.T) {
	frames := []state.Layer{
		frame(t, color.NRGBA{R: 255, A: 255}),
		{},
		frame(t, color.NRGBA{B: 255, A: 128}),
	}
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, frames, 16, 12))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, 2, bytes.Count(out, []byte("/Type /Page\n")))
}

func TestWritePDFErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WritePDF(&buf, []state.Layer{{}, {}}, 10, 10), ErrNothingToExport)
	assert.ErrorIs(t, WritePDF(&buf, []state.Layer{{Data: "junk"}}, 10, 10), ErrNothingToExport)
	assert.Error(t, WritePDF(&buf, nil, 0, 10))
}

func TestExportPDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.pdf")
	require.NoError(t, ExportPDF(path, []state.Layer{frame(t, color.NRGBA{G: 255, A: 255})}, 16, 12))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	missing := filepath.Join(t.TempDir(), "none.pdf")
	assert.Error(t, ExportPDF(missing, nil, 16, 12))
	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err))
}
