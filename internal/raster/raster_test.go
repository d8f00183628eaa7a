package raster

import (
	"image"
	"image/color"
	"testing"

	"AnimBoard/internal/geom"
	"AnimBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func inked(img *image.NRGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestCodecRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	src.SetNRGBA(1, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	s, err := Encode(src)
	require.NoError(t, err)
	assert.Contains(t, s, "data:image/png;base64,")

	img, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), img.Bounds())
	r, g, b, a := img.At(1, 2).RGBA()
	assert.Equal(t, []uint32{10, 20, 30, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})

	raw, err := PNG(s)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), raw[:4])

	wrapped := DataURL("image/png", raw)
	assert.Equal(t, s, wrapped)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("not an image")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, err = Decode("data:image/png,plain")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, err = Decode("data:image/png;base64,aGVsbG8=")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestTintKeepsSilhouette(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	src.SetNRGBA(10, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	src.SetNRGBA(11, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 128})

	dst := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	Tint(dst, src, TintPrevious, 0.5)

	assert.Equal(t, color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 128}, dst.NRGBAAt(10, 10))
	assert.Equal(t, color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 64}, dst.NRGBAAt(11, 10))
	assert.Equal(t, color.NRGBA{}, dst.NRGBAAt(0, 0))
	assert.Equal(t, 2, inked(dst))
}

func TestTintStacksNextOverPrevious(t *testing.T) {
	src := filled(2, 2, color.NRGBA{A: 255})
	dst := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	Tint(dst, src, TintPrevious, 0.5)
	Tint(dst, src, TintNext, 0.5)

	c := dst.NRGBAAt(0, 0)
	assert.Equal(t, uint8(192), c.A)
	assert.Greater(t, c.G, c.R)
}

func TestDrawStar(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 800, 600))
	obj := &state.Object{
		Geometry: state.Geometry{X: 100, Y: 100, Width: 200, Height: 150},
		Content:  state.ShapeContent{},
	}
	b := state.DefaultBrush()
	b.Shape = "star"
	require.NoError(t, DrawObject(dst, obj, b))

	assert.Positive(t, inked(dst))
	// top point of the star at (200, 175-75)
	assert.NotZero(t, dst.NRGBAAt(200, 101).A)
	// far outside the star
	assert.Zero(t, dst.NRGBAAt(120, 110).A)
}

func TestDrawShapeNegativeExtents(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	obj := &state.Object{
		Geometry: state.Geometry{X: 150, Y: 150, Width: -100, Height: -100},
		Content:  state.ShapeContent{},
	}
	require.NoError(t, DrawObject(dst, obj, state.DefaultBrush()))
	// rectangle outline from (50,50) to (150,150)
	assert.NotZero(t, dst.NRGBAAt(100, 50).A)
	assert.Zero(t, dst.NRGBAAt(100, 100).A)
}

func TestDrawImageMirrors(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, red)
	src.SetNRGBA(1, 0, blue)

	dst := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	obj := state.NewImage(state.Geometry{X: 30, Y: 10, Width: -20, Height: 20}, "", src)
	require.NoError(t, DrawObject(dst, obj, state.DefaultBrush()))

	assert.Equal(t, blue, dst.NRGBAAt(13, 20))
	assert.Equal(t, red, dst.NRGBAAt(27, 20))
	assert.Zero(t, dst.NRGBAAt(5, 5).A)
}

func TestDrawImageDegenerate(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	obj := state.NewImage(state.Geometry{X: 1, Y: 1, Width: 0, Height: 5}, "", filled(2, 2, color.NRGBA{A: 255}))
	require.NoError(t, DrawObject(dst, obj, state.DefaultBrush()))
	assert.Zero(t, inked(dst))
}

func TestDrawTextPlaceholder(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 400, 200))
	obj := &state.Object{
		Geometry: state.Geometry{X: 50, Y: 60, Width: 300, Height: 40},
		Content:  state.TextContent{},
	}
	require.NoError(t, DrawObject(dst, obj, state.DefaultBrush()))
	assert.Positive(t, inked(dst))

	empty := image.NewNRGBA(image.Rect(0, 0, 400, 200))
	obj.Height = 0
	require.NoError(t, DrawObject(empty, obj, state.DefaultBrush()))
	assert.Zero(t, inked(empty))
}

func TestSegmentPaintAndErase(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 60, 30))
	require.NoError(t, Segment(dst, geom.Pt(10, 15), geom.Pt(50, 15), 6, "#ff0000", false))
	c := dst.NRGBAAt(30, 15)
	assert.Greater(t, c.A, uint8(200))
	assert.Greater(t, c.R, uint8(200))
	assert.Zero(t, dst.NRGBAAt(30, 2).A)

	require.NoError(t, Segment(dst, geom.Pt(0, 15), geom.Pt(60, 15), 12, "#00ff00", true))
	assert.Zero(t, dst.NRGBAAt(30, 15).A)
}

func TestSegmentOutsideSurface(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	require.NoError(t, Segment(dst, geom.Pt(-50, -50), geom.Pt(-40, -40), 2, "#000", false))
	assert.Zero(t, inked(dst))
}

func TestLinearGradientEndpoints(t *testing.T) {
	b := state.DefaultBrush()
	b.Gradient = state.Gradient{Enabled: true, Angle: 0, ColorStart: "#ff0000", ColorEnd: "#0000ff"}
	br := brushFor(b, 50, -20, identity)

	start := br.ColorAt(-50, 0)
	end := br.ColorAt(50, 0)
	assert.InDelta(t, 1, start.R, 0.01)
	assert.InDelta(t, 1, end.B, 0.01)
}

func TestColorParsing(t *testing.T) {
	assert.Equal(t, color.NRGBA{A: 255}, NRGBA(""))
	assert.Equal(t, color.NRGBA{R: 255, A: 128}, NRGBA("#ff000080"))
	assert.Equal(t, FamilyMono, resolveFamily("Courier New"))
	assert.Equal(t, FamilySans, resolveFamily("Arial"))
}
