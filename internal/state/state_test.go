package state

import (
	"image"
	"testing"

	"AnimBoard/internal/geom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStampIsMonotonic(t *testing.T) {
	a := Stamp("a")
	b := Stamp("b")
	assert.Greater(t, b.Revision, a.Revision)
	assert.Equal(t, SiteID(), a.Site)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestFrameStoreLastWriterWins(t *testing.T) {
	fs := NewFrameStore(2)
	local := fs.SetLocal(0, "local")

	stale := Layer{ID: "x", Revision: local.Revision - 1, Site: "zzz", Data: "stale"}
	assert.False(t, fs.ApplyRemote(0, stale))
	assert.Equal(t, "local", fs.Get(0).Data)

	fresh := Layer{ID: "y", Revision: local.Revision + 10, Site: "aaa", Data: "fresh"}
	assert.True(t, fs.ApplyRemote(0, fresh))
	assert.Equal(t, "fresh", fs.Get(0).Data)

	// the local clock moved past the remote revision
	next := fs.SetLocal(0, "mine")
	assert.Greater(t, next.Revision, fresh.Revision)
}

func TestFrameStoreTieBreakBySite(t *testing.T) {
	fs := NewFrameStore(1)
	a := Layer{Revision: 1 << 40, Site: "a", Data: "a"}
	b := Layer{Revision: 1 << 40, Site: "b", Data: "b"}

	fs.ApplyRemote(0, a)
	fs.ApplyRemote(0, b)
	assert.Equal(t, "b", fs.Get(0).Data)

	other := NewFrameStore(1)
	other.ApplyRemote(0, b)
	other.ApplyRemote(0, a)
	assert.Equal(t, fs.Get(0), other.Get(0))
}

func TestFrameStoreGrowAndNeighbors(t *testing.T) {
	fs := NewFrameStore(0)
	assert.Equal(t, 1, fs.Len())

	fs.SetLocal(3, "four")
	assert.Equal(t, 4, fs.Len())
	assert.True(t, fs.Grow(6))
	assert.False(t, fs.Grow(2))

	prev, next := fs.Neighbors(4)
	assert.Equal(t, "four", prev.Data)
	assert.True(t, next.Empty())

	prev, _ = fs.Neighbors(0)
	assert.True(t, prev.Empty())
	assert.Len(t, fs.Snapshot(), 6)
	assert.False(t, fs.ApplyRemote(-1, Layer{Data: "x"}))
}

func TestObjectVariants(t *testing.T) {
	s := NewShape(geom.Pt(10, 20))
	_, isText := s.Text()
	_, isImage := s.Image()
	assert.False(t, isText)
	assert.False(t, isImage)

	txt := NewText(geom.Pt(0, 0))
	tc, ok := txt.Text()
	require.True(t, ok)
	assert.Empty(t, tc.Text)

	img := NewImage(Geometry{X: 1, Y: 2, Width: -30, Height: 40}, "data:x", image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	ic, ok := img.Image()
	require.True(t, ok)
	assert.Equal(t, "data:x", ic.Src)
	assert.Equal(t, geom.Pt(-14, 22), img.Center())
	assert.Equal(t, geom.Rect{X: 1, Y: 2, Width: -30, Height: 40}, img.Rect())
}

func TestToolClasses(t *testing.T) {
	assert.True(t, ToolShape.Creates())
	assert.True(t, ToolText.Creates())
	assert.False(t, ToolMove.Creates())
	for _, tool := range []Tool{ToolShape, ToolText, ToolMove, ToolResize} {
		assert.True(t, tool.Transforms(), tool)
		assert.False(t, tool.Freehand(), tool)
	}
	assert.True(t, ToolPen.Freehand())
	assert.True(t, ToolEraser.Freehand())
	assert.False(t, ToolEraser.Transforms())
}

func TestParseEffectType(t *testing.T) {
	et, ok := ParseEffectType(" Speed_Lines ")
	assert.True(t, ok)
	assert.Equal(t, EffectSpeedLines, et)
	_, ok = ParseEffectType("sparkle")
	assert.False(t, ok)

	e := NewEffect(EffectGlow, "", 50)
	assert.NotEmpty(t, e.ID)
}
