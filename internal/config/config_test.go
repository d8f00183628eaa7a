package config

import (
	"os"
	"path/filepath"
	"testing"

	"AnimBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", fileName)
	cfg := Default()
	cfg.Surface.Width = 1280
	cfg.Surface.Height = 720
	cfg.Brush.Shape = "star_6"
	cfg.Brush.Gradient.Enabled = true
	cfg.Onion.Enabled = true
	cfg.Net.Port = 9001

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), fileName)
	data := `
[surface]
width = 1080
height = 1080

[brush]
color = "#ff0000"
line_join = "bevel"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1080, cfg.Surface.Width)
	assert.Equal(t, 1.0, cfg.Surface.Zoom)
	assert.Equal(t, "#ff0000", cfg.Brush.Color)
	assert.Equal(t, state.JoinBevel, cfg.Brush.LineJoin)
	assert.Equal(t, 5.0, cfg.Brush.Size)
	assert.Equal(t, 8888, cfg.Net.Port)
}

func TestLoadRejects(t *testing.T) {
	for name, data := range map[string]string{
		"syntax":  "[surface\nwidth = 3",
		"size":    "[surface]\nwidth = 0",
		"opacity": "[onion]\nopacity = 2.5",
		"fps":     "[timeline]\nfps = 0",
		"port":    "[net]\nport = 70000",
		"effect":  "[effects]\nenabled = [\"sparkle\"]",
		"level":   "[effects]\nintensity = 150",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), fileName)
			require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
			cfg, err := Load(path)
			assert.Error(t, err)
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	cfg := Default()
	cfg.Surface.Zoom = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
	assert.NoError(t, Default().Validate())
}

func TestEffectsList(t *testing.T) {
	path := filepath.Join(t.TempDir(), fileName)
	data := "[effects]\nenabled = [\"Glow\", \" speed_lines \"]\nintensity = 80\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	list := cfg.Effects.List("#00ff00")
	require.Len(t, list, 2)
	assert.Equal(t, state.EffectGlow, list[0].Type)
	assert.Equal(t, state.EffectSpeedLines, list[1].Type)
	assert.Equal(t, 80.0, list[1].Intensity)
	assert.Equal(t, "#00ff00", list[0].Color)
	assert.NotEqual(t, list[0].ID, list[1].ID)

	cfg.Effects.Enabled = append(cfg.Effects.Enabled, "sparkle")
	assert.Len(t, cfg.Effects.List(""), 2, "unknown names are skipped")
}

func TestPath(t *testing.T) {
	assert.Equal(t, fileName, filepath.Base(Path()))
	assert.Equal(t, dirName, filepath.Base(filepath.Dir(Path())))
}
