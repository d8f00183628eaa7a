// Package config loads and saves the AnimBoard settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"AnimBoard/internal/state"

	"github.com/pelletier/go-toml/v2"
)

const (
	dirName  = "animboard"
	fileName = "animboard.toml"
)

// ErrInvalid reports a settings value outside its allowed range.
var ErrInvalid = errors.New("invalid setting")

type Surface struct {
	Width    int     `toml:"width"`
	Height   int     `toml:"height"`
	Zoom     float64 `toml:"zoom"`
	ShowGrid bool    `toml:"show_grid"`
	GridSize float64 `toml:"grid_size"`
}

type Timeline struct {
	Frames int `toml:"frames"`
	FPS    int `toml:"fps"` // playback rate, 1..60
}

type Effects struct {
	FPS       int      `toml:"fps"` // effects loop rate
	Enabled   []string `toml:"enabled,omitempty"`
	Intensity float64  `toml:"intensity"`
}

// List returns the enabled effects drawn in color. Unknown names are skipped.
func (e Effects) List(color string) []state.Effect {
	list := make([]state.Effect, 0, len(e.Enabled))
	for _, name := range e.Enabled {
		if t, ok := state.ParseEffectType(name); ok {
			list = append(list, state.NewEffect(t, color, e.Intensity))
		}
	}
	return list
}

type Net struct {
	Port   int    `toml:"port"`
	Scheme string `toml:"scheme"`
	MDNS   bool   `toml:"mdns"`
}

// Config is the whole settings file.
type Config struct {
	Surface  Surface             `toml:"surface"`
	Brush    state.BrushSettings `toml:"brush"`
	Onion    state.OnionSettings `toml:"onion"`
	Timeline Timeline            `toml:"timeline"`
	Effects  Effects             `toml:"effects"`
	Net      Net                 `toml:"net"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		Surface:  Surface{Width: 800, Height: 600, Zoom: 1, GridSize: 50},
		Brush:    state.DefaultBrush(),
		Onion:    state.OnionSettings{Opacity: 0.3, ShowPrevious: true},
		Timeline: Timeline{Frames: 1, FPS: 12},
		Effects:  Effects{FPS: 60, Intensity: 50},
		Net:      Net{Port: 8888, Scheme: "animboard://", MDNS: true},
	}
}

// Path returns the settings file location under the user config directory.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, dirName, fileName)
}

// Load reads path over the defaults, so keys missing from the file keep
// their default values. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks ranges that would otherwise fail later at runtime.
func (c Config) Validate() error {
	switch {
	case c.Surface.Width < 1 || c.Surface.Height < 1:
		return fmt.Errorf("%w: surface %dx%d", ErrInvalid, c.Surface.Width, c.Surface.Height)
	case c.Surface.Zoom <= 0:
		return fmt.Errorf("%w: zoom %v", ErrInvalid, c.Surface.Zoom)
	case c.Onion.Opacity < 0 || c.Onion.Opacity > 1:
		return fmt.Errorf("%w: onion opacity %v", ErrInvalid, c.Onion.Opacity)
	case c.Timeline.FPS < 1 || c.Timeline.FPS > 60:
		return fmt.Errorf("%w: timeline fps %d", ErrInvalid, c.Timeline.FPS)
	case c.Timeline.Frames < 1:
		return fmt.Errorf("%w: frames %d", ErrInvalid, c.Timeline.Frames)
	case c.Effects.Intensity < 0 || c.Effects.Intensity > 100:
		return fmt.Errorf("%w: effects intensity %v", ErrInvalid, c.Effects.Intensity)
	case c.Net.Port < 1 || c.Net.Port > 65535:
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Net.Port)
	}
	for _, name := range c.Effects.Enabled {
		if _, ok := state.ParseEffectType(name); !ok {
			return fmt.Errorf("%w: effect %q", ErrInvalid, name)
		}
	}
	return nil
}
