package state

import "strings"

// Tool is the active pointer tool.
type Tool string

const (
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
	ToolMove   Tool = "move"
	ToolResize Tool = "resize"
	ToolShape  Tool = "shape"
	ToolText   Tool = "text"
)

// Creates reports whether a pointer-down on empty space starts a new object.
func (t Tool) Creates() bool { return t == ToolShape || t == ToolText }

// Transforms reports whether the tool may drive an active object's handles.
func (t Tool) Transforms() bool {
	return t == ToolShape || t == ToolText || t == ToolMove || t == ToolResize
}

// Freehand reports whether the tool paints straight onto the surface.
func (t Tool) Freehand() bool { return t == ToolPen || t == ToolEraser }

// Layer is one frame's committed raster. Data is an encoded bitmap string;
// empty Data is an empty layer. Layers are replaced, never edited.
type Layer struct {
	ID       string `json:"id,omitempty"`
	Revision uint64 `json:"revision,omitempty"`
	Site     string `json:"site,omitempty"`
	Data     string `json:"data,omitempty"`
}

// Empty reports whether the layer carries no bitmap.
func (l Layer) Empty() bool { return l.Data == "" }

// LineJoin is the stroke corner style.
type LineJoin string

const (
	JoinMiter LineJoin = "miter"
	JoinRound LineJoin = "round"
	JoinBevel LineJoin = "bevel"
)

// GradientKind selects the gradient geometry.
type GradientKind string

const (
	GradientLinear GradientKind = "linear"
	GradientRadial GradientKind = "radial"
)

// Gradient replaces the solid brush colour when Enabled.
type Gradient struct {
	Enabled    bool         `toml:"enabled" json:"enabled"`
	Kind       GradientKind `toml:"kind" json:"kind,omitempty"`
	Angle      float64      `toml:"angle" json:"angle"` // degrees
	ColorStart string       `toml:"color_start" json:"colorStart"`
	ColorEnd   string       `toml:"color_end" json:"colorEnd"`
}

// BrushSettings is owned by the host; the core only reads it.
type BrushSettings struct {
	Size       float64  `toml:"size" json:"size"`
	Color      string   `toml:"color" json:"color"`
	Gradient   Gradient `toml:"gradient" json:"gradient"`
	LineJoin   LineJoin `toml:"line_join" json:"lineJoin"`
	Shape      string   `toml:"shape" json:"shapeType"`
	FontFamily string   `toml:"font_family" json:"fontFamily"`
}

// DefaultBrush mirrors the host's initial brush.
func DefaultBrush() BrushSettings {
	return BrushSettings{
		Size:     5,
		Color:    "#000000",
		LineJoin: JoinRound,
		Shape:    "rectangle",
		Gradient: Gradient{
			Kind:       GradientLinear,
			Angle:      45,
			ColorStart: "#38bdf8",
			ColorEnd:   "#a855f7",
		},
	}
}

// OnionSettings controls the neighbouring-frame preview.
type OnionSettings struct {
	Enabled      bool    `toml:"enabled" json:"enabled"`
	Opacity      float64 `toml:"opacity" json:"opacity"`
	ShowPrevious bool    `toml:"show_previous" json:"showPrevious"`
	ShowNext     bool    `toml:"show_next" json:"showNext"`
}

// EffectType names an animated overlay.
type EffectType string

const (
	EffectParticles  EffectType = "particles"
	EffectSpeedLines EffectType = "speed_lines"
	EffectGlow       EffectType = "glow"
	EffectMotionBlur EffectType = "motion_blur"
)

// ParseEffectType accepts the canonical names case-insensitively.
func ParseEffectType(s string) (EffectType, bool) {
	switch t := EffectType(strings.ToLower(strings.TrimSpace(s))); t {
	case EffectParticles, EffectSpeedLines, EffectGlow, EffectMotionBlur:
		return t, true
	}
	return "", false
}

// Effect is one stacked overlay. Intensity is 0..100.
type Effect struct {
	ID        string     `json:"id"`
	Type      EffectType `json:"type"`
	Color     string     `json:"color,omitempty"`
	Intensity float64    `json:"intensity"`
}
