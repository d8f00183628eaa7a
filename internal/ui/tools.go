package ui

import (
	"fmt"
	"image/color"
	"strings"

	"AnimBoard/internal/board"
	"AnimBoard/internal/config"
	"AnimBoard/internal/raster"
	"AnimBoard/internal/shape"
	"AnimBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var tools = []state.Tool{state.ToolPen, state.ToolEraser, state.ToolMove, state.ToolResize, state.ToolShape, state.ToolText}

var palette = []color.Color{
	color.Black,
	color.NRGBA{R: 255, A: 255},         // Red
	color.NRGBA{G: 255, A: 255},         // Green
	color.NRGBA{B: 255, A: 255},         // Blue
	color.NRGBA{R: 255, G: 255, A: 255}, // Yellow
	color.NRGBA{R: 255, G: 128, A: 255}, // Orange
	color.NRGBA{R: 168, G: 85, B: 247, A: 255},
	color.White,
}

var effectTypes = []state.EffectType{state.EffectParticles, state.EffectSpeedLines, state.EffectGlow, state.EffectMotionBlur}

// hexColor formats c as #rrggbb.
func hexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// editBrush applies fn to a copy of the board's brush and sets it back.
func editBrush(b *board.Board, fn func(br *state.BrushSettings)) {
	br := b.Brush()
	fn(&br)
	b.SetBrush(br)
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// --- The Main Toolbar ---

// NewToolbar builds the row above the surface: tools, colours, brush size
// and the board actions.
func NewToolbar(b *board.Board, v *Viewport, openImage, exportPDF func(), status func(string)) fyne.CanvasObject {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = string(t)
	}
	toolGroup := widget.NewRadioGroup(names, nil)
	toolGroup.Horizontal = true
	toolGroup.Required = true
	toolGroup.SetSelected(string(b.Tool()))
	toolGroup.OnChanged = func(s string) {
		b.SetTool(state.Tool(s))
	}

	lift := func() {
		if !b.LiftLayer() {
			status("Select move or resize on a drawn frame to lift it")
		}
	}
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ConfirmIcon(), b.Commit),
		widget.NewToolbarAction(theme.CancelIcon(), b.Cancel),
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), lift),
		widget.NewToolbarAction(theme.ContentClearIcon(), b.Clear),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FileImageIcon(), openImage),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), exportPDF),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), v.ZoomIn),
		widget.NewToolbarAction(theme.ZoomOutIcon(), v.ZoomOut),
		widget.NewToolbarAction(theme.ZoomFitIcon(), v.ResetView),
	)

	// --- Color Palette ---
	onColorTapped := func(c color.Color) {
		editBrush(b, func(br *state.BrushSettings) {
			br.Color = hexColor(c)
			br.Gradient.ColorStart = br.Color
		})
	}
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	// --- Stroke Width Slider ---
	strokeSlider := widget.NewSlider(1.0, 50.0)
	strokeSlider.SetValue(b.Brush().Size)
	strokeSlider.OnChanged = func(val float64) {
		editBrush(b, func(br *state.BrushSettings) { br.Size = val })
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	// --- Assemble everything ---
	return container.NewVBox(
		container.NewHBox(
			widget.NewLabel("Tool:"),
			toolGroup,
			layout.NewSpacer(),
			tb,
		),
		container.NewHBox(
			widget.NewLabel("Color:"),
			colorBox,
			widget.NewSeparator(),
			widget.NewLabel("Size:"),
			sliderContainer,
			layout.NewSpacer(),
		),
	)
}

// NewBrushPanel builds the side panel: shape and text options, the active
// object, onion skin and effects. onion and fx are kept current with the
// controls.
func NewBrushPanel(b *board.Board, v *Viewport, onion *state.OnionSettings, fx *config.Effects) fyne.CanvasObject {
	br := b.Brush()

	kinds := make([]string, len(shape.Kinds))
	for i, k := range shape.Kinds {
		kinds[i] = string(k)
	}
	shapeSelect := widget.NewSelect(kinds, func(s string) {
		editBrush(b, func(br *state.BrushSettings) { br.Shape = s })
	})
	shapeSelect.SetSelected(string(shape.ParseKind(br.Shape)))

	joinSelect := widget.NewSelect([]string{string(state.JoinMiter), string(state.JoinRound), string(state.JoinBevel)}, func(s string) {
		editBrush(b, func(br *state.BrushSettings) { br.LineJoin = state.LineJoin(s) })
	})
	joinSelect.SetSelected(string(br.LineJoin))

	gradientKind := widget.NewSelect([]string{string(state.GradientLinear), string(state.GradientRadial)}, func(s string) {
		editBrush(b, func(br *state.BrushSettings) { br.Gradient.Kind = state.GradientKind(s) })
	})
	gradientKind.SetSelected(string(br.Gradient.Kind))
	gradientAngle := widget.NewSlider(0, 360)
	gradientAngle.SetValue(br.Gradient.Angle)
	gradientAngle.OnChanged = func(a float64) {
		editBrush(b, func(br *state.BrushSettings) { br.Gradient.Angle = a })
	}
	gradientCheck := widget.NewCheck("Gradient", func(on bool) {
		editBrush(b, func(br *state.BrushSettings) { br.Gradient.Enabled = on })
	})
	gradientCheck.SetChecked(br.Gradient.Enabled)

	fontSelect := widget.NewSelect([]string{raster.FamilySans, raster.FamilyMono, raster.FamilySmallCaps}, func(s string) {
		editBrush(b, func(br *state.BrushSettings) { br.FontFamily = s })
	})
	if br.FontFamily != "" {
		fontSelect.SetSelected(br.FontFamily)
	}

	textEntry := newTextEntry(b)

	rotation := widget.NewSlider(-180, 180)
	rotation.OnChanged = b.SetRotation

	lockCheck := widget.NewCheck("Lock aspect", b.SetLockAspect)
	lockCheck.SetChecked(b.LockAspect())
	gridCheck := widget.NewCheck("Grid", func(on bool) {
		if on != b.ShowGrid() {
			v.ToggleGrid()
		}
	})
	gridCheck.SetChecked(b.ShowGrid())

	return container.NewVBox(
		widget.NewLabelWithStyle("Shape", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		shapeSelect,
		joinSelect,
		gradientCheck,
		gradientKind,
		gradientAngle,
		widget.NewLabelWithStyle("Text", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		fontSelect,
		textEntry,
		widget.NewLabelWithStyle("Object", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Rotation"),
		rotation,
		lockCheck,
		gridCheck,
		widget.NewSeparator(),
		newOnionControls(b, onion),
		widget.NewSeparator(),
		newEffectControls(b, fx),
	)
}

// newTextEntry edits the active text object. It is disabled while no text
// object is active and shows the object's text after every redraw, so a new
// object starts empty. It chains onto b.OnRedraw, which must be set first.
func newTextEntry(b *board.Board) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Type Here")
	entry.Disable()
	syncing := false
	entry.OnChanged = func(s string) {
		if !syncing {
			b.SetText(s)
		}
	}

	redraw := b.OnRedraw
	b.OnRedraw = func() {
		if redraw != nil {
			redraw()
		}
		obj, ok := b.Active()
		text, isText := obj.Text()
		if !ok || !isText {
			entry.Disable()
			return
		}
		entry.Enable()
		if entry.Text != text.Text {
			syncing = true
			entry.SetText(text.Text)
			syncing = false
		}
	}
	return entry
}

func newOnionControls(b *board.Board, onion *state.OnionSettings) fyne.CanvasObject {
	apply := func() { b.SetOnion(*onion) }

	enabled := widget.NewCheck("Onion skin", func(on bool) { onion.Enabled = on; apply() })
	enabled.SetChecked(onion.Enabled)
	prev := widget.NewCheck("Previous", func(on bool) { onion.ShowPrevious = on; apply() })
	prev.SetChecked(onion.ShowPrevious)
	next := widget.NewCheck("Next", func(on bool) { onion.ShowNext = on; apply() })
	next.SetChecked(onion.ShowNext)
	opacity := widget.NewSlider(0, 1)
	opacity.Step = 0.05
	opacity.SetValue(onion.Opacity)
	opacity.OnChanged = func(o float64) { onion.Opacity = o; apply() }

	return container.NewVBox(enabled, container.NewHBox(prev, next), opacity)
}

// newEffectControls toggles each effect type, starting from the configured
// set. Effects keep their id while enabled so their animation state survives
// intensity changes. cfg is kept current with the controls.
func newEffectControls(b *board.Board, cfg *config.Effects) fyne.CanvasObject {
	active := map[state.EffectType]state.Effect{}
	for _, e := range cfg.List(b.Brush().Color) {
		active[e.Type] = e
	}
	apply := func() {
		list := make([]state.Effect, 0, len(active))
		names := make([]string, 0, len(active))
		for _, t := range effectTypes {
			if e, ok := active[t]; ok {
				e.Intensity = cfg.Intensity
				active[t] = e
				list = append(list, e)
				names = append(names, string(t))
			}
		}
		cfg.Enabled = names
		b.SetEffects(list)
	}
	if len(active) > 0 {
		apply()
	}

	box := container.NewVBox(widget.NewLabelWithStyle("Effects", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	for _, t := range effectTypes {
		check := widget.NewCheck(strings.ReplaceAll(string(t), "_", " "), nil)
		_, on := active[t]
		check.SetChecked(on)
		check.OnChanged = func(on bool) {
			if on {
				active[t] = state.NewEffect(t, b.Brush().Color, cfg.Intensity)
			} else {
				delete(active, t)
			}
			apply()
		}
		box.Add(check)
	}
	level := widget.NewSlider(0, 100)
	level.SetValue(cfg.Intensity)
	level.OnChanged = func(v float64) {
		cfg.Intensity = v
		if len(active) > 0 {
			apply()
		}
	}
	box.Add(level)
	return box
}
