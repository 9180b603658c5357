package game

import (
	"fmt"

	"riverscene/internal/world"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	panelWidth   = 260
	panelPadding = 10
	rowHeight    = 22
	labelWidth   = 70
)

var (
	colorBgDark        = rl.NewColor(10, 10, 15, 255)
	colorBgPanel       = rl.NewColor(18, 18, 24, 230)
	colorBgElement     = rl.NewColor(28, 28, 38, 255)
	colorBgHover       = rl.NewColor(38, 38, 52, 255)
	colorAccent        = rl.NewColor(108, 99, 255, 255)
	colorTextPrimary   = rl.NewColor(255, 255, 255, 255)
	colorTextSecondary = rl.NewColor(200, 200, 208, 255)
	colorTextMuted     = rl.NewColor(119, 119, 119, 255)
	colorOK            = rl.NewColor(120, 200, 120, 255)
	colorFailed        = rl.NewColor(230, 90, 90, 255)
)

func initPanelStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 14)
}

// binding is one slider: a label and a live pointer into the value it edits.
type binding struct {
	label    string
	value    *float32
	min, max float32
}

type toggle struct {
	label string
	value *bool
}

// Panel is the parameter overlay. Sliders write straight through their
// bound pointers, so an edit is visible to the camera on the same frame.
type Panel struct {
	Visible bool

	x, y     float32
	bindings []binding
	toggles  []toggle
	grabbed  bool
}

func NewPanel(visible bool) *Panel {
	return &Panel{Visible: visible, x: panelPadding, y: panelPadding}
}

// Bind adds a slider for value over [min, max].
func (p *Panel) Bind(label string, value *float32, min, max float32) {
	p.bindings = append(p.bindings, binding{label: label, value: value, min: min, max: max})
}

// BindToggle adds a checkbox for value.
func (p *Panel) BindToggle(label string, value *bool) {
	p.toggles = append(p.toggles, toggle{label: label, value: value})
}

// SetRange changes the slider range for label. The bound value is left alone
// until the slider is moved.
func (p *Panel) SetRange(label string, min, max float32) bool {
	for i := range p.bindings {
		if p.bindings[i].label == label {
			p.bindings[i].min, p.bindings[i].max = min, max
			return true
		}
	}
	return false
}

// Set writes v, clamped to the slider range, through the binding for label.
func (p *Panel) Set(label string, v float32) bool {
	for _, b := range p.bindings {
		if b.label == label {
			*b.value = clamp(v, b.min, b.max)
			return true
		}
	}
	return false
}

func (p *Panel) Toggle() {
	p.Visible = !p.Visible
	p.grabbed = false
}

// Anchor places the panel's top-left corner.
func (p *Panel) Anchor(x, y float32) {
	p.x, p.y = x, y
}

// Bounds is the panel's screen rectangle, including the status rows.
func (p *Panel) Bounds(statusRows int) rl.Rectangle {
	rows := len(p.bindings) + len(p.toggles) + statusRows + 2
	return rl.Rectangle{
		X:      p.x,
		Y:      p.y,
		Width:  panelWidth,
		Height: float32(rows*rowHeight + 2*panelPadding),
	}
}

// Contains reports whether pos is over the visible panel.
func (p *Panel) Contains(pos rl.Vector2, statusRows int) bool {
	return p.Visible && rl.CheckCollisionPointRec(pos, p.Bounds(statusRows))
}

// Captures reports whether pointer input belongs to the panel this frame. A
// press that starts over the panel keeps the pointer until it is released,
// even when the drag leaves the panel.
func (p *Panel) Captures(pos rl.Vector2, pressed, down bool, statusRows int) bool {
	over := p.Contains(pos, statusRows)
	if pressed {
		p.grabbed = over
	}
	if !down {
		p.grabbed = false
		return over
	}
	return p.grabbed
}

// Draw renders the sliders, toggles and asset status. Must be called between
// BeginDrawing and EndDrawing.
func (p *Panel) Draw(status []world.AssetStatus, fps int32) {
	if !p.Visible {
		return
	}
	bounds := p.Bounds(len(status))
	rl.DrawRectangleRec(bounds, colorBgPanel)
	rl.DrawRectangleLinesEx(bounds, 1, rl.NewColor(50, 50, 65, 255))

	x := int32(bounds.X) + panelPadding
	y := bounds.Y + panelPadding
	rl.DrawText(fmt.Sprintf("Camera  %d fps", fps), x, int32(y)+4, 14, colorTextPrimary)
	y += rowHeight

	for _, b := range p.bindings {
		rl.DrawText(b.label, x, int32(y)+4, 14, colorTextSecondary)
		slider := rl.Rectangle{
			X:      bounds.X + panelPadding + labelWidth,
			Y:      y + 2,
			Width:  panelWidth - 2*panelPadding - labelWidth - 40,
			Height: rowHeight - 4,
		}
		current := clamp(*b.value, b.min, b.max)
		next := gui.Slider(slider, "", fmt.Sprintf("%.1f", *b.value), current, b.min, b.max)
		if next != current {
			*b.value = clamp(next, b.min, b.max)
		}
		y += rowHeight
	}

	for _, t := range p.toggles {
		box := rl.Rectangle{X: bounds.X + panelPadding, Y: y + 4, Width: 14, Height: 14}
		*t.value = gui.CheckBox(box, t.label, *t.value)
		y += rowHeight
	}

	rl.DrawText("Assets", x, int32(y)+4, 14, colorTextPrimary)
	y += rowHeight
	for _, s := range status {
		color := colorTextMuted
		switch s.State {
		case world.AssetLoaded:
			color = colorOK
		case world.AssetFailed:
			color = colorFailed
		}
		rl.DrawText(fmt.Sprintf("%-8s %s", s.Name, s.State), x, int32(y)+4, 14, color)
		y += rowHeight
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
