package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlefield/config"
)

// Action is a button pressed on the control panel.
type Action int

const (
	ActionNone Action = iota
	ActionApply
	ActionReset
	ActionLoad
	ActionSave
	ActionToggleTheme
)

// ControlPanel edits a FieldConfig with sliders. Edits stay pending until
// Apply, since a running field only picks up settings on reattach.
type ControlPanel struct {
	renderer *Renderer
	sliders  []SliderDescriptor
	x, y     int32
	width    int32
	dirty    bool
}

// NewControlPanel creates a control panel over every field setting.
func NewControlPanel(x, y, width int32) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		sliders:  FieldSliders(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Dirty reports whether there are unapplied edits.
func (c *ControlPanel) Dirty() bool {
	return c.dirty
}

// MarkClean clears the pending-edit flag, typically after the field was reattached.
func (c *ControlPanel) MarkClean() {
	c.dirty = false
}

// Height returns the panel height for the current slider set.
func (c *ControlPanel) Height() int32 {
	t := c.renderer.Theme
	rows := int32(len(c.sliders))
	return t.Padding*2 + t.LineHeight + 6 + rows*(t.FontSize+4+t.SliderHeight+8) + 2*(24+6)
}

// Draw renders the panel, applies slider edits to cfg and returns the pressed action.
func (c *ControlPanel) Draw(cfg *config.FieldConfig) Action {
	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.Height())

	x := c.x + padding
	y := c.y + padding
	inner := c.width - padding*2

	title := "Field Settings"
	if c.dirty {
		title += " *"
	}
	rl.DrawText(title, x, y, 16, rl.White)
	y += r.Theme.LineHeight + 6

	for _, d := range c.sliders {
		cur := d.Get(cfg)
		next, ny := r.DrawSlider(x, y, d, cur, inner)
		if next != cur {
			d.Set(cfg, next)
			c.dirty = true
		}
		y = ny
	}

	action := ActionNone
	half := (inner - 6) / 2
	if r.DrawButton(x, y, half, "Apply") {
		action = ActionApply
	}
	if r.DrawButton(x+half+6, y, half, "Reset") {
		action = ActionReset
	}
	y += 30
	third := (inner - 12) / 3
	if r.DrawButton(x, y, third, "Load...") {
		action = ActionLoad
	}
	if r.DrawButton(x+third+6, y, third, "Save...") {
		action = ActionSave
	}
	if r.DrawButton(x+2*(third+6), y, third, "Theme") {
		action = ActionToggleTheme
	}
	return action
}
