package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a progress bar for [0, 1] values. Fills above warn turn amber,
// above high red.
func (r *Renderer) DrawBar(x, y int32, label string, value, warn, high float32, width int32) int32 {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)

	fill := r.Theme.BarFill
	if value > high {
		fill = r.Theme.BarFillHigh
	} else if value > warn {
		fill = r.Theme.BarFillWarn
	}
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*value), r.Theme.BarHeight, fill)

	rl.DrawText(fmt.Sprintf("%.0f%%", value*100), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight + 2
}

// DrawColorSwatch draws a labelled row of color swatches.
func (r *Renderer) DrawColorSwatch(x, y int32, label string, colors []colorful.Color) int32 {
	size := int32(12)
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	sx := x + r.Theme.LabelWidth
	for _, c := range colors {
		rl.DrawRectangle(sx, y+1, size, size, ToRaylib(c))
		sx += size + 4
	}
	return y + r.Theme.LineHeight
}

// DrawSlider draws a labelled raygui slider and returns the new value.
func (r *Renderer) DrawSlider(x, y int32, d SliderDescriptor, value float32, width int32) (float32, int32) {
	rl.DrawText(d.Label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.FontSize + 4

	sliderWidth := float32(width - 60)
	next := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: sliderWidth, Height: float32(r.Theme.SliderHeight)},
		"", "",
		value, d.Min, d.Max,
	)
	rl.DrawText(fmt.Sprintf(d.Format, value), x+int32(sliderWidth)+8, y+3, r.Theme.FontSize, r.Theme.ValueColor)

	return d.Snap(next), y + r.Theme.SliderHeight + 8
}

// DrawButton draws a raygui button and reports whether it was clicked.
func (r *Renderer) DrawButton(x, y, width int32, text string) bool {
	return gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(width), Height: 24}, text)
}

// ToRaylib converts a colorful color to an opaque raylib color.
func ToRaylib(c colorful.Color) rl.Color {
	cr, cg, cb := c.Clamped().RGB255()
	return rl.Color{R: cr, G: cg, B: cb, A: 255}
}
