// Package ui provides descriptor-driven panels for the particle field preview:
// a heads-up display, a perf panel and a slider panel over the field settings.
// Sliders are defined through metadata so new field settings only need a descriptor.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlefield/config"
)

// SliderDescriptor binds one slider to a numeric field setting.
type SliderDescriptor struct {
	ID     string  // Unique identifier
	Label  string  // Display label
	Min    float32 // Slider minimum
	Max    float32 // Slider maximum
	Format string  // Printf format for the value readout
	Step   float32 // Values snap to multiples of Step (0 = continuous)

	Get func(*config.FieldConfig) float32
	Set func(*config.FieldConfig, float32)
}

// Snap rounds v to the descriptor's step and clamps it to [Min, Max].
func (d SliderDescriptor) Snap(v float32) float32 {
	if d.Step > 0 {
		v = float32(int32(v/d.Step+0.5)) * d.Step
	}
	if v < d.Min {
		v = d.Min
	}
	if v > d.Max {
		v = d.Max
	}
	return v
}

// FieldSliders returns the sliders for every numeric FieldConfig setting.
func FieldSliders() []SliderDescriptor {
	return []SliderDescriptor{
		{
			ID: "count", Label: "Particles", Min: 0, Max: 5000, Step: 10, Format: "%.0f",
			Get: func(f *config.FieldConfig) float32 { return float32(f.Count) },
			Set: func(f *config.FieldConfig, v float32) { f.Count = int(v) },
		},
		{
			ID: "globe_size", Label: "Globe size", Min: 0.05, Max: 1.5, Format: "%.2f",
			Get: func(f *config.FieldConfig) float32 { return float32(f.GlobeSize) },
			Set: func(f *config.FieldConfig, v float32) { f.GlobeSize = float64(v) },
		},
		{
			ID: "particle_scale", Label: "Particle scale", Min: 0.1, Max: 3, Format: "%.2f",
			Get: func(f *config.FieldConfig) float32 { return float32(f.ParticleScale) },
			Set: func(f *config.FieldConfig, v float32) { f.ParticleScale = float64(v) },
		},
		{
			ID: "ring_radius", Label: "Ring radius", Min: 0, Max: 0.6, Format: "%.3f",
			Get: func(f *config.FieldConfig) float32 { return float32(f.RingRadius) },
			Set: func(f *config.FieldConfig, v float32) { f.RingRadius = float64(v) },
		},
		{
			ID: "ring_width", Label: "Ring width", Min: 0, Max: 0.6, Format: "%.3f",
			Get: func(f *config.FieldConfig) float32 { return float32(f.RingWidth) },
			Set: func(f *config.FieldConfig, v float32) { f.RingWidth = float64(v) },
		},
		{
			ID: "displacement", Label: "Displacement", Min: 0, Max: 0.6, Format: "%.3f",
			Get: func(f *config.FieldConfig) float32 { return float32(f.Displacement) },
			Set: func(f *config.FieldConfig, v float32) { f.Displacement = float64(v) },
		},
		{
			ID: "heartbeat_scale", Label: "Heartbeat", Min: 0, Max: 2, Format: "%.2f",
			Get: func(f *config.FieldConfig) float32 { return float32(f.HeartbeatScale) },
			Set: func(f *config.FieldConfig, v float32) { f.HeartbeatScale = float64(v) },
		},
		{
			ID: "swim_speed", Label: "Swim speed", Min: 0, Max: 2, Format: "%.2f",
			Get: func(f *config.FieldConfig) float32 { return float32(f.SwimSpeed) },
			Set: func(f *config.FieldConfig, v float32) { f.SwimSpeed = float64(v) },
		},
	}
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillHigh    rl.Color
	BarFillWarn    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	SliderHeight   int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 230},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillHigh:    rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillWarn:    rl.Color{R: 200, G: 180, B: 100, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     96,
		BarHeight:      12,
		SliderHeight:   18,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
