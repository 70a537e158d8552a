package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/particlefield/telemetry"
)

// HUDData holds everything the heads-up display shows about one field.
type HUDData struct {
	Title        string
	Phase        string
	Theme        string
	Frame        int64
	Particles    int
	FPS          int32
	Visible      bool
	Intersecting bool
	HitX, HitY   float64
	Colors       [3]colorful.Color
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD(x, y, width int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the HUD and returns the Y below it.
func (h *HUD) Draw(data HUDData) int32 {
	r := h.renderer
	padding := r.Theme.Padding
	height := r.Theme.LineHeight*8 + padding*2 + 8

	r.DrawPanel(h.x, h.y, h.width, height)
	x := h.x + padding
	y := h.y + padding

	rl.DrawText(data.Title, x, y, 16, rl.White)
	y += r.Theme.LineHeight + 6

	status := data.Phase
	if !data.Visible {
		status += " (offscreen)"
	}
	y = r.DrawLabelValue(x, y, "State", status)
	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%d", data.Frame))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d", data.Particles))
	y = r.DrawLabelValue(x, y, "Theme", data.Theme)

	pointer := "none"
	if data.Intersecting {
		pointer = fmt.Sprintf("%+.3f, %+.3f", data.HitX, data.HitY)
	}
	y = r.DrawLabelValue(x, y, "Pointer", pointer)
	y = r.DrawColorSwatch(x, y, "Palette", data.Colors[:])

	return h.y + height
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders frame timing from the perf collector.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding

	names := make([]string, 0, len(stats.PhaseAvg))
	for name := range stats.PhaseAvg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return stats.PhaseAvg[names[i]] > stats.PhaseAvg[names[j]]
	})

	height := r.Theme.LineHeight*int32(len(names)+4) + padding*2
	r.DrawPanel(p.x, p.y, p.width, height)
	x := p.x + padding
	y := p.y + padding

	rl.DrawText("Frame Performance", x, y, 14, rl.White)
	y += r.Theme.LineHeight + 2

	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%s (%s..%s)",
		stats.AvgFrame.Round(time.Microsecond),
		stats.MinFrame.Round(time.Microsecond),
		stats.MaxFrame.Round(time.Microsecond)))
	y = r.DrawLabelValue(x, y, "Present", fmt.Sprintf("%s (%.1f fps)",
		stats.PresentInterval.Round(time.Microsecond), stats.FPS))

	for _, name := range names {
		y = r.DrawBar(x, y, name, float32(stats.PhasePct[name]/100), 0.4, 0.7, p.width-padding*2)
	}
}
