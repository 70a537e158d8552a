// Particle field preview tool - CPU reference rendering of the particle program
// with sliders for every uniform. Useful for checking shader math without a GPU.
//
// Usage: go run ./cmd/fieldpreview
package main

import (
	"fmt"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlefield/app"
	"github.com/pthm-cable/particlefield/camera"
	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/particles"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/renderer/soft"
	"github.com/pthm-cable/particlefield/shaders"
	"github.com/pthm-cable/particlefield/ui"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// previewParams holds the values driven by sliders.
type previewParams struct {
	Time   float32
	MouseX float32
	MouseY float32
	Field  config.FieldConfig

	// Offscreen parks the attraction point at the no-pointer sentinel
	Offscreen bool
}

// preview owns the CPU surface and the resources drawn into it.
type preview struct {
	cfg     *config.Config
	surface *soft.Surface
	prog    renderer.Program
	geo     renderer.Geometry
	cam     *camera.Camera
	theme   host.Theme
}

func newPreview(cfg *config.Config) (*preview, error) {
	s, err := soft.New().NewSurface(previewSize, previewSize, 1)
	if err != nil {
		return nil, err
	}
	prog, err := s.Compile(shaders.Particles())
	if err != nil {
		s.Release()
		return nil, err
	}
	r := cfg.Render
	cam := camera.New(r.FOV, r.Near, r.Far, r.CameraDistance)
	cam.Resize(previewSize, previewSize)
	return &preview{
		cfg:     cfg,
		surface: s.(*soft.Surface),
		prog:    prog,
		cam:     cam,
		theme:   host.ThemeDark,
	}, nil
}

// regenerate uploads a fresh particle set for count and globe size.
func (p *preview) regenerate(f config.FieldConfig) error {
	if p.geo != nil {
		p.geo.Release()
		p.geo = nil
	}
	geo, err := p.surface.Upload(particles.Generate(f.Count, f.GlobeSize, rand.New(rand.NewSource(1))))
	if err != nil {
		return err
	}
	p.geo = geo
	return nil
}

// render draws one frame and returns it as a texture. The caller unloads it.
func (p *preview) render(params previewParams) rl.Texture2D {
	colors := p.cfg.Derived.DarkColors
	if p.theme == host.ThemeLight {
		colors = p.cfg.Derived.LightColors
	}
	u := field.RestUniforms(params.Field, p.cfg.Render, p.cam.TanHalfFOV(), previewSize, previewSize, 1, colors)
	u.Time = params.Time
	if !params.Offscreen {
		u.SetMouse(r3.Vec{X: float64(params.MouseX), Y: float64(params.MouseY)})
	}

	p.surface.Draw(p.cam, p.prog, p.geo, &u)

	img := rl.NewImageFromImage(p.surface.Snapshot(app.Background(p.theme)))
	defer rl.UnloadImage(img)
	return rl.LoadTextureFromImage(img)
}

func (p *preview) release() {
	if p.geo != nil {
		p.geo.Release()
	}
	p.prog.Release()
	p.surface.Release()
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Particle Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	cfg := config.Default()
	params := previewParams{MouseX: 0.1, MouseY: 0.05, Field: cfg.Field}

	p, err := newPreview(cfg)
	if err != nil {
		panic(err)
	}
	defer p.release()
	if err := p.regenerate(params.Field); err != nil {
		panic(err)
	}

	texture := p.render(params)
	defer func() { rl.UnloadTexture(texture) }()

	widgets := ui.NewRenderer()
	sliders := ui.FieldSliders()
	animating := false
	needsRender := false

	for !rl.WindowShouldClose() {
		if animating {
			params.Time += rl.GetFrameTime()
			needsRender = true
		}

		if needsRender {
			rl.UnloadTexture(texture)
			texture = p.render(params)
			needsRender = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexture(texture, 10, 10, rl.White)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Sprites drawn: %d / %d", p.surface.Sprites(), params.Field.Count), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.2f  Heartbeat: %.2f", params.Time, shaders.Heartbeat(float64(params.Time))), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Theme: %s", p.theme), 15, statsY+40, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Particle Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Time slider
		rl.DrawText("Time (seconds)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newTime := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "10",
			params.Time, 0, 10,
		)
		if newTime != params.Time {
			params.Time = newTime
			needsRender = true
		}
		panelY += 35

		// Attraction point sliders
		rl.DrawText("Attraction point X / Y (world units)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newX := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"-1", "1",
			params.MouseX, -1, 1,
		)
		panelY += 26
		newY := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"-1", "1",
			params.MouseY, -1, 1,
		)
		if newX != params.MouseX || newY != params.MouseY {
			params.MouseX, params.MouseY = newX, newY
			params.Offscreen = false
			needsRender = true
		}
		panelY += 35

		// Field settings; count and globe size need new particles
		y := int32(panelY)
		regen := false
		for _, d := range sliders {
			cur := d.Get(&params.Field)
			next, ny := widgets.DrawSlider(int32(panelX), y, d, cur, panelWidth-20)
			if next != cur {
				d.Set(&params.Field, next)
				needsRender = true
				if d.ID == "count" || d.ID == "globe_size" {
					regen = true
				}
			}
			y = ny
		}
		if regen {
			if err := p.regenerate(params.Field); err != nil {
				panic(err)
			}
		}
		panelY = float32(y) + 10

		// Separator
		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15

		animLabel := "Animate"
		if animating {
			animLabel = "Stop"
		}
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 100, Height: 30}, animLabel) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 110, Y: panelY, Width: 100, Height: 30}, "Theme") {
			p.theme = p.theme.Other()
			needsRender = true
		}
		pointerLabel := "No pointer"
		if params.Offscreen {
			pointerLabel = "Pointer"
		}
		if gui.Button(rl.Rectangle{X: panelX + 220, Y: panelY, Width: 100, Height: 30}, pointerLabel) {
			params.Offscreen = !params.Offscreen
			needsRender = true
		}

		rl.EndDrawing()
	}
}
