// Shader debug tool - renders the particle program offscreen to a PNG file for inspection.
//
// Usage: go run ./cmd/shaderdebug -out debug.png -time 0.4 -mouse-x 0.1 -mouse-y 0.05
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlefield/camera"
	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/particles"
	"github.com/pthm-cable/particlefield/renderer/gpu"
	"github.com/pthm-cable/particlefield/shaders"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	theme := flag.String("theme", "dark", "Palette: dark or light")
	t := flag.Float64("time", 0, "Shader time in seconds")
	mouseX := flag.Float64("mouse-x", shaders.OffscreenMouse, "Attraction point X (world units)")
	mouseY := flag.Float64("mouse-y", shaders.OffscreenMouse, "Attraction point Y (world units)")
	seed := flag.Int64("seed", 1, "Particle RNG seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	colors := cfg.Derived.DarkColors
	if *theme == "light" {
		colors = cfg.Derived.LightColors
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	surface, err := gpu.New().NewSurface(float64(*width), float64(*height), 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create surface: %v\n", err)
		os.Exit(1)
	}
	defer surface.Release()

	prog, err := surface.Compile(shaders.Particles())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to compile particle program: %v\n", err)
		os.Exit(1)
	}
	defer prog.Release()

	set := particles.Generate(cfg.Field.Count, cfg.Field.GlobeSize, rand.New(rand.NewSource(*seed)))
	geo, err := surface.Upload(set)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to upload particles: %v\n", err)
		os.Exit(1)
	}
	defer geo.Release()

	r := cfg.Render
	cam := camera.New(r.FOV, r.Near, r.Far, r.CameraDistance)
	cam.Resize(float64(*width), float64(*height))

	w, h := surface.Size()
	u := field.RestUniforms(cfg.Field, r, cam.TanHalfFOV(), w, h, 1, colors)
	u.Time = float32(*t)
	u.SetMouse(r3.Vec{X: *mouseX, Y: *mouseY})

	surface.Draw(cam, prog, geo, &u)

	if err := surface.(*gpu.Surface).ExportPNG(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to export image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Particle program rendered to: %s (%dx%d, %d particles)\n", *outPath, w, h, set.Len())
}
