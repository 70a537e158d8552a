// Package desktop runs the particle field in a raylib window: a scrollable page
// with the field behind its hero section and debug panels on top.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/ncruces/zenity"

	"github.com/pthm-cable/particlefield/app"
	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/renderer/gpu"
	"github.com/pthm-cable/particlefield/telemetry"
	"github.com/pthm-cable/particlefield/ui"
)

const (
	scrollStep = 48
	panelWidth = 300
	legend     = "[T] theme  [H] hide/show  [R] remount  [wheel] scroll  [F1-F5] panels"
)

// Options configures the window.
type Options struct {
	Title string

	// MaxFrames closes the window after N frames (0 = unlimited)
	MaxFrames int
}

// App is the windowed host.
type App struct {
	session  *app.Session
	cfg      *config.Config
	logger   *slog.Logger
	perf     *telemetry.PerfCollector
	overlays *ui.OverlayRegistry

	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	controls  *ui.ControlPanel

	// pending is the field config edited by the control panel
	pending config.FieldConfig

	start         time.Time
	frames        int
	pointerInside bool
	screenWidth   int32
	screenHeight  int32
}

// Run opens the window and drives the session until the window closes, ctx is
// done or MaxFrames is reached. The session's backend is always the raylib one.
func Run(ctx context.Context, sessOpts app.Options, opts Options) error {
	cfg := sessOpts.Config
	if cfg == nil {
		cfg = config.Default()
		sessOpts.Config = cfg
	}
	if opts.Title == "" {
		opts.Title = "Particle Field"
	}

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), opts.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	sessOpts.Backend = gpu.New()
	if scale := rl.GetWindowScaleDPI(); scale.X > 1 {
		sessOpts.PixelRatio = float64(scale.X)
	}

	s := app.NewSession(sessOpts)
	defer s.Close()

	a := newApp(s, cfg, sessOpts.Logger, sessOpts.Perf)
	a.handleResize(true)
	if err := s.Start(ctx); err != nil {
		return err
	}

	for !rl.WindowShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		a.Update()
		a.Draw()

		if opts.MaxFrames > 0 && a.frames >= opts.MaxFrames {
			a.logger.Info("max frames reached", "frame", a.frames)
			break
		}
	}
	return nil
}

func newApp(s *app.Session, cfg *config.Config, logger *slog.Logger, perf *telemetry.PerfCollector) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		session:   s,
		cfg:       cfg,
		logger:    logger,
		perf:      perf,
		overlays:  ui.NewOverlayRegistry(),
		hud:       ui.NewHUD(10, 10, panelWidth),
		perfPanel: ui.NewPerfPanel(10, 200, panelWidth),
		controls:  ui.NewControlPanel(0, 10, panelWidth),
		pending:   s.FieldConfig(),
		start:     time.Now(),
	}
}

// Update processes input and runs one event-loop frame.
func (a *App) Update() {
	a.handleResize(false)
	a.overlays.HandleKeys()
	a.handleKeys()
	a.handlePointer()

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.session.Scroll(float64(-wheel * scrollStep))
	}

	a.session.Frame(time.Since(a.start))
	a.frames++
}

// handleResize propagates window size changes to the page layout.
func (a *App) handleResize(force bool) {
	if !force && !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if !force && w == a.screenWidth && h == a.screenHeight {
		return
	}
	a.screenWidth = w
	a.screenHeight = h
	a.session.Resize(float64(w), float64(h))
	a.controls.SetPosition(w-panelWidth-10, 10)
}

func (a *App) handleKeys() {
	if rl.IsKeyPressed(rl.KeyT) {
		a.session.ToggleTheme()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		if a.session.Mounted() {
			a.session.Unmount()
		} else if err := a.session.Mount(); err != nil {
			a.logger.Warn("particle field unavailable", "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.remount(a.pending)
	}
}

// handlePointer forwards the mouse as pointer moves, and a leave when it exits the window.
func (a *App) handlePointer() {
	if !rl.IsCursorOnScreen() {
		if a.pointerInside {
			a.pointerInside = false
			a.session.PointerLeave()
		}
		return
	}
	pos := rl.GetMousePosition()
	a.pointerInside = true
	a.session.PointerMove(float64(pos.X), float64(pos.Y))
}

func (a *App) remount(cfg config.FieldConfig) {
	if err := a.session.Remount(cfg); err != nil {
		a.logger.Warn("remount failed", "error", err)
		return
	}
	a.pending = cfg
	a.controls.MarkClean()
}

// Draw composites the page and its overlays.
func (a *App) Draw() {
	doc := a.session.Document()

	rl.BeginDrawing()
	rl.ClearBackground(ui.ToRaylib(app.Background(doc.Theme())))

	a.session.Composite()

	if a.overlays.IsEnabled(ui.OverlayHeroOutline) {
		b := a.session.Hero().Bounds()
		rl.DrawRectangleLinesEx(
			rl.Rectangle{X: float32(b.X), Y: float32(b.Y), Width: float32(b.W), Height: float32(b.H)},
			1, rl.Magenta,
		)
	}

	y := int32(10)
	if a.overlays.IsEnabled(ui.OverlayHUD) {
		y = a.hud.Draw(a.hudData()) + 10
	}
	if a.overlays.IsEnabled(ui.OverlayPerf) {
		a.perfPanel.SetPosition(10, y)
		a.perfPanel.Draw(a.perf.Stats())
	}
	if a.overlays.IsEnabled(ui.OverlayControls) {
		a.handleAction(a.controls.Draw(&a.pending))
	}
	if a.overlays.IsEnabled(ui.OverlayHelp) {
		a.hud.DrawControls(a.screenHeight, legend)
	}

	rl.EndDrawing()
	a.perf.RecordPresent()
}

func (a *App) hudData() ui.HUDData {
	data := ui.HUDData{
		Title:   "Particle Field",
		Phase:   "unmounted",
		Theme:   string(a.session.Document().Theme()),
		FPS:     rl.GetFPS(),
		Visible: true,
		Colors:  a.cfg.Derived.DarkColors,
	}
	e := a.session.Engine()
	if e == nil {
		return data
	}
	st := e.Interaction()
	data.Phase = e.Phase().String()
	data.Theme = string(st.Theme)
	data.Frame = st.Frame
	data.Particles = e.Config().Count
	data.Visible = st.Visible
	data.Intersecting = st.Intersecting
	data.HitX, data.HitY = st.Hit.X, st.Hit.Y
	u := e.Uniforms()
	data.Colors = u.Colors()
	return data
}

func (a *App) handleAction(action ui.Action) {
	switch action {
	case ui.ActionApply:
		a.remount(a.pending)
	case ui.ActionReset:
		a.remount(a.cfg.Field)
	case ui.ActionToggleTheme:
		a.session.ToggleTheme()
	case ui.ActionLoad:
		if err := a.loadDialog(); err != nil {
			a.logger.Warn("loading field config", "error", err)
		}
	case ui.ActionSave:
		if err := a.saveDialog(); err != nil {
			a.logger.Warn("saving field config", "error", err)
		}
	}
}

var yamlFilter = zenity.FileFilters{{
	Name:     "YAML",
	Patterns: []string{"*.yaml", "*.yml"},
}}

// loadDialog asks for a config file and remounts with its field section.
func (a *App) loadDialog() error {
	path, err := zenity.SelectFile(zenity.Title("Load Field Config"), yamlFilter)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	a.logger.Info("field config loaded", "path", path)
	a.remount(loaded.Field)
	return nil
}

// saveDialog writes the current config with the pending field settings.
func (a *App) saveDialog() error {
	path, err := zenity.SelectFileSave(
		zenity.Title("Save Field Config"),
		zenity.Filename("field.yaml"),
		zenity.ConfirmOverwrite(),
		yamlFilter,
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	out := *a.cfg
	out.Field = a.pending
	if err := out.WriteYAML(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	a.logger.Info("field config saved", "path", path)
	return nil
}
