// Package field runs the interactive particle globe: attachment to a host
// container, the per-frame render loop, and pointer, visibility, theme and resize
// handling.
package field

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/particlefield/camera"
	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/particles"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/shaders"
	"github.com/pthm-cable/particlefield/telemetry"
)

// Attachment errors.
var (
	ErrNoContainer        = errors.New("field: no container")
	ErrContainerDetached  = errors.New("field: container is not in the document")
	ErrContainerEmpty     = errors.New("field: container has zero size")
	ErrBackendUnavailable = errors.New("field: rendering backend unavailable")
	ErrIncompleteEnv      = errors.New("field: environment needs an event loop and a window")
)

// pointerLimit bounds pointer NDC so a pointer far outside the container still
// yields a finite ray.
const pointerLimit = 100

// ThemeSource reports the page theme and its changes. host.DocumentRoot implements it.
type ThemeSource interface {
	Theme() host.Theme
	ObserveTheme(fn func()) (disconnect func())
}

// Env is everything an engine needs from its host.
type Env struct {
	Backend renderer.Backend
	Loop    *host.EventLoop
	Window  *host.Window

	// Theme may be nil, in which case the field stays dark.
	Theme ThemeSource

	// Config supplies render constants and palettes. Nil uses the embedded defaults.
	Config *config.Config

	Perf   *telemetry.PerfCollector
	Output *telemetry.OutputManager
	Logger *slog.Logger

	// Rand seeds particle generation. Nil uses the unseeded package source.
	Rand *rand.Rand
}

func (env Env) withDefaults() Env {
	if env.Config == nil {
		env.Config = config.Default()
	}
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	return env
}

type resources struct {
	surface  renderer.Surface
	program  renderer.Program
	geometry renderer.Geometry
	camera   *camera.Camera
	plane    camera.Plane
}

// release frees whatever has been acquired, in program, geometry, surface order.
func (r *resources) release() {
	if r.program != nil {
		r.program.Release()
		r.program = nil
	}
	if r.geometry != nil {
		r.geometry.Release()
		r.geometry = nil
	}
	if r.surface != nil {
		r.surface.Release()
		r.surface = nil
	}
}

// Engine owns one attachment of the particle field to a container.
// All methods must be called on the event loop.
type Engine struct {
	env       Env
	render    config.RenderConfig
	cfg       config.FieldConfig
	container host.Container
	logger    *slog.Logger

	phase    Phase
	res      resources
	state    InteractionState
	uniforms shaders.Uniforms

	// fixedColors is set when colors or theme are configured; theme changes are ignored.
	fixedColors bool

	started   bool
	startTime time.Duration
	frameID   host.FrameID

	disconnect []func()
}

func newEngine(env Env) *Engine {
	render := env.Config.Render
	if render.RaycastEvery < 1 {
		render.RaycastEvery = 1
	}
	return &Engine{
		env:    env,
		render: render,
		logger: env.Logger,
	}
}

// attach acquires every resource and starts the loop. On error nothing stays allocated.
func (e *Engine) attach(container host.Container, cfg config.FieldConfig) error {
	if e.env.Loop == nil || e.env.Window == nil {
		return ErrIncompleteEnv
	}
	if container == nil {
		return ErrNoContainer
	}
	if !container.Attached() {
		return ErrContainerDetached
	}
	bounds := container.Bounds()
	if bounds.Empty() {
		return fmt.Errorf("%w (%gx%g)", ErrContainerEmpty, bounds.W, bounds.H)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("field: invalid config: %w", err)
	}
	if e.env.Backend == nil {
		return fmt.Errorf("%w: no backend", ErrBackendUnavailable)
	}

	e.container = container
	e.cfg = cfg
	pixelRatio := e.pixelRatio()

	surface, err := e.env.Backend.NewSurface(bounds.W, bounds.H, pixelRatio)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	e.res.surface = surface

	program, err := surface.Compile(shaders.Particles())
	if err != nil {
		e.res.release()
		return fmt.Errorf("field: compiling program: %w", err)
	}
	e.res.program = program

	set := particles.Generate(cfg.Count, cfg.GlobeSize, e.env.Rand)
	geometry, err := surface.Upload(set)
	if err != nil {
		e.res.release()
		return fmt.Errorf("field: uploading %d particles: %w", set.Len(), err)
	}
	e.res.geometry = geometry

	e.res.camera = camera.New(e.render.FOV, e.render.Near, e.render.Far, e.render.CameraDistance)
	e.res.camera.Resize(bounds.W, bounds.H)
	e.res.plane = camera.NewPlaneXY(e.render.PlaneSize, e.render.PlaneSize)
	e.phase = PhaseAttached

	theme, colors := e.resolveColors()
	e.state = newInteractionState(theme)
	e.initUniforms(pixelRatio, colors)

	container.AppendChild(surface)
	e.subscribe()

	e.phase = PhaseRunning
	e.frameID = e.env.Loop.RequestFrame(e.tick)

	w, h := surface.Size()
	e.logger.Info("particle field attached",
		"backend", e.env.Backend.Name(),
		"particles", set.Len(),
		"surface_w", w,
		"surface_h", h,
		"pixel_ratio", pixelRatio,
		"theme", string(theme),
		"fixed_colors", e.fixedColors,
	)
	e.event(telemetry.EventAttach, fmt.Sprintf("%dx%d", w, h))
	return nil
}

func (e *Engine) pixelRatio() float64 {
	pr := e.env.Window.PixelRatio
	if pr <= 0 {
		pr = 1
	}
	return math.Min(pr, e.render.MaxPixelRatio)
}

// resolveColors picks the palette: explicit colors, then a forced theme, then the page theme.
func (e *Engine) resolveColors() (host.Theme, [3]colorful.Color) {
	if len(e.cfg.Colors) == 3 {
		e.fixedColors = true
		colors, _ := config.ParsePalette(e.cfg.Colors)
		theme := host.ThemeDark
		if e.cfg.Theme != "" {
			theme = host.Theme(e.cfg.Theme)
		}
		return theme, colors
	}
	if e.cfg.Theme != "" {
		e.fixedColors = true
		theme := host.Theme(e.cfg.Theme)
		return theme, e.palette(theme)
	}
	theme := host.ThemeDark
	if e.env.Theme != nil {
		theme = e.env.Theme.Theme()
	}
	return theme, e.palette(theme)
}

func (e *Engine) palette(theme host.Theme) [3]colorful.Color {
	if theme == host.ThemeLight {
		return e.env.Config.Derived.LightColors
	}
	return e.env.Config.Derived.DarkColors
}

func (e *Engine) initUniforms(pixelRatio float64, colors [3]colorful.Color) {
	w, h := e.res.surface.Size()
	e.uniforms = RestUniforms(e.cfg, e.render, e.res.camera.TanHalfFOV(), w, h, pixelRatio, colors)
}

// RestUniforms builds the program inputs for a field at rest: time zero and no pointer.
func RestUniforms(cfg config.FieldConfig, render config.RenderConfig, tanHalfFOV float64, width, height int, pixelRatio float64, colors [3]colorful.Color) shaders.Uniforms {
	u := shaders.Uniforms{
		RingRadius:     float32(cfg.RingRadius),
		RingWidth:      float32(cfg.RingWidth),
		Displacement:   float32(cfg.Displacement),
		PixelRatio:     float32(pixelRatio),
		PointSize:      float32(cfg.ParticleScale * render.PointSizeFactor),
		HeartbeatScale: float32(cfg.HeartbeatScale),
		SwimSpeed:      float32(cfg.SwimSpeed),
		Resolution:     [2]float32{float32(width), float32(height)},
		TanHalfFOV:     float32(tanHalfFOV),
	}
	u.SetMouse(NoAttraction)
	u.SetColors(colors)
	return u
}

func (e *Engine) subscribe() {
	win := e.env.Window
	e.disconnect = append(e.disconnect,
		win.Resize.Listen(e.handleResize),
		win.Pointer.Listen(e.handlePointer),
	)

	vis := host.ObserveVisibility(e.env.Loop, e.container,
		func() host.Rect { return win.Viewport },
		e.render.VisibilityRatio, e.handleVisibility)
	e.disconnect = append(e.disconnect, vis.Disconnect)

	if !e.fixedColors && e.env.Theme != nil {
		e.disconnect = append(e.disconnect, e.env.Theme.ObserveTheme(e.handleTheme))
	}
}

// tick is the self-rescheduling frame callback.
func (e *Engine) tick(now time.Duration) {
	if e.phase == PhaseDetached {
		return
	}
	e.frameID = e.env.Loop.RequestFrame(e.tick)

	if !e.started {
		e.started = true
		e.startTime = now
	}
	if e.phase != PhaseRunning {
		return
	}

	perf := e.env.Perf
	perf.StartFrame()

	elapsed := now - e.startTime
	e.uniforms.Time = float32(elapsed.Seconds())
	e.state.Frame++

	perf.StartPhase(telemetry.PhaseRaycast)
	raycast := e.state.Frame%int64(e.render.RaycastEvery) == 0 && e.state.HasPointer
	if raycast {
		ray := e.res.camera.RayFromNDC(e.state.Pointer)
		if hit, ok := ray.IntersectPlane(e.res.plane); ok {
			e.state.Hit = hit
			e.state.Intersecting = true
		} else {
			e.state.Intersecting = false
		}
	}

	perf.StartPhase(telemetry.PhaseEase)
	if e.state.Intersecting {
		e.state.Attraction = Ease(e.state.Attraction, e.state.Hit,
			e.render.EaseBase, e.render.EaseGain, e.render.EaseMaxExtra)
	} else {
		e.state.Attraction = NoAttraction
	}
	e.uniforms.SetMouse(e.state.Attraction)

	perf.StartPhase(telemetry.PhaseDraw)
	e.res.surface.Draw(e.res.camera, e.res.program, e.res.geometry, &e.uniforms)
	perf.EndFrame()

	e.record(elapsed, raycast)
}

func (e *Engine) record(elapsed time.Duration, raycast bool) {
	if out := e.env.Output; out != nil {
		err := out.WriteFrame(telemetry.FrameRecord{
			Frame:        e.state.Frame,
			TimeS:        elapsed.Seconds(),
			Running:      e.phase == PhaseRunning,
			Raycast:      raycast,
			Intersecting: e.state.Intersecting,
			MouseX:       e.state.Attraction.X,
			MouseY:       e.state.Attraction.Y,
			MouseZ:       e.state.Attraction.Z,
			HitX:         e.state.Hit.X,
			HitY:         e.state.Hit.Y,
			Theme:        string(e.state.Theme),
		})
		if err != nil {
			e.logger.Warn("frame record dropped", "error", err)
		}
	}

	every := int64(e.env.Config.Telemetry.LogEvery)
	if e.env.Perf == nil || every <= 0 || e.state.Frame%every != 0 {
		return
	}
	stats := e.env.Perf.Stats()
	e.logger.Info("perf", "frame", e.state.Frame, "stats", stats)
	if err := e.env.Output.WritePerf(stats, e.state.Frame); err != nil {
		e.logger.Warn("perf record dropped", "error", err)
	}
}

func (e *Engine) event(t telemetry.EventType, detail string) {
	err := e.env.Output.WriteEvent(telemetry.Event{
		Frame:  e.state.Frame,
		TimeS:  float64(e.uniforms.Time),
		Type:   t,
		Detail: detail,
	})
	if err != nil {
		e.logger.Warn("event record dropped", "error", err)
	}
}

func (e *Engine) handlePointer(ev host.PointerEvent) {
	if e.phase == PhaseDetached {
		return
	}
	if ev.Leave {
		e.state.Pointer = NoPointer
		e.state.HasPointer = false
		e.state.Intersecting = false
		return
	}
	b := e.container.Bounds()
	ndc, ok := camera.PointerToNDC(ev.X, ev.Y, b.X, b.Y, b.W, b.H, pointerLimit)
	if !ok {
		return
	}
	e.state.Pointer = ndc
	e.state.HasPointer = true
}

func (e *Engine) handleResize(host.Rect) {
	if e.phase == PhaseDetached {
		return
	}
	b := e.container.Bounds()
	pr := e.pixelRatio()
	e.res.surface.Resize(b.W, b.H, pr)
	e.res.camera.Resize(b.W, b.H)

	w, h := e.res.surface.Size()
	e.uniforms.Resolution = [2]float32{float32(w), float32(h)}
	e.uniforms.PixelRatio = float32(pr)

	e.logger.Debug("particle field resized", "width", b.W, "height", b.H, "aspect", e.res.camera.Aspect)
	e.event(telemetry.EventResize, fmt.Sprintf("%dx%d", w, h))
}

func (e *Engine) handleVisibility(visible bool) {
	if e.phase == PhaseDetached {
		return
	}
	e.state.Visible = visible
	switch {
	case !visible && e.phase == PhaseRunning:
		e.phase = PhasePaused
		e.logger.Debug("particle field paused")
		e.event(telemetry.EventPause, "")
	case visible && e.phase == PhasePaused:
		e.phase = PhaseRunning
		e.logger.Debug("particle field resumed")
		e.event(telemetry.EventResume, "")
	}
}

func (e *Engine) handleTheme() {
	if e.phase == PhaseDetached || e.fixedColors {
		return
	}
	theme := e.env.Theme.Theme()
	if theme == e.state.Theme {
		return
	}
	e.state.Theme = theme
	e.uniforms.SetColors(e.palette(theme))
	e.logger.Info("particle field theme changed", "theme", string(theme))
	e.event(telemetry.EventTheme, string(theme))
}

// Detach stops the loop and releases every resource. Observers are disconnected
// first so no callback runs against released resources. Calling Detach again is a no-op.
func (e *Engine) Detach() {
	if e.phase == PhaseDetached {
		return
	}
	if e.phase == PhaseUninitialized {
		e.phase = PhaseDetached
		return
	}

	for i := len(e.disconnect) - 1; i >= 0; i-- {
		e.disconnect[i]()
	}
	e.disconnect = nil

	e.env.Loop.CancelFrame(e.frameID)
	e.frameID = 0

	surface := e.res.surface
	e.res.release()
	if surface != nil {
		e.container.RemoveChild(surface)
	}

	e.event(telemetry.EventDetach, "")
	e.phase = PhaseDetached
	e.logger.Info("particle field detached", "frames", e.state.Frame)
}

// Phase returns the lifecycle state.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Interaction returns a copy of the interaction state.
func (e *Engine) Interaction() InteractionState {
	return e.state
}

// Uniforms returns a copy of the current uniform values.
func (e *Engine) Uniforms() shaders.Uniforms {
	return e.uniforms
}

// Camera returns the engine's camera. Nil before attach.
func (e *Engine) Camera() *camera.Camera {
	return e.res.camera
}

// Surface returns the render surface, nil once detached.
func (e *Engine) Surface() renderer.Surface {
	return e.res.surface
}

// Config returns the configuration snapshot taken at attach.
func (e *Engine) Config() config.FieldConfig {
	return e.cfg
}
