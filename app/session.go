// Package app hosts a particle field in a page-like environment: one window, a
// document root carrying the theme, and a hero region the field decorates.
// It is shared by the desktop window and the headless runner.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/telemetry"
)

// ErrNotMounted is returned by operations that need a running field.
var ErrNotMounted = errors.New("app: no field mounted")

// Options configures a session.
type Options struct {
	Config  *config.Config
	Backend renderer.Backend
	Logger  *slog.Logger
	Perf    *telemetry.PerfCollector
	Output  *telemetry.OutputManager
	Rand    *rand.Rand

	// PixelRatio is the window's device pixel ratio (0 = 1)
	PixelRatio float64

	// ThemeFile, when set, is watched and mirrored into the document theme
	ThemeFile string
}

// Session owns the host stack and at most one mounted field.
// All methods must be called from the goroutine driving Frame.
type Session struct {
	cfg     *config.Config
	logger  *slog.Logger
	loop    *host.EventLoop
	window  *host.Window
	doc     *host.DocumentRoot
	hero    *host.Region
	binding *field.Binding
	engine  *field.Engine
	watcher *host.ThemeFileWatcher

	fieldCfg config.FieldConfig
	scroll   float64
}

// NewSession builds the host stack sized from the screen config. No field is mounted yet.
func NewSession(opts Options) *Session {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cfg := opts.Config
	loop := host.NewEventLoop()
	window := host.NewWindow(float64(cfg.Screen.Width), float64(cfg.Screen.Height), opts.PixelRatio)
	doc := host.NewDocumentRoot(loop)

	s := &Session{
		cfg:      cfg,
		logger:   opts.Logger,
		loop:     loop,
		window:   window,
		doc:      doc,
		fieldCfg: cfg.Field,
	}
	s.hero = host.NewRegion(s.heroBounds())

	s.binding = field.NewBinding(field.Env{
		Backend: opts.Backend,
		Loop:    loop,
		Window:  window,
		Theme:   doc,
		Config:  cfg,
		Perf:    opts.Perf,
		Output:  opts.Output,
		Logger:  opts.Logger,
		Rand:    opts.Rand,
	})

	if opts.ThemeFile != "" {
		s.watcher = host.NewThemeFileWatcher(opts.ThemeFile, loop, doc, opts.Logger)
	}
	return s
}

// Start begins watching the theme file, if any, and mounts the field.
// A field that fails to mount is logged and leaves the hero without a background.
func (s *Session) Start(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Start(ctx); err != nil {
			return fmt.Errorf("starting theme watcher: %w", err)
		}
	}
	if err := s.Mount(); err != nil {
		s.logger.Warn("particle field unavailable", "error", err)
	}
	return nil
}

// Mount attaches a field with the current field config. Mounting twice is a no-op.
func (s *Session) Mount() error {
	if s.engine != nil {
		return nil
	}
	e, err := s.binding.Attach(s.hero, s.fieldCfg)
	if err != nil {
		return err
	}
	s.engine = e
	return nil
}

// Unmount detaches the field, if one is mounted.
func (s *Session) Unmount() {
	if s.engine == nil {
		return
	}
	s.engine.Detach()
	s.engine = nil
}

// Remount replaces the field config and reattaches. A rejected config leaves
// the current field running.
func (s *Session) Remount(cfg config.FieldConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.Unmount()
	s.fieldCfg = cfg
	return s.Mount()
}

// Mounted reports whether a field is attached.
func (s *Session) Mounted() bool {
	return s.engine != nil
}

// heroBounds lays out the hero region from config, scroll offset and viewport.
// Zero width or height fills the window.
func (s *Session) heroBounds() host.Rect {
	vp := s.window.Viewport
	h := s.cfg.Hero
	b := host.Rect{X: float64(h.X), Y: float64(h.Y), W: float64(h.Width), H: float64(h.Height)}
	if h.Width <= 0 {
		b.W = vp.W - b.X
	}
	if h.Height <= 0 {
		b.H = vp.H - b.Y
	}
	if b.W < 0 {
		b.W = 0
	}
	if b.H < 0 {
		b.H = 0
	}
	b.Y -= s.scroll
	return b
}

// Resize updates the window viewport and re-lays the hero.
func (s *Session) Resize(w, h float64) {
	s.window.Viewport.W = w
	s.window.Viewport.H = h
	s.hero.SetBounds(s.heroBounds())
	s.window.SetViewport(host.Rect{W: w, H: h})
}

// Scroll moves the page by dy pixels. The hero can scroll fully out of view
// but not below its resting position.
func (s *Session) Scroll(dy float64) {
	s.scroll += dy
	if s.scroll < 0 {
		s.scroll = 0
	}
	s.hero.SetBounds(s.heroBounds())
}

// ScrollOffset returns the current page scroll.
func (s *Session) ScrollOffset() float64 {
	return s.scroll
}

// PointerMove dispatches a pointer position in window coordinates.
func (s *Session) PointerMove(x, y float64) {
	s.window.Pointer.Emit(host.PointerEvent{X: x, Y: y})
}

// PointerLeave dispatches the pointer leaving the window.
func (s *Session) PointerLeave() {
	s.window.Pointer.Emit(host.PointerEvent{Leave: true})
}

// ToggleTheme flips the document theme class.
func (s *Session) ToggleTheme() {
	s.doc.SetTheme(s.doc.Theme().Other())
}

// Frame runs one event-loop turn at now.
func (s *Session) Frame(now time.Duration) {
	s.loop.RunFrame(now)
}

// Composite draws the hero's surfaces into the current render target.
func (s *Session) Composite() {
	s.hero.Composite()
}

// Engine returns the mounted engine, or nil.
func (s *Session) Engine() *field.Engine { return s.engine }

// Document returns the document root.
func (s *Session) Document() *host.DocumentRoot { return s.doc }

// Window returns the host window.
func (s *Session) Window() *host.Window { return s.window }

// Hero returns the hero region.
func (s *Session) Hero() *host.Region { return s.hero }

// Loop returns the event loop.
func (s *Session) Loop() *host.EventLoop { return s.loop }

// FieldConfig returns the config the next mount uses.
func (s *Session) FieldConfig() config.FieldConfig { return s.fieldCfg }

// Close detaches the field and stops the theme watcher.
func (s *Session) Close() {
	s.Unmount()
	if s.watcher != nil {
		s.watcher.Stop()
	}
}
