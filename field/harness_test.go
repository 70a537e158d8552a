package field

import (
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/renderer/soft"
)

// harness is a headless page: one window, one hero region, a software backend.
type harness struct {
	t       *testing.T
	loop    *host.EventLoop
	win     *host.Window
	doc     *host.DocumentRoot
	region  *host.Region
	backend *soft.Backend
	binding *Binding
	now     time.Duration
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	loop := host.NewEventLoop()
	h := &harness{
		t:       t,
		loop:    loop,
		win:     host.NewWindow(800, 600, 1),
		doc:     host.NewDocumentRoot(loop),
		region:  host.NewRegion(host.Rect{W: 800, H: 600}),
		backend: soft.New(),
	}
	h.useConfig(nil)
	return h
}

// useConfig rebinds the harness to cfg. Nil means the defaults.
func (h *harness) useConfig(cfg *config.Config) {
	h.binding = NewBinding(Env{
		Config:  cfg,
		Backend: h.backend,
		Loop:    h.loop,
		Window:  h.win,
		Theme:   h.doc,
		Logger:  slog.New(slog.DiscardHandler),
		Rand:    rand.New(rand.NewSource(1)),
	})
}

func defaultField() config.FieldConfig {
	return config.Default().Field
}

func (h *harness) attach() *Engine {
	h.t.Helper()
	e, err := h.binding.Attach(h.region, defaultField())
	if err != nil {
		h.t.Fatalf("attach: %v", err)
	}
	return e
}

// run advances n frames at 60fps.
func (h *harness) run(n int) {
	for i := 0; i < n; i++ {
		h.now += time.Second / 60
		h.loop.RunFrame(h.now)
	}
}

// resize moves the hero region and notifies the window like a browser layout change.
func (h *harness) resize(w, ht float64) {
	h.region.SetBounds(host.Rect{W: w, H: ht})
	h.win.SetViewport(host.Rect{W: w, H: ht})
}

// assertClean checks that nothing from an attachment outlived it.
func (h *harness) assertClean() {
	h.t.Helper()
	if live := h.backend.Live(); live.Total() != 0 {
		h.t.Errorf("leaked render resources: %+v", live)
	}
	if n := len(h.region.Children()); n != 0 {
		h.t.Errorf("expected empty container, got %d children", n)
	}
	if n := h.loop.Pending(); n != 0 {
		h.t.Errorf("expected no pending frames, got %d", n)
	}
	if n := h.loop.Observers(); n != 0 {
		h.t.Errorf("expected no visibility observers, got %d", n)
	}
	if n := h.win.Listeners(); n != 0 {
		h.t.Errorf("expected no window listeners, got %d", n)
	}
	if n := h.doc.ObserverCount(); n != 0 {
		h.t.Errorf("expected no theme observers, got %d", n)
	}
}

func (h *harness) surface(e *Engine) *soft.Surface {
	h.t.Helper()
	s, ok := e.Surface().(*soft.Surface)
	if !ok {
		h.t.Fatalf("expected a soft surface, got %T", e.Surface())
	}
	return s
}

func sameColors(a, b [3]colorful.Color) bool {
	for i := range a {
		if !a[i].AlmostEqualRgb(b[i]) {
			return false
		}
	}
	return true
}
