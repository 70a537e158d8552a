package field

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/telemetry"
)

func TestAttachErrors(t *testing.T) {
	detached := host.NewRegion(host.Rect{W: 800, H: 600})
	detached.SetAttached(false)

	badCount := defaultField()
	badCount.Count = -1

	testCases := []struct {
		name      string
		container host.Container
		cfg       config.FieldConfig
		want      error
	}{
		{"nil container", nil, defaultField(), ErrNoContainer},
		{"detached container", detached, defaultField(), ErrContainerDetached},
		{"zero width", host.NewRegion(host.Rect{W: 0, H: 600}), defaultField(), ErrContainerEmpty},
		{"zero size", host.NewRegion(host.Rect{}), defaultField(), ErrContainerEmpty},
		{"invalid config", host.NewRegion(host.Rect{W: 10, H: 10}), badCount, config.ErrNegativeCount},
	}

	for _, tc := range testCases {
		h := newHarness(t)
		_, err := h.binding.Attach(tc.container, tc.cfg)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		h.assertClean()
	}
}

func TestAttachBackendUnavailable(t *testing.T) {
	h := newHarness(t)
	h.backend.Unavailable = true

	_, err := h.binding.Attach(h.region, defaultField())
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
	if !errors.Is(err, renderer.ErrUnavailable) {
		t.Errorf("expected the backend cause to be kept, got %v", err)
	}
	h.assertClean()
}

func TestAttachRollsBackPartialAcquisition(t *testing.T) {
	for _, stage := range []string{"compile", "upload"} {
		h := newHarness(t)
		switch stage {
		case "compile":
			h.backend.FailCompile = true
		case "upload":
			h.backend.FailUpload = true
		}
		if _, err := h.binding.Attach(h.region, defaultField()); err == nil {
			t.Errorf("%s: expected error", stage)
		}
		h.assertClean()
	}
}

func TestAttachSizesSurface(t *testing.T) {
	h := newHarness(t)
	h.win.PixelRatio = 3
	e := h.attach()
	defer e.Detach()

	w, ht := e.Surface().Size()
	if w != 1600 || ht != 1200 {
		t.Errorf("expected pixel ratio capped at 2 (1600x1200), got %dx%d", w, ht)
	}
	if got := e.Uniforms().PixelRatio; got != 2 {
		t.Errorf("expected uPixelRatio 2, got %v", got)
	}
	if got := e.Uniforms().PointSize; math.Abs(float64(got)-6) > 1e-6 {
		t.Errorf("expected uPointSize 0.75*8 = 6, got %v", got)
	}
	if e.Phase() != PhaseRunning {
		t.Errorf("expected running after attach, got %s", e.Phase())
	}
	if kids := h.region.Children(); len(kids) != 1 || kids[0] != e.Surface() {
		t.Errorf("expected the surface appended to the container, got %v", kids)
	}
}

func TestAttachThenImmediateDetach(t *testing.T) {
	h := newHarness(t)
	e := h.attach()
	e.Detach()

	h.run(3)
	if e.Phase() != PhaseDetached {
		t.Errorf("expected detached, got %s", e.Phase())
	}
	if e.Interaction().Frame != 0 {
		t.Errorf("expected no frames rendered, got %d", e.Interaction().Frame)
	}
	h.assertClean()

	// Idempotent
	e.Detach()
	h.assertClean()
}

func TestRepeatedAttachDetachDoesNotAccumulate(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 10; i++ {
		region := host.NewRegion(host.Rect{W: float64(100 + i*10), H: 100})
		e, err := h.binding.Attach(region, defaultField())
		if err != nil {
			t.Fatal(err)
		}
		h.run(2)
		e.Detach()
		if n := len(region.Children()); n != 0 {
			t.Errorf("cycle %d: container kept %d children", i, n)
		}
	}
	h.assertClean()
}

func TestOneDrawPerRunningFrame(t *testing.T) {
	h := newHarness(t)
	e := h.attach()
	defer e.Detach()

	h.run(5)
	if got := h.surface(e).Draws(); got != 5 {
		t.Errorf("expected 5 draws, got %d", got)
	}
	if e.Interaction().Frame != 5 {
		t.Errorf("expected frame counter 5, got %d", e.Interaction().Frame)
	}
	if h.loop.Pending() != 1 {
		t.Errorf("expected exactly one pending frame, got %d", h.loop.Pending())
	}
	if e.Uniforms().Time <= 0 {
		t.Error("expected time uniform to advance")
	}
}

func TestPausedWhenScrolledAway(t *testing.T) {
	h := newHarness(t)
	e := h.attach()
	defer e.Detach()
	h.run(2)

	// Only 5% of the region remains in view
	h.region.SetBounds(host.Rect{Y: 570, W: 800, H: 600})
	h.run(10)

	if e.Phase() != PhasePaused {
		t.Fatalf("expected paused, got %s", e.Phase())
	}
	if got := h.surface(e).Draws(); got != 2 {
		t.Errorf("paused frames must not draw, got %d draws", got)
	}
	if e.Interaction().Frame != 2 {
		t.Errorf("paused frames must not count, got %d", e.Interaction().Frame)
	}
	if h.loop.Pending() != 1 {
		t.Errorf("paused engine should keep rescheduling, got %d pending", h.loop.Pending())
	}

	h.region.SetBounds(host.Rect{W: 800, H: 600})
	h.run(1)
	if e.Phase() != PhaseRunning {
		t.Errorf("expected running after scrolling back, got %s", e.Phase())
	}
	if got := h.surface(e).Draws(); got != 3 {
		t.Errorf("expected drawing to resume, got %d draws", got)
	}
}

func TestPointerAtCenterConvergesToOrigin(t *testing.T) {
	h := newHarness(t)
	e := h.attach()
	defer e.Detach()

	h.win.Pointer.Emit(host.PointerEvent{X: 400, Y: 300})
	h.run(1000)

	st := e.Interaction()
	if !st.Intersecting {
		t.Fatal("expected the center ray to hit the interaction plane")
	}
	if d := r3.Norm(st.Attraction); d > 1e-3 {
		t.Errorf("expected attraction within 1e-3 of the origin, got %v (distance %v)", st.Attraction, d)
	}
	if d := r3.Norm(e.Uniforms().MouseVec()); d > 1e-3 {
		t.Errorf("expected uMouse near the origin, got %v", e.Uniforms().MouseVec())
	}
}

func TestRaycastEverySecondFrame(t *testing.T) {
	h := newHarness(t)
	e := h.attach()
	defer e.Detach()

	h.win.Pointer.Emit(host.PointerEvent{X: 400, Y: 300})
	h.run(1)
	if e.Interaction().Intersecting {
		t.Error("frame 1 must not raycast")
	}
	if e.Uniforms().MouseVec() != NoAttraction {
		t.Errorf("expected sentinel before the first hit, got %v", e.Uniforms().MouseVec())
	}

	h.run(1)
	if !e.Interaction().Intersecting {
		t.Error("frame 2 should raycast and hit")
	}
}

func TestRaycastCadenceBelowOne(t *testing.T) {
	h := newHarness(t)
	cfg := config.Default()
	cfg.Render.RaycastEvery = 0
	h.useConfig(cfg)
	e := h.attach()

	h.win.Pointer.Emit(host.PointerEvent{X: 400, Y: 300})
	h.run(1)
	if !e.Interaction().Intersecting {
		t.Error("expected a raycast on every frame when the cadence is below 1")
	}
	e.Detach()
	h.assertClean()
}

func TestAttachEmptyField(t *testing.T) {
	h := newHarness(t)
	cfg := defaultField()
	cfg.Count = 0
	e, err := h.binding.Attach(h.region, cfg)
	if err != nil {
		t.Fatalf("attach with no particles: %v", err)
	}

	h.win.Pointer.Emit(host.PointerEvent{X: 400, Y: 300})
	h.run(30)
	h.resize(0, 0)
	h.run(10)
	h.resize(800, 600)
	before := e.Interaction().Frame
	h.run(30)

	if e.Phase() != PhaseRunning {
		t.Errorf("expected running, got %s", e.Phase())
	}
	if got := e.Interaction().Frame; got <= before {
		t.Errorf("expected frames to advance after the resize, stuck at %d", got)
	}
	if s := h.surface(e); s.Sprites() != 0 {
		t.Errorf("expected no sprites drawn, got %d", s.Sprites())
	}
	if a := e.Camera().Aspect; math.Abs(a-800.0/600.0) > 1e-12 {
		t.Errorf("expected aspect 4/3, got %v", a)
	}

	h.doc.SetTheme(host.ThemeLight)
	e.Detach()
	e.Detach()
	h.run(2)
	h.assertClean()
}

func TestPointerLeaveRestoresSentinel(t *testing.T) {
	h := newHarness(t)
	e := h.attach()
	defer e.Detach()

	h.win.Pointer.Emit(host.PointerEvent{X: 400, Y: 300})
	h.run(50)
	h.win.Pointer.Emit(host.PointerEvent{Leave: true})
	h.run(1)

	st := e.Interaction()
	if st.Intersecting || st.HasPointer {
		t.Errorf("expected no pointer after leave, got %+v", st)
	}
	if e.Uniforms().MouseVec() != NoAttraction {
		t.Errorf("expected uMouse at the sentinel, got %v", e.Uniforms().MouseVec())
	}
}

func TestPointerFarOutsideMissesPlane(t *testing.T) {
	h := newHarness(t)
	e := h.attach()
	defer e.Detach()

	h.win.Pointer.Emit(host.PointerEvent{X: 1e6, Y: 300})
	h.run(4)

	if e.Interaction().Intersecting {
		t.Error("expected a ray far outside the container to miss the bounded plane")
	}
	if e.Uniforms().MouseVec() != NoAttraction {
		t.Errorf("expected sentinel on miss, got %v", e.Uniforms().MouseVec())
	}
}

func TestResizeThroughZero(t *testing.T) {
	h := newHarness(t)
	e := h.attach()
	defer e.Detach()
	h.run(1)

	h.resize(0, 0)
	h.run(3)
	if w, ht := e.Surface().Size(); w != 0 || ht != 0 {
		t.Errorf("expected a 0x0 surface, got %dx%d", w, ht)
	}
	if a := e.Camera().Aspect; math.Abs(a-800.0/600.0) > 1e-12 || math.IsNaN(a) {
		t.Errorf("expected aspect kept at 4/3, got %v", a)
	}

	h.resize(400, 300)
	h.run(2)
	if w, ht := e.Surface().Size(); w != 400 || ht != 300 {
		t.Errorf("expected 400x300, got %dx%d", w, ht)
	}
	if a := e.Camera().Aspect; math.Abs(a-4.0/3.0) > 1e-12 {
		t.Errorf("expected aspect 4/3, got %v", a)
	}
	if res := e.Uniforms().Resolution; res != [2]float32{400, 300} {
		t.Errorf("expected uResolution 400x300, got %v", res)
	}
	if e.Phase() != PhaseRunning {
		t.Errorf("expected running at 400x300, got %s", e.Phase())
	}
}

func TestThemeSwapKeepsParticles(t *testing.T) {
	h := newHarness(t)
	cfg := config.Default()
	e := h.attach()
	defer e.Detach()
	h.run(2)

	geometry := e.res.geometry
	program := e.res.program
	if got := e.Uniforms().Colors(); !sameColors(got, cfg.Derived.DarkColors) {
		t.Fatalf("expected dark palette, got %v", got)
	}

	h.doc.SetTheme(host.ThemeLight)
	h.run(1)

	if got := e.Uniforms().Colors(); !sameColors(got, cfg.Derived.LightColors) {
		t.Errorf("expected light palette after theme change, got %v", got)
	}
	if e.res.geometry != geometry || e.res.program != program {
		t.Error("theme change must not rebuild geometry or program")
	}
	if live := h.backend.Live(); live.Geometries != 1 {
		t.Errorf("expected one geometry, got %+v", live)
	}
	if e.Interaction().Theme != host.ThemeLight {
		t.Errorf("expected state theme light, got %s", e.Interaction().Theme)
	}
}

func TestConfiguredThemeIgnoresPage(t *testing.T) {
	h := newHarness(t)
	cfg := defaultField()
	cfg.Theme = "light"
	e, err := h.binding.Attach(h.region, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Detach()

	if h.doc.ObserverCount() != 0 {
		t.Error("a forced theme should not observe the page")
	}
	h.doc.SetTheme(host.ThemeDark)
	h.run(1)
	if got := e.Uniforms().Colors(); !sameColors(got, config.Default().Derived.LightColors) {
		t.Errorf("expected forced light palette, got %v", got)
	}
}

func TestConfiguredColors(t *testing.T) {
	h := newHarness(t)
	cfg := defaultField()
	cfg.Colors = []string{"#ff0000", "#00ff00", "#0000ff"}
	e, err := h.binding.Attach(h.region, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Detach()

	want, _ := config.ParsePalette(cfg.Colors)
	h.doc.SetTheme(host.ThemeLight)
	h.run(1)
	if got := e.Uniforms().Colors(); !sameColors(got, want) {
		t.Errorf("expected configured colors, got %v", got)
	}
}

func TestNoOpAfterDetach(t *testing.T) {
	h := newHarness(t)
	e := h.attach()
	h.win.Pointer.Emit(host.PointerEvent{X: 400, Y: 300})
	h.run(4)
	surface := h.surface(e)
	draws := surface.Draws()
	before := e.Interaction()

	// A theme mutation queued before detach must not be delivered
	h.doc.SetTheme(host.ThemeLight)
	e.Detach()

	h.win.Pointer.Emit(host.PointerEvent{X: 10, Y: 10})
	h.resize(300, 200)
	h.run(5)

	if surface.Draws() != draws {
		t.Errorf("expected no draws after detach, got %d more", surface.Draws()-draws)
	}
	after := e.Interaction()
	if after.Frame != before.Frame || after.Pointer != before.Pointer || after.Theme != before.Theme {
		t.Errorf("state changed after detach: %+v -> %+v", before, after)
	}
	if e.Surface() != nil {
		t.Error("expected no surface after detach")
	}
	h.assertClean()
}

func TestEaseNeverOvershoots(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	point := func(scale float64) r3.Vec {
		return r3.Vec{X: (rng.Float64()*2 - 1) * scale, Y: (rng.Float64()*2 - 1) * scale, Z: (rng.Float64()*2 - 1) * scale}
	}
	for i := 0; i < 2000; i++ {
		scale := math.Pow(10, float64(rng.Intn(7)-3))
		from, to := point(scale), point(scale)
		got := Ease(from, to, 0.03, 0.8, 0.09)

		before := r3.Norm(r3.Sub(to, from))
		after := r3.Norm(r3.Sub(to, got))
		if after > before {
			t.Fatalf("ease moved away: %v -> %v toward %v", from, got, to)
		}
		// The eased point lies on the segment
		if path := r3.Norm(r3.Sub(got, from)) + after; math.Abs(path-before) > 1e-9*math.Max(1, before) {
			t.Fatalf("ease left the segment: %v -> %v toward %v", from, got, to)
		}
	}

	// Distance-adaptive: farther targets take a larger fraction
	near := Ease(r3.Vec{}, r3.Vec{X: 0.01}, 0.03, 0.8, 0.09).X / 0.01
	far := Ease(r3.Vec{}, r3.Vec{X: 1}, 0.03, 0.8, 0.09).X
	if near >= far {
		t.Errorf("expected a larger step fraction far away: near %v, far %v", near, far)
	}
	if math.Abs(far-0.12) > 1e-12 {
		t.Errorf("expected the fraction capped at 0.12, got %v", far)
	}
}

func TestMountDegradesOnFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.Unavailable = true

	detach := h.binding.Mount(h.region, defaultField())
	detach()
	detach()
	h.assertClean()

	h.backend.Unavailable = false
	detach = h.binding.Mount(h.region, defaultField())
	if len(h.region.Children()) != 1 {
		t.Error("expected a mounted surface")
	}
	detach()
	h.assertClean()
}

func TestPerfAndOutputWiring(t *testing.T) {
	h := newHarness(t)
	out, err := telemetry.NewOutputManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	perf := telemetry.NewPerfCollector(16)
	h.binding = NewBinding(Env{
		Backend: h.backend,
		Loop:    h.loop,
		Window:  h.win,
		Perf:    perf,
		Output:  out,
		Logger:  h.binding.Logger(),
	})
	e := h.attach()
	h.run(20)
	e.Detach()

	if perf.Samples() != 16 {
		t.Errorf("expected a full perf window, got %d samples", perf.Samples())
	}
	if _, ok := perf.Stats().PhaseAvg[telemetry.PhaseDraw]; !ok {
		t.Error("expected the draw phase to be timed")
	}
}
