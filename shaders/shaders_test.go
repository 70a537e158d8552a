package shaders

import (
	"math"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

func testUniforms() *Uniforms {
	u := &Uniforms{
		RingRadius:     0.15,
		RingWidth:      0.15,
		Displacement:   0.15,
		PixelRatio:     1,
		PointSize:      6,
		HeartbeatScale: 1,
		SwimSpeed:      0.3,
	}
	u.SetMouse(r3.Vec{X: OffscreenMouse, Y: OffscreenMouse})
	return u
}

func TestSourceDeclaresUniforms(t *testing.T) {
	src := Particles()
	all := src.Vertex + src.Fragment
	for _, name := range []string{
		UniformTime, UniformMouse, UniformRingRadius, UniformRingWidth, UniformDisplacement,
		UniformPixelRatio, UniformPointSize, UniformHeartbeatScale, UniformSwimSpeed,
		UniformResolution, UniformTanHalfFOV, UniformColor1, UniformColor2, UniformColor3,
	} {
		if !strings.Contains(all, "uniform ") || !strings.Contains(all, " "+name+";") {
			t.Errorf("shader source does not declare %s", name)
		}
	}
	if !strings.HasPrefix(src.Vertex, "#version") || !strings.HasPrefix(src.Fragment, "#version") {
		t.Error("shader sources must start with a #version directive")
	}
}

func TestRepulsionCappedByDisplacement(t *testing.T) {
	u := testUniforms()
	u.SetMouse(r3.Vec{})

	for _, d := range []float64{0.001, 0.05, 0.1, 0.15, 0.2, 0.29, 0.31, 0.5} {
		pos := r3.Vec{X: d}
		push := Repulsion(pos, u)
		if n := r3.Norm(push); n > float64(u.Displacement)+1e-9 {
			t.Errorf("distance %v: push %v exceeds displacement %v", d, n, u.Displacement)
		}
		if d < 0.3 && push.X <= 0 {
			t.Errorf("distance %v: expected push away from the pointer, got %v", d, push)
		}
		if d > 0.3 && r3.Norm(push) != 0 {
			t.Errorf("distance %v: expected no push outside the ring, got %v", d, push)
		}
	}

	// Full strength inside ringRadius
	if n := r3.Norm(Repulsion(r3.Vec{Y: 0.1}, u)); math.Abs(n-0.15) > 1e-6 {
		t.Errorf("expected full displacement inside ring radius, got %v", n)
	}
}

func TestRepulsionZeroWidthRing(t *testing.T) {
	u := testUniforms()
	u.RingWidth = 0
	u.SetMouse(r3.Vec{})

	if n := r3.Norm(Repulsion(r3.Vec{X: 0.1}, u)); math.Abs(n-0.15) > 1e-6 {
		t.Errorf("expected hard-edged ring to push full displacement, got %v", n)
	}
	if n := r3.Norm(Repulsion(r3.Vec{X: 0.2}, u)); n != 0 {
		t.Errorf("expected no push past a zero-width ring, got %v", n)
	}
}

func TestOffscreenMouseNeverDisplaces(t *testing.T) {
	u := testUniforms()
	u.HeartbeatScale = 0
	u.SwimSpeed = 0

	base := r3.Vec{X: 0.3, Y: -0.2, Z: 0.1}
	got := Displace(base, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, u)

	// Swim at t=0 still offsets by the phase term, but there is no repulsion
	if r3.Norm(Repulsion(got, u)) != 0 {
		t.Error("sentinel mouse must not repel particles")
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	u := testUniforms()
	u.HeartbeatScale = 0
	u.SwimSpeed = 0
	base := r3.Vec{X: 0.2, Y: 0.1, Z: -0.1}
	vel := r3.Vec{X: 0.5, Y: 0.6, Z: 0.7}

	u.Time = 0.1
	a := Displace(base, vel, u)
	u.Time = 0.35
	b := Displace(base, vel, u)
	if r3.Norm(r3.Sub(a, b)) > 1e-12 {
		t.Errorf("with heartbeat and swim disabled positions must be static: %v vs %v", a, b)
	}
}

func TestHeartbeatPulses(t *testing.T) {
	peak := Heartbeat(0.10 / BeatRate)
	rest := Heartbeat(0.70 / BeatRate)
	if peak < 0.9 {
		t.Errorf("expected strong pulse at lub, got %v", peak)
	}
	if rest > 0.01 {
		t.Errorf("expected near-zero pulse between beats, got %v", rest)
	}
}

func TestParticlesSwimIndependently(t *testing.T) {
	u := testUniforms()
	u.HeartbeatScale = 0
	u.Time = 1.7

	a := Displace(r3.Vec{}, r3.Vec{X: 0.3, Y: 0.3, Z: 0.3}, u)
	b := Displace(r3.Vec{}, r3.Vec{X: 0.9, Y: 0.9, Z: 0.9}, u)
	if r3.Norm(r3.Sub(a, b)) < 1e-6 {
		t.Error("particles with different velocities should not move in lockstep")
	}
}

func TestBlendColorSegments(t *testing.T) {
	c := [3]colorful.Color{
		{R: 1, G: 0, B: 0},
		{R: 0, G: 1, B: 0},
		{R: 0, G: 0, B: 1},
	}

	if got := BlendColor(0, c); !got.AlmostEqualRgb(c[0]) {
		t.Errorf("index 0 should be color1, got %v", got)
	}
	if got := BlendColor(0.5, c); !got.AlmostEqualRgb(c[1]) {
		t.Errorf("index 0.5 should be color2, got %v", got)
	}
	if got := BlendColor(0.999999, c); !got.AlmostEqualRgb(c[2]) {
		t.Errorf("index ~1 should be color3, got %v", got)
	}
	// color1 and color3 never mix: no index yields red and blue together
	for i := 0; i < 100; i++ {
		got := BlendColor(float64(i)/100, c)
		if got.R > 0.001 && got.B > 0.001 {
			t.Fatalf("index %v mixes color1 and color3: %v", float64(i)/100, got)
		}
	}
}

func TestSpriteSizeStableAcrossPixelRatio(t *testing.T) {
	u := testUniforms()
	u.PixelRatio = 1
	css1 := SpritePixels(0.8, 1.5, u) / 1
	u.PixelRatio = 2
	css2 := SpritePixels(0.8, 1.5, u) / 2
	if math.Abs(css1-css2) > 1e-9 {
		t.Errorf("sprite size in CSS pixels should not depend on pixel ratio: %v vs %v", css1, css2)
	}
}

func TestSpriteAlpha(t *testing.T) {
	if SpriteAlpha(0) != 1 {
		t.Errorf("expected opaque center, got %v", SpriteAlpha(0))
	}
	if SpriteAlpha(1.01) != 0 {
		t.Error("expected transparent outside the unit circle")
	}
	if SpriteAlpha(0.25) <= SpriteAlpha(0.75) {
		t.Error("alpha should fall off from the center")
	}
}

func TestUniformColorsRoundtrip(t *testing.T) {
	var u Uniforms
	in := [3]colorful.Color{{R: 0.1, G: 0.2, B: 0.3}, {R: 0.4, G: 0.5, B: 0.6}, {R: 0.7, G: 0.8, B: 0.9}}
	u.SetColors(in)
	out := u.Colors()
	for i := range in {
		if !in[i].AlmostEqualRgb(out[i]) {
			t.Errorf("color %d: %v != %v", i, in[i], out[i])
		}
	}
}

func TestUniformAccessorsOnCopies(t *testing.T) {
	u := testUniforms()
	u.SetMouse(r3.Vec{X: 0.2, Y: -0.1})
	snapshot := func() Uniforms { return *u }

	if got := snapshot().MouseVec(); math.Abs(got.X-0.2) > 1e-6 || math.Abs(got.Y+0.1) > 1e-6 {
		t.Errorf("expected mouse (0.2, -0.1), got %v", got)
	}
	if got := snapshot().Colors(); got != u.Colors() {
		t.Errorf("expected copied colors to match, got %v", got)
	}
}
