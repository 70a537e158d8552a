// Package shaders holds the particle field's GLSL program and a CPU reference of
// the same math for headless rendering and tests.
package shaders

import (
	_ "embed"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

//go:embed particles.vs
var vertexSource string

//go:embed particles.fs
var fragmentSource string

// Uniform names as declared in particles.vs / particles.fs.
const (
	UniformTime           = "uTime"
	UniformMouse          = "uMouse"
	UniformRingRadius     = "uRingRadius"
	UniformRingWidth      = "uRingWidth"
	UniformDisplacement   = "uDisplacement"
	UniformPixelRatio     = "uPixelRatio"
	UniformPointSize      = "uPointSize"
	UniformHeartbeatScale = "uHeartbeatScale"
	UniformSwimSpeed      = "uSwimSpeed"
	UniformResolution     = "uResolution"
	UniformTanHalfFOV     = "uTanHalfFov"
	UniformColor1         = "uColor1"
	UniformColor2         = "uColor2"
	UniformColor3         = "uColor3"
)

// Constants shared with particles.vs.
const (
	SwimAmplitude   = 0.02
	SwimPhase       = 4.0
	BeatRate        = 1.2
	BeatDepth       = 0.06
	SizeAttenuation = 3.0
)

// OffscreenMouse is the attraction-point coordinate meaning "no pointer".
// Far enough that no particle is ever inside the ring.
const OffscreenMouse = -999.0

// Source is a vertex/fragment shader pair.
type Source struct {
	Vertex   string
	Fragment string
}

// Particles returns the particle field program.
func Particles() Source {
	return Source{Vertex: vertexSource, Fragment: fragmentSource}
}

// Uniforms mirrors the program's uniform block. Values are float32 so they upload as-is.
type Uniforms struct {
	Time           float32
	Mouse          [3]float32
	RingRadius     float32
	RingWidth      float32
	Displacement   float32
	PixelRatio     float32
	PointSize      float32
	HeartbeatScale float32
	SwimSpeed      float32
	Resolution     [2]float32
	TanHalfFOV     float32
	Color1         [3]float32
	Color2         [3]float32
	Color3         [3]float32
}

// SetMouse stores an attraction point.
func (u *Uniforms) SetMouse(p r3.Vec) {
	u.Mouse = [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
}

// MouseVec returns the attraction point.
func (u Uniforms) MouseVec() r3.Vec {
	return r3.Vec{X: float64(u.Mouse[0]), Y: float64(u.Mouse[1]), Z: float64(u.Mouse[2])}
}

// SetColors replaces the three blend colors.
func (u *Uniforms) SetColors(c [3]colorful.Color) {
	u.Color1 = toVec3(c[0])
	u.Color2 = toVec3(c[1])
	u.Color3 = toVec3(c[2])
}

// Colors returns the three blend colors.
func (u Uniforms) Colors() [3]colorful.Color {
	return [3]colorful.Color{fromVec3(u.Color1), fromVec3(u.Color2), fromVec3(u.Color3)}
}

func toVec3(c colorful.Color) [3]float32 {
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}
}

func fromVec3(v [3]float32) colorful.Color {
	return colorful.Color{R: float64(v[0]), G: float64(v[1]), B: float64(v[2])}
}

// Heartbeat returns the pulse intensity at time t (seconds), in [0, ~1].
func Heartbeat(t float64) float64 {
	phase := t*BeatRate - math.Floor(t*BeatRate)
	lub := math.Exp(-math.Pow((phase-0.10)*18, 2))
	dub := 0.6 * math.Exp(-math.Pow((phase-0.30)*18, 2))
	return lub + dub
}

// Displace applies swim, heartbeat and pointer repulsion to a base position.
func Displace(base, vel r3.Vec, u *Uniforms) r3.Vec {
	t := float64(u.Time) * float64(u.SwimSpeed) * 2 * math.Pi
	pos := base
	pos.X += math.Sin(t*vel.X+base.Y*SwimPhase) * SwimAmplitude
	pos.Y += math.Cos(t*vel.Y+base.Z*SwimPhase) * SwimAmplitude
	pos.Z += math.Sin(t*vel.Z+base.X*SwimPhase) * SwimAmplitude

	pos = r3.Scale(1+Heartbeat(float64(u.Time))*BeatDepth*float64(u.HeartbeatScale), pos)

	return r3.Add(pos, Repulsion(pos, u))
}

// Repulsion returns the push applied to pos by the attraction point. Its length
// never exceeds u.Displacement.
func Repulsion(pos r3.Vec, u *Uniforms) r3.Vec {
	away := r3.Sub(pos, u.MouseVec())
	dist := r3.Norm(away)
	inner := float64(u.RingRadius)
	width := float64(u.RingWidth)
	reach := inner + width
	if dist >= reach || dist <= 0.0001 {
		return r3.Vec{}
	}
	falloff := 1.0
	if width > 0 {
		falloff = 1 - smoothstep(inner, reach, dist)
	}
	return r3.Scale(falloff*float64(u.Displacement)/dist, away)
}

// SpritePixels returns the sprite diameter in device pixels at the given view depth.
func SpritePixels(scale, depth float64, u *Uniforms) float64 {
	depth = math.Max(depth, 0.0001)
	return float64(u.PointSize) * scale * float64(u.PixelRatio) * (SizeAttenuation / depth)
}

// SpriteAlpha returns the soft circular falloff at normalized distance d from the
// sprite center, zero outside the unit circle.
func SpriteAlpha(d float64) float64 {
	if d > 1 {
		return 0
	}
	a := 1 - smoothstep(0, 1, d)
	return a * a
}

// BlendColor picks the particle color: index < 0.5 blends c1 to c2, otherwise c2 to c3.
func BlendColor(index float64, c [3]colorful.Color) colorful.Color {
	if index < 0.5 {
		return c[0].BlendRgb(c[1], index*2)
	}
	return c[1].BlendRgb(c[2], (index-0.5)*2)
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
