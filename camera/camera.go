// Package camera provides the perspective camera and pointer raycasting for the globe.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a perspective camera looking from Position toward Target.
type Camera struct {
	Position r3.Vec
	Target   r3.Vec
	Up       r3.Vec

	// FOV is the vertical field of view in degrees
	FOV float64

	// Aspect is viewport width / height
	Aspect float64

	// Clip planes
	Near, Far float64

	// Viewport dimensions (CSS pixels)
	ViewportW, ViewportH float64
}

// New creates a camera at (0, 0, distance) looking at the origin.
func New(fov, near, far, distance float64) *Camera {
	return &Camera{
		Position: r3.Vec{Z: distance},
		Up:       r3.Vec{Y: 1},
		FOV:      fov,
		Aspect:   1,
		Near:     near,
		Far:      far,
	}
}

// Resize updates the viewport and aspect ratio.
// A zero-area viewport keeps the previous aspect so the projection stays finite.
func (c *Camera) Resize(w, h float64) {
	c.ViewportW = w
	c.ViewportH = h
	if w > 0 && h > 0 {
		c.Aspect = w / h
	}
}

// TanHalfFOV returns tan(FOV/2).
func (c *Camera) TanHalfFOV() float64 {
	return math.Tan(c.FOV * math.Pi / 360)
}

// Basis returns the camera's right, up and forward unit vectors in world space.
func (c *Camera) Basis() (right, up, forward r3.Vec) {
	forward = r3.Unit(r3.Sub(c.Target, c.Position))
	right = r3.Unit(r3.Cross(forward, c.Up))
	up = r3.Cross(right, forward)
	return right, up, forward
}

// WorldToView converts a world point to view space (camera looks down -Z).
func (c *Camera) WorldToView(p r3.Vec) r3.Vec {
	right, up, forward := c.Basis()
	d := r3.Sub(p, c.Position)
	return r3.Vec{X: r3.Dot(d, right), Y: r3.Dot(d, up), Z: -r3.Dot(d, forward)}
}

// ViewToNDC projects a view-space point to normalized device coordinates.
// Returns false for points outside the near/far range.
func (c *Camera) ViewToNDC(v r3.Vec) (r2.Vec, bool) {
	depth := -v.Z
	if depth < c.Near || depth > c.Far {
		return r2.Vec{}, false
	}
	t := c.TanHalfFOV()
	return r2.Vec{
		X: v.X / (depth * t * c.Aspect),
		Y: v.Y / (depth * t),
	}, true
}

// ProjectionMatrix returns the column-major OpenGL perspective matrix.
func (c *Camera) ProjectionMatrix() [16]float64 {
	f := 1 / c.TanHalfFOV()
	nf := 1 / (c.Near - c.Far)
	return [16]float64{
		f / c.Aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (c.Far + c.Near) * nf, -1,
		0, 0, 2 * c.Far * c.Near * nf, 0,
	}
}

// Ray is a half-line from Origin along the unit vector Dir.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// RayFromNDC returns the ray from the camera through the given NDC point.
func (c *Camera) RayFromNDC(ndc r2.Vec) Ray {
	right, up, forward := c.Basis()
	t := c.TanHalfFOV()
	dir := r3.Add(forward, r3.Add(
		r3.Scale(ndc.X*t*c.Aspect, right),
		r3.Scale(ndc.Y*t, up),
	))
	return Ray{Origin: c.Position, Dir: r3.Unit(dir)}
}

// Plane is a bounded rectangle spanned by the unit vectors U and V around Center.
type Plane struct {
	Center       r3.Vec
	U, V         r3.Vec
	HalfW, HalfH float64
}

// NewPlaneXY returns a w x h plane in the XY plane through the origin, facing +Z.
func NewPlaneXY(w, h float64) Plane {
	return Plane{
		U:     r3.Vec{X: 1},
		V:     r3.Vec{Y: 1},
		HalfW: w / 2,
		HalfH: h / 2,
	}
}

// Normal returns the plane's unit normal.
func (p Plane) Normal() r3.Vec {
	return r3.Unit(r3.Cross(p.U, p.V))
}

// IntersectPlane returns the first point where the ray meets the plane, and
// whether it does so within the plane's bounds and in front of the origin.
// Both faces are hit.
func (r Ray) IntersectPlane(p Plane) (r3.Vec, bool) {
	n := p.Normal()
	denom := r3.Dot(n, r.Dir)
	if math.Abs(denom) < 1e-12 {
		return r3.Vec{}, false
	}
	t := r3.Dot(r3.Sub(p.Center, r.Origin), n) / denom
	if t < 0 {
		return r3.Vec{}, false
	}
	hit := r.At(t)
	local := r3.Sub(hit, p.Center)
	if math.Abs(r3.Dot(local, p.U)) > p.HalfW || math.Abs(r3.Dot(local, p.V)) > p.HalfH {
		return r3.Vec{}, false
	}
	return hit, true
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// PointerToNDC maps a window-space pointer to the NDC of a viewport rectangle.
// Points outside the rectangle map outside [-1, 1], bounded by limit so a pointer
// far away cannot produce a degenerate ray. Returns false for an empty viewport.
func PointerToNDC(px, py, left, top, width, height, limit float64) (r2.Vec, bool) {
	if width <= 0 || height <= 0 {
		return r2.Vec{}, false
	}
	x := (px-left)/width*2 - 1
	y := -(py-top)/height*2 + 1
	return r2.Vec{X: clamp(x, -limit, limit), Y: clamp(y, -limit, limit)}, true
}
