// Package host models the page environment the particle field lives in: container
// regions, a single-threaded frame loop, window events, visibility and theme observers.
package host

import "math"

// Rect is an axis-aligned rectangle in CSS pixels.
type Rect struct {
	X, Y, W, H float64
}

// Area returns the rectangle's area, zero when either side is non-positive.
func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Area() == 0
}

// Intersect returns the overlap of two rectangles (zero-sized when disjoint).
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.X+r.W, o.X+o.W)
	y1 := math.Min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// SurfaceNode is a drawable child of a container.
type SurfaceNode interface {
	// Composite draws the node's current image into dst.
	Composite(dst Rect)
}

// Container is a layout region that can hold surfaces.
type Container interface {
	Bounds() Rect
	// Attached reports whether the region is part of the live document.
	Attached() bool
	AppendChild(n SurfaceNode)
	RemoveChild(n SurfaceNode)
	Children() []SurfaceNode
}

// Region is the default Container.
type Region struct {
	bounds   Rect
	attached bool
	children []SurfaceNode
}

// NewRegion creates an attached region with the given bounds.
func NewRegion(bounds Rect) *Region {
	return &Region{bounds: bounds, attached: true}
}

func (r *Region) Bounds() Rect   { return r.bounds }
func (r *Region) Attached() bool { return r.attached }

// SetBounds moves or resizes the region. Listeners are not notified; hosts emit a
// window resize after layout changes.
func (r *Region) SetBounds(b Rect) {
	r.bounds = b
}

// SetAttached marks the region as inserted into or removed from the document.
func (r *Region) SetAttached(v bool) {
	r.attached = v
}

// AppendChild adds n as the last child. Appending a node already present moves it to the end.
func (r *Region) AppendChild(n SurfaceNode) {
	r.RemoveChild(n)
	r.children = append(r.children, n)
}

// RemoveChild removes n if present.
func (r *Region) RemoveChild(n SurfaceNode) {
	for i, c := range r.children {
		if c == n {
			r.children = append(r.children[:i], r.children[i+1:]...)
			return
		}
	}
}

// Children returns a copy of the child list.
func (r *Region) Children() []SurfaceNode {
	out := make([]SurfaceNode, len(r.children))
	copy(out, r.children)
	return out
}

// Composite draws every child into the region's bounds, in order.
func (r *Region) Composite() {
	for _, c := range r.children {
		c.Composite(r.bounds)
	}
}
