// Package renderer defines the contract between the particle field engine and a
// drawing backend.
package renderer

import (
	"errors"
	"math"

	"github.com/pthm-cable/particlefield/camera"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/particles"
	"github.com/pthm-cable/particlefield/shaders"
)

// ErrUnavailable is returned when a backend cannot provide a drawing context.
var ErrUnavailable = errors.New("rendering backend unavailable")

// Backend creates drawing surfaces.
type Backend interface {
	Name() string
	// NewSurface allocates a surface of width x height CSS pixels at the given
	// device pixel ratio.
	NewSurface(width, height, pixelRatio float64) (Surface, error)
}

// Surface is a render target owned by one engine. It is a host.SurfaceNode so it
// can be appended to a container.
type Surface interface {
	host.SurfaceNode

	// Resize changes the CSS size and pixel ratio. A zero size is allowed.
	Resize(width, height, pixelRatio float64)
	// Size returns the surface size in device pixels.
	Size() (w, h int)

	Compile(src shaders.Source) (Program, error)
	Upload(set *particles.Set) (Geometry, error)

	// Draw clears the surface and renders geo with prog as seen from cam.
	Draw(cam *camera.Camera, prog Program, geo Geometry, u *shaders.Uniforms)

	Release()
}

// Program is a compiled shader program.
type Program interface {
	Release()
}

// Geometry is particle data uploaded to a surface.
type Geometry interface {
	Len() int
	Release()
}

// DeviceSize converts a CSS size to whole device pixels. Negative sizes become zero.
func DeviceSize(width, height, pixelRatio float64) (int, int) {
	w := int(math.Floor(math.Max(width, 0) * pixelRatio))
	h := int(math.Floor(math.Max(height, 0) * pixelRatio))
	return max(w, 0), max(h, 0)
}
