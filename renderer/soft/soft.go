// Package soft is a CPU rendering backend. It rasterizes the particle sprites with
// the same math as the GPU program, for headless snapshots and tests.
package soft

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/particlefield/camera"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/particles"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/shaders"
)

// ErrInjected is returned by operations a test asked to fail.
var ErrInjected = errors.New("soft: injected failure")

// Counts tracks live resources.
type Counts struct {
	Surfaces   int
	Programs   int
	Geometries int
}

// Total returns the number of live resources of any kind.
func (c Counts) Total() int {
	return c.Surfaces + c.Programs + c.Geometries
}

// Backend allocates CPU surfaces.
type Backend struct {
	// Failure injection
	Unavailable bool
	FailCompile bool
	FailUpload  bool

	live Counts
}

// New creates a software backend.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string { return "soft" }

// Live returns the resources allocated and not yet released.
func (b *Backend) Live() Counts {
	return b.live
}

// NewSurface allocates an image of the device-pixel size.
func (b *Backend) NewSurface(width, height, pixelRatio float64) (renderer.Surface, error) {
	if b.Unavailable {
		return nil, fmt.Errorf("soft: %w", renderer.ErrUnavailable)
	}
	s := &Surface{backend: b}
	s.Resize(width, height, pixelRatio)
	b.live.Surfaces++
	return s, nil
}

// Surface is a CPU render target.
type Surface struct {
	backend *Backend
	img     *image.RGBA

	width, height, pixelRatio float64
	released                  bool

	draws      int
	sprites    int
	composites int
	lastDst    host.Rect
}

// Resize reallocates the image. Contents are discarded.
func (s *Surface) Resize(width, height, pixelRatio float64) {
	s.width, s.height, s.pixelRatio = width, height, pixelRatio
	w, h := renderer.DeviceSize(width, height, pixelRatio)
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Size returns the image size in device pixels.
func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Compile checks that both stages are present.
func (s *Surface) Compile(src shaders.Source) (renderer.Program, error) {
	if s.released {
		return nil, errors.New("soft: compile on released surface")
	}
	if s.backend.FailCompile {
		return nil, fmt.Errorf("compile: %w", ErrInjected)
	}
	if !strings.HasPrefix(src.Vertex, "#version") || !strings.HasPrefix(src.Fragment, "#version") {
		return nil, errors.New("soft: shader source missing #version")
	}
	s.backend.live.Programs++
	return &program{backend: s.backend}, nil
}

// Upload keeps a reference to the set. Sets are immutable, so no copy is made.
func (s *Surface) Upload(set *particles.Set) (renderer.Geometry, error) {
	if s.released {
		return nil, errors.New("soft: upload on released surface")
	}
	if s.backend.FailUpload {
		return nil, fmt.Errorf("upload: %w", ErrInjected)
	}
	s.backend.live.Geometries++
	return &geometry{backend: s.backend, set: set}, nil
}

// Draw clears the image and splats every particle additively.
func (s *Surface) Draw(cam *camera.Camera, prog renderer.Program, geo renderer.Geometry, u *shaders.Uniforms) {
	if s.released {
		return
	}
	p, ok := prog.(*program)
	if !ok || p.released {
		return
	}
	g, ok := geo.(*geometry)
	if !ok || g.released {
		return
	}

	s.draws++
	s.sprites = 0
	clear(s.img.Pix)

	w, h := s.Size()
	if w == 0 || h == 0 {
		return
	}

	colors := u.Colors()
	for i := 0; i < g.set.Len(); i++ {
		pos := shaders.Displace(g.set.Position(i), g.set.Velocity(i), u)
		view := cam.WorldToView(pos)
		ndc, ok := cam.ViewToNDC(view)
		if !ok {
			continue
		}
		cx := (ndc.X + 1) / 2 * float64(w)
		cy := (1 - ndc.Y) / 2 * float64(h)
		radius := shaders.SpritePixels(float64(g.set.Scales[i]), -view.Z, u) / 2
		if radius <= 0 {
			continue
		}
		if s.splat(cx, cy, radius, shaders.BlendColor(float64(g.set.ColorIndices[i]), colors)) {
			s.sprites++
		}
	}
}

// splat adds one soft circular sprite. Returns whether any pixel was touched.
func (s *Surface) splat(cx, cy, radius float64, c colorful.Color) bool {
	b := s.img.Bounds()
	x0 := max(int(math.Floor(cx-radius)), b.Min.X)
	x1 := min(int(math.Ceil(cx+radius)), b.Max.X)
	y0 := max(int(math.Floor(cy-radius)), b.Min.Y)
	y1 := min(int(math.Ceil(cy+radius)), b.Max.Y)
	if x0 >= x1 || y0 >= y1 {
		return false
	}

	touched := false
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			a := shaders.SpriteAlpha(math.Sqrt(dx*dx+dy*dy) / radius)
			if a <= 0 {
				continue
			}
			touched = true
			i := s.img.PixOffset(x, y)
			px := s.img.Pix[i : i+4 : i+4]
			px[0] = addChannel(px[0], c.R*a)
			px[1] = addChannel(px[1], c.G*a)
			px[2] = addChannel(px[2], c.B*a)
			px[3] = addChannel(px[3], a)
		}
	}
	return touched
}

func addChannel(dst uint8, v float64) uint8 {
	sum := float64(dst) + v*255
	if sum >= 255 {
		return 255
	}
	return uint8(sum + 0.5)
}

// Composite records where the surface was placed. The image itself is read with Image.
func (s *Surface) Composite(dst host.Rect) {
	s.composites++
	s.lastDst = dst
}

// Release frees the image. Safe to call more than once.
func (s *Surface) Release() {
	if s.released {
		return
	}
	s.released = true
	s.img = image.NewRGBA(image.Rectangle{})
	s.backend.live.Surfaces--
}

// Released reports whether Release has been called.
func (s *Surface) Released() bool { return s.released }

// Draws returns the number of draw calls issued.
func (s *Surface) Draws() int { return s.draws }

// Sprites returns how many particles touched the image on the last draw.
func (s *Surface) Sprites() int { return s.sprites }

// Composites returns the number of times the surface was composited.
func (s *Surface) Composites() int { return s.composites }

// Image returns the current frame (premultiplied RGBA).
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Snapshot flattens the frame over an opaque background.
func (s *Surface) Snapshot(bg color.Color) *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), s.img, s.img.Bounds().Min, draw.Over)
	return out
}

// WritePNG encodes the snapshot over bg as PNG.
func (s *Surface) WritePNG(w io.Writer, bg color.Color) error {
	return png.Encode(w, s.Snapshot(bg))
}

// SavePNG writes the snapshot over bg to path.
func (s *Surface) SavePNG(path string, bg color.Color) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := s.WritePNG(f, bg); err != nil {
		f.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return f.Close()
}

type program struct {
	backend  *Backend
	released bool
}

func (p *program) Release() {
	if p.released {
		return
	}
	p.released = true
	p.backend.live.Programs--
}

type geometry struct {
	backend  *Backend
	set      *particles.Set
	released bool
}

func (g *geometry) Len() int { return g.set.Len() }

func (g *geometry) Release() {
	if g.released {
		return
	}
	g.released = true
	g.backend.live.Geometries--
}
