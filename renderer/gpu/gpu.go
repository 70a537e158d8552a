// Package gpu renders the particle field with raylib. Every call must happen on
// the thread that created the raylib window, after InitWindow.
package gpu

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlefield/camera"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/particles"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/shaders"
)

// Render texture calls, replaced in tests that run without a GL context.
var (
	windowReady  = rl.IsWindowReady
	targetValid  = rl.IsRenderTextureValid
	unloadTarget = rl.UnloadRenderTexture
	loadTarget   = func(w, h int32) rl.RenderTexture2D {
		t := rl.LoadRenderTexture(w, h)
		rl.SetTextureFilter(t.Texture, rl.FilterBilinear)
		return t
	}
)

// Backend allocates raylib render textures.
type Backend struct{}

// New creates a raylib backend.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string { return "raylib" }

// NewSurface allocates a render texture. Fails with renderer.ErrUnavailable when
// no window (and therefore no GL context) exists.
func (b *Backend) NewSurface(width, height, pixelRatio float64) (renderer.Surface, error) {
	if !windowReady() {
		return nil, fmt.Errorf("gpu: no window: %w", renderer.ErrUnavailable)
	}
	s := &Surface{}
	s.Resize(width, height, pixelRatio)
	if s.hasTarget && !targetValid(s.target) {
		w, h := s.w, s.h
		s.Release()
		return nil, fmt.Errorf("gpu: render texture %dx%d: %w", w, h, renderer.ErrUnavailable)
	}
	return s, nil
}

// Surface is a render texture the field draws into and the host composites.
type Surface struct {
	target    rl.RenderTexture2D
	hasTarget bool
	w, h      int
	released  bool
}

// Resize reallocates the render texture. A zero size leaves no texture.
func (s *Surface) Resize(width, height, pixelRatio float64) {
	if s.released {
		return
	}
	w, h := renderer.DeviceSize(width, height, pixelRatio)
	if w == s.w && h == s.h && (s.hasTarget || w == 0 || h == 0) {
		return
	}
	s.dropTarget()
	s.w, s.h = w, h
	if w == 0 || h == 0 {
		return
	}
	s.target = loadTarget(int32(w), int32(h))
	s.hasTarget = true
}

func (s *Surface) dropTarget() {
	if s.hasTarget {
		unloadTarget(s.target)
		s.hasTarget = false
	}
}

// Size returns the render texture size in device pixels.
func (s *Surface) Size() (int, int) {
	return s.w, s.h
}

// Compile builds the program from memory. raylib falls back to its default
// shader when compilation fails, which is reported as an error here.
func (s *Surface) Compile(src shaders.Source) (renderer.Program, error) {
	shader := rl.LoadShaderFromMemory(src.Vertex, src.Fragment)
	if shader.ID == 0 || shader.ID == rl.GetShaderIdDefault() || !rl.IsShaderValid(shader) {
		return nil, errors.New("gpu: particle shader failed to compile")
	}
	material := rl.LoadMaterialDefault()
	material.Shader = shader
	return &Program{material: material, locs: lookupLocations(shader)}, nil
}

// Upload builds billboard quads and uploads them as static meshes.
func (s *Surface) Upload(set *particles.Set) (renderer.Geometry, error) {
	g := &Geometry{count: set.Len()}
	for start := 0; start < set.Len(); start += maxQuadsPerMesh {
		end := min(start+maxQuadsPerMesh, set.Len())
		mesh := buildQuads(set, start, end)
		rl.UploadMesh(&mesh, false)
		if mesh.VaoID == 0 {
			g.Release()
			return nil, fmt.Errorf("gpu: uploading particles %d..%d failed", start, end)
		}
		g.meshes = append(g.meshes, mesh)
	}
	return g, nil
}

// Draw renders the particles into the texture: additive blending, no depth writes.
func (s *Surface) Draw(cam *camera.Camera, prog renderer.Program, geo renderer.Geometry, u *shaders.Uniforms) {
	if s.released || !s.hasTarget {
		return
	}
	p, ok := prog.(*Program)
	if !ok || p.released {
		return
	}
	g, ok := geo.(*Geometry)
	if !ok || g.released {
		return
	}

	p.apply(u)

	rl.BeginTextureMode(s.target)
	rl.ClearBackground(rl.Blank)
	rl.SetClipPlanes(cam.Near, cam.Far)
	rl.BeginMode3D(toCamera3D(cam))
	rl.BeginBlendMode(rl.BlendAdditive)
	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()

	for _, mesh := range g.meshes {
		rl.DrawMesh(mesh, p.material, rl.MatrixIdentity())
	}

	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
	rl.EndBlendMode()
	rl.EndMode3D()
	rl.EndTextureMode()
}

// Composite draws the texture into dst on the current framebuffer.
func (s *Surface) Composite(dst host.Rect) {
	if s.released || !s.hasTarget {
		return
	}
	// Render textures are stored bottom-up
	src := rl.Rectangle{Width: float32(s.w), Height: -float32(s.h)}
	rl.BeginBlendMode(rl.BlendAlphaPremultiply)
	rl.DrawTexturePro(s.target.Texture, src,
		rl.Rectangle{X: float32(dst.X), Y: float32(dst.Y), Width: float32(dst.W), Height: float32(dst.H)},
		rl.Vector2{}, 0, rl.White)
	rl.EndBlendMode()
}

// ExportPNG writes the current texture contents to path.
func (s *Surface) ExportPNG(path string) error {
	if !s.hasTarget {
		return errors.New("gpu: nothing to export from an empty surface")
	}
	img := rl.LoadImageFromTexture(s.target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)
	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("gpu: exporting %s failed", path)
	}
	return nil
}

// Release frees the render texture. Safe to call more than once.
func (s *Surface) Release() {
	if s.released {
		return
	}
	s.dropTarget()
	s.released = true
}

func toCamera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   rl.Vector3{X: float32(c.Position.X), Y: float32(c.Position.Y), Z: float32(c.Position.Z)},
		Target:     rl.Vector3{X: float32(c.Target.X), Y: float32(c.Target.Y), Z: float32(c.Target.Z)},
		Up:         rl.Vector3{X: float32(c.Up.X), Y: float32(c.Up.Y), Z: float32(c.Up.Z)},
		Fovy:       float32(c.FOV),
		Projection: rl.CameraPerspective,
	}
}
