package gpu

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlefield/particles"
)

// maxQuadsPerMesh keeps every vertex index of a mesh within uint16.
const maxQuadsPerMesh = 65536/4 - 1

// quadCorners in the order the index pattern below expects.
var quadCorners = [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// Geometry is the uploaded particle set, split into meshes.
type Geometry struct {
	meshes   []rl.Mesh
	count    int
	released bool
}

// Len returns the number of particles.
func (g *Geometry) Len() int { return g.count }

// Release unloads every mesh. Safe to call more than once.
func (g *Geometry) Release() {
	if g.released {
		return
	}
	for i := range g.meshes {
		rl.UnloadMesh(&g.meshes[i])
	}
	g.meshes = nil
	g.released = true
}

// quadBuffers is the CPU-side vertex data of one mesh.
type quadBuffers struct {
	vertices   []float32 // base position, repeated per corner
	texcoords  []float32 // corner
	texcoords2 []float32 // scale, color index
	normals    []float32 // swim velocity
	indices    []uint16
}

// fillQuads expands particles [start, end) into four vertices each.
func fillQuads(set *particles.Set, start, end int) quadBuffers {
	n := end - start
	b := quadBuffers{
		vertices:   make([]float32, 0, n*4*3),
		texcoords:  make([]float32, 0, n*4*2),
		texcoords2: make([]float32, 0, n*4*2),
		normals:    make([]float32, 0, n*4*3),
		indices:    make([]uint16, 0, n*6),
	}
	for i := start; i < end; i++ {
		pos := set.Positions[i*3 : i*3+3]
		vel := set.Velocities[i*3 : i*3+3]
		for _, c := range quadCorners {
			b.vertices = append(b.vertices, pos...)
			b.texcoords = append(b.texcoords, c[0], c[1])
			b.texcoords2 = append(b.texcoords2, set.Scales[i], set.ColorIndices[i])
			b.normals = append(b.normals, vel...)
		}
		base := uint16((i - start) * 4)
		b.indices = append(b.indices, base, base+1, base+2, base, base+2, base+3)
	}
	return b
}

func buildQuads(set *particles.Set, start, end int) rl.Mesh {
	b := fillQuads(set, start, end)
	n := end - start
	mesh := rl.Mesh{
		VertexCount:   int32(n * 4),
		TriangleCount: int32(n * 2),
	}
	if n == 0 {
		return mesh
	}
	mesh.Vertices = &b.vertices[0]
	mesh.Texcoords = &b.texcoords[0]
	mesh.Texcoords2 = &b.texcoords2[0]
	mesh.Normals = &b.normals[0]
	mesh.Indices = &b.indices[0]
	return mesh
}
