package gpu

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/particlefield/particles"
)

func TestFillQuadsLayout(t *testing.T) {
	set := particles.Generate(3, 0.45, rand.New(rand.NewSource(5)))
	b := fillQuads(set, 0, 3)

	if len(b.vertices) != 3*4*3 || len(b.normals) != 3*4*3 {
		t.Fatalf("expected 36 position/normal floats, got %d / %d", len(b.vertices), len(b.normals))
	}
	if len(b.texcoords) != 3*4*2 || len(b.texcoords2) != 3*4*2 {
		t.Fatalf("expected 24 texcoord floats, got %d / %d", len(b.texcoords), len(b.texcoords2))
	}
	if len(b.indices) != 3*6 {
		t.Fatalf("expected 18 indices, got %d", len(b.indices))
	}

	// Every corner of particle 1 shares its attributes
	for c := 0; c < 4; c++ {
		v := 4 + c
		for k := 0; k < 3; k++ {
			if b.vertices[v*3+k] != set.Positions[3+k] {
				t.Errorf("corner %d position mismatch", c)
			}
			if b.normals[v*3+k] != set.Velocities[3+k] {
				t.Errorf("corner %d velocity mismatch", c)
			}
		}
		if b.texcoords2[v*2] != set.Scales[1] || b.texcoords2[v*2+1] != set.ColorIndices[1] {
			t.Errorf("corner %d scale/color mismatch", c)
		}
	}

	// Second quad indices are offset by four
	want := []uint16{4, 5, 6, 4, 6, 7}
	for i, w := range want {
		if b.indices[6+i] != w {
			t.Errorf("index %d: expected %d, got %d", 6+i, w, b.indices[6+i])
		}
	}
}

func TestFillQuadsChunkIndicesFitUint16(t *testing.T) {
	set := particles.Generate(maxQuadsPerMesh+10, 1, rand.New(rand.NewSource(1)))
	b := fillQuads(set, 0, maxQuadsPerMesh)

	var maxIndex uint16
	for _, i := range b.indices {
		maxIndex = max(maxIndex, i)
	}
	if int(maxIndex) != maxQuadsPerMesh*4-1 {
		t.Errorf("expected highest index %d, got %d", maxQuadsPerMesh*4-1, maxIndex)
	}

	// The remainder restarts at zero
	rest := fillQuads(set, maxQuadsPerMesh, set.Len())
	if rest.indices[0] != 0 || len(rest.indices) != 10*6 {
		t.Errorf("expected remainder chunk of 10 quads starting at 0, got %d indices from %d", len(rest.indices), rest.indices[0])
	}
}
