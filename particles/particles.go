// Package particles generates the static per-particle attributes of the globe.
package particles

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Attribute ranges.
const (
	MinScale    = 0.4
	ScaleSpan   = 0.6
	MinVelocity = 0.3
	VelSpan     = 0.6
)

// Set holds the per-particle vertex attributes. Immutable once generated.
type Set struct {
	Positions    []float32 // xyz per particle
	Scales       []float32 // [0.4, 1.0)
	ColorIndices []float32 // [0, 1), selects the color blend
	Velocities   []float32 // xyz jitter speed per particle, each in [0.3, 0.9)
}

// Len returns the number of particles.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Scales)
}

// Position returns the base position of particle i.
func (s *Set) Position(i int) r3.Vec {
	return r3.Vec{
		X: float64(s.Positions[i*3]),
		Y: float64(s.Positions[i*3+1]),
		Z: float64(s.Positions[i*3+2]),
	}
}

// Velocity returns the jitter velocity of particle i.
func (s *Set) Velocity(i int) r3.Vec {
	return r3.Vec{
		X: float64(s.Velocities[i*3]),
		Y: float64(s.Velocities[i*3+1]),
		Z: float64(s.Velocities[i*3+2]),
	}
}

// Generate distributes count particles uniformly within the volume of a sphere of
// radius globeSize. A nil rng uses the unseeded package source.
func Generate(count int, globeSize float64, rng *rand.Rand) *Set {
	if count < 0 {
		count = 0
	}
	uniform := rand.Float64
	if rng != nil {
		uniform = rng.Float64
	}

	s := &Set{
		Positions:    make([]float32, count*3),
		Scales:       make([]float32, count),
		ColorIndices: make([]float32, count),
		Velocities:   make([]float32, count*3),
	}

	for i := 0; i < count; i++ {
		theta := uniform() * 2 * math.Pi
		phi := math.Acos(2*uniform() - 1)
		// cbrt keeps density uniform per unit volume instead of piling up at the center
		r := globeSize * math.Cbrt(uniform())

		sinPhi := math.Sin(phi)
		s.Positions[i*3] = float32(r * sinPhi * math.Cos(theta))
		s.Positions[i*3+1] = float32(r * sinPhi * math.Sin(theta))
		s.Positions[i*3+2] = float32(r * math.Cos(phi))

		s.Scales[i] = float32(MinScale + uniform()*ScaleSpan)
		s.ColorIndices[i] = float32(uniform())

		s.Velocities[i*3] = float32(MinVelocity + uniform()*VelSpan)
		s.Velocities[i*3+1] = float32(MinVelocity + uniform()*VelSpan)
		s.Velocities[i*3+2] = float32(MinVelocity + uniform()*VelSpan)
	}

	return s
}

// RadialHistogram bins particle distances from the origin into equal-width shells
// between 0 and globeSize.
func RadialHistogram(s *Set, globeSize float64, bins int) []float64 {
	counts := make([]float64, bins)
	if bins == 0 {
		return counts
	}
	for i := 0; i < s.Len(); i++ {
		r := r3.Norm(s.Position(i)) / globeSize
		b := int(r * float64(bins))
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}
	return counts
}

// ExpectedRadialCounts returns the counts RadialHistogram should see for n particles
// uniform in volume: shell k holds a fraction ((k+1)^3 - k^3) / bins^3.
func ExpectedRadialCounts(n, bins int) []float64 {
	exp := make([]float64, bins)
	total := math.Pow(float64(bins), 3)
	for k := 0; k < bins; k++ {
		lo := math.Pow(float64(k), 3)
		hi := math.Pow(float64(k+1), 3)
		exp[k] = float64(n) * (hi - lo) / total
	}
	return exp
}
