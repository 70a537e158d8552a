package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/shaders"
)

// Phase is the engine lifecycle state.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseAttached
	PhaseRunning
	PhasePaused
	PhaseDetached
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseAttached:
		return "attached"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseDetached:
		return "detached"
	}
	return "unknown"
}

// Sentinel values meaning "no pointer".
var (
	NoPointer    = r2.Vec{X: shaders.OffscreenMouse, Y: shaders.OffscreenMouse}
	NoAttraction = r3.Vec{X: shaders.OffscreenMouse, Y: shaders.OffscreenMouse}
)

// InteractionState is the per-attachment mutable state. Only the engine writes it.
type InteractionState struct {
	// Pointer in container NDC, NoPointer when absent
	Pointer    r2.Vec
	HasPointer bool

	// Attraction is the eased repulsion center in world space
	Attraction r3.Vec

	// Hit is the last raycast hit on the interaction plane
	Hit          r3.Vec
	Intersecting bool

	Visible bool
	Theme   host.Theme

	// Frame counts running frames only
	Frame int64
}

func newInteractionState(theme host.Theme) InteractionState {
	return InteractionState{
		Pointer:    NoPointer,
		Attraction: NoAttraction,
		Visible:    true,
		Theme:      theme,
	}
}

// Ease moves from toward to by a fraction that grows with distance:
// base + min(dist*gain, maxExtra), capped at 1 so it never overshoots.
func Ease(from, to r3.Vec, base, gain, maxExtra float64) r3.Vec {
	d := r3.Sub(to, from)
	dist := r3.Norm(d)
	f := math.Min(base+math.Min(dist*gain, maxExtra), 1)
	return r3.Add(from, r3.Scale(f, d))
}
