package main

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlefield/app"
	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/renderer/soft"
)

// Scripted pointer run shape.
const (
	hoverJumps    = 8
	framesPerJump = 240
	settleEpsilon = 0.005 // world units
	heroSize      = 400
)

// Metrics summarizes how the attraction point followed the pointer.
type Metrics struct {
	SettleFrames float64 // mean frames from a jump until within settleEpsilon
	MaxStep      float64 // largest per-frame move once on the plane
	Unsettled    int     // jumps that never settled
}

// FitnessEvaluator runs headless pointer scripts and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config
	stepLimit  float64

	mu          sync.Mutex
	lastMetrics Metrics
}

// NewFitnessEvaluator creates a new evaluator. Per-frame moves above stepLimit
// read as a jump rather than a glide and are penalized.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, baseCfg *config.Config, stepLimit float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		baseConfig: baseCfg,
		stepLimit:  stepLimit,
	}
}

// LastMetrics returns the averaged metrics of the most recent evaluation.
func (fe *FitnessEvaluator) LastMetrics() Metrics {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMetrics
}

// Evaluate computes fitness for a parameter vector (lower = better):
// mean settle frames plus a penalty for per-frame moves above the step limit.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Seeds run in parallel; each session owns its own event loop
	results := make([]Metrics, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = runScript(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var avg Metrics
	for _, m := range results {
		avg.SettleFrames += m.SettleFrames
		avg.MaxStep = math.Max(avg.MaxStep, m.MaxStep)
		avg.Unsettled += m.Unsettled
	}
	avg.SettleFrames /= float64(len(results))

	fe.mu.Lock()
	fe.lastMetrics = avg
	fe.mu.Unlock()

	return fe.computeFitness(avg)
}

func (fe *FitnessEvaluator) computeFitness(m Metrics) float64 {
	fitness := m.SettleFrames
	if over := m.MaxStep - fe.stepLimit; over > 0 {
		fitness += over * 2000
	}
	return fitness + float64(m.Unsettled)*framesPerJump
}

// copyConfig returns a private copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Field.Colors = append([]string(nil), fe.baseConfig.Field.Colors...)
	return &cfg
}

// runScript mounts an empty field and moves the pointer between random points
// of the hero, recording how the attraction point follows.
func runScript(base *config.Config, seed int64) Metrics {
	cfg := *base
	cfg.Screen.Width, cfg.Screen.Height = heroSize, heroSize
	cfg.Hero = config.HeroConfig{}
	cfg.Field.Count = 0
	cfg.Telemetry.LogEvery = 0

	s := app.NewSession(app.Options{
		Config:  &cfg,
		Backend: soft.New(),
		Logger:  slog.New(slog.DiscardHandler),
	})
	defer s.Close()
	if err := s.Mount(); err != nil {
		return Metrics{Unsettled: hoverJumps}
	}

	rng := rand.New(rand.NewSource(seed))
	var m Metrics
	frame := 0
	for j := 0; j < hoverJumps; j++ {
		px := (0.1 + 0.8*rng.Float64()) * heroSize
		py := (0.1 + 0.8*rng.Float64()) * heroSize

		settled := -1
		prev, havePrev := r3.Vec{}, false
		for k := 0; k < framesPerJump; k++ {
			s.PointerMove(px, py)
			s.Frame(time.Duration(frame) * time.Second / 60)
			frame++

			st := s.Engine().Interaction()
			if !st.Intersecting || st.Attraction == field.NoAttraction {
				havePrev = false
				continue
			}
			// The first jump flies in from the sentinel, which is not a glide on the plane
			if havePrev && j > 0 {
				m.MaxStep = math.Max(m.MaxStep, r3.Norm(r3.Sub(st.Attraction, prev)))
			}
			prev, havePrev = st.Attraction, true

			// Hit only follows the new pointer after the next raycast
			if settled < 0 && k >= cfg.Render.RaycastEvery && r3.Norm(r3.Sub(st.Attraction, st.Hit)) < settleEpsilon {
				settled = k
			}
		}
		if settled < 0 {
			m.Unsettled++
			settled = framesPerJump
		}
		m.SettleFrames += float64(settled)
	}
	m.SettleFrames /= hoverJumps
	return m
}
