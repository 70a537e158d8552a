package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/particlefield/config"
)

func TestParamVectorRoundtrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-12 {
			t.Errorf("%s: %f -> %f", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	pv.ApplyToConfig(cfg, []float64{-1, 10, 0.05})

	if cfg.Render.EaseBase != pv.Specs[0].Min {
		t.Errorf("expected ease_base clamped to %f, got %f", pv.Specs[0].Min, cfg.Render.EaseBase)
	}
	if cfg.Render.EaseGain != pv.Specs[1].Max {
		t.Errorf("expected ease_gain clamped to %f, got %f", pv.Specs[1].Max, cfg.Render.EaseGain)
	}
	if cfg.Render.EaseMaxExtra != 0.05 {
		t.Errorf("expected ease_max_extra 0.05, got %f", cfg.Render.EaseMaxExtra)
	}
}

func TestDefaultEasingSettles(t *testing.T) {
	m := runScript(config.Default(), 42)
	if m.Unsettled != 0 {
		t.Errorf("expected every jump to settle with default easing, %d did not", m.Unsettled)
	}
	if m.SettleFrames <= 0 || m.SettleFrames >= framesPerJump {
		t.Errorf("expected settle frames in (0, %d), got %f", framesPerJump, m.SettleFrames)
	}
	if m.MaxStep <= 0 {
		t.Error("expected the attraction point to move between jumps")
	}
}

func TestFasterEasingScoresBetterWithoutStepLimit(t *testing.T) {
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, []int64{1}, config.Default(), math.Inf(1))

	slow := fe.Evaluate([]float64{0.01, 0.1, 0.01})
	fast := fe.Evaluate([]float64{0.1, 1.5, 0.2})
	if fast >= slow {
		t.Errorf("expected faster easing to settle sooner: fast=%f slow=%f", fast, slow)
	}
}
