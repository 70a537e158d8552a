package app

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/particlefield/host"
)

// Page background colors behind the field, per theme.
var (
	DarkBackground  = colorful.Color{R: 0.043, G: 0.051, B: 0.071}
	LightBackground = colorful.Color{R: 0.98, G: 0.98, B: 0.97}
)

// Background returns the page color for theme.
func Background(theme host.Theme) colorful.Color {
	if theme == host.ThemeLight {
		return LightBackground
	}
	return DarkBackground
}

// HeadlessOptions controls a run without a window.
type HeadlessOptions struct {
	// MaxFrames stops the run after N frames (0 = until ctx is done)
	MaxFrames int

	// FrameRate is the synthetic clock rate (0 = 60)
	FrameRate int

	// Orbit drives a synthetic pointer around the hero center
	Orbit bool

	// SnapshotPath, when set, receives a PNG of the last frame
	SnapshotPath string
}

// snapshotter is implemented by surfaces that can write their frame to disk.
type snapshotter interface {
	SavePNG(path string, bg color.Color) error
}

// RunHeadless drives the session on a synthetic clock until MaxFrames or ctx is done.
func RunHeadless(ctx context.Context, s *Session, opts HeadlessOptions) error {
	rate := opts.FrameRate
	if rate <= 0 {
		rate = 60
	}
	step := time.Second / time.Duration(rate)

	s.logger.Info("starting headless run",
		"max_frames", opts.MaxFrames,
		"frame_rate", rate,
		"orbit", opts.Orbit,
		"mounted", s.Mounted(),
	)

	frame := 0
	for opts.MaxFrames <= 0 || frame < opts.MaxFrames {
		select {
		case <-ctx.Done():
			s.logger.Info("headless run cancelled", "frame", frame)
			return snapshot(s, opts.SnapshotPath)
		default:
		}

		now := time.Duration(frame) * step
		if opts.Orbit {
			x, y := orbit(s.Hero().Bounds(), now)
			s.PointerMove(x, y)
		}
		s.Frame(now)
		frame++
	}

	s.logger.Info("max frames reached", "frame", frame)
	return snapshot(s, opts.SnapshotPath)
}

// orbit returns a pointer circling the rect center once every four seconds.
func orbit(b host.Rect, now time.Duration) (float64, float64) {
	r := 0.25 * math.Min(b.W, b.H)
	a := now.Seconds() * math.Pi / 2
	return b.X + b.W/2 + r*math.Cos(a), b.Y + b.H/2 + r*math.Sin(a)
}

func snapshot(s *Session, path string) error {
	if path == "" {
		return nil
	}
	if s.engine == nil {
		return fmt.Errorf("snapshot: %w", ErrNotMounted)
	}
	surf, ok := s.engine.Surface().(snapshotter)
	if !ok {
		return fmt.Errorf("snapshot: surface %T cannot export images", s.engine.Surface())
	}
	bg := Background(s.engine.Interaction().Theme)
	if err := surf.SavePNG(path, bg); err != nil {
		return err
	}
	s.logger.Info("snapshot written", "path", path)
	return nil
}
