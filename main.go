package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/particlefield/app"
	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/desktop"
	"github.com/pthm-cable/particlefield/renderer/soft"
	"github.com/pthm-cable/particlefield/telemetry"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one session and returns the process exit code. Deferred cleanup
// always runs before main exits.
func run(args []string) int {
	fs := flag.NewFlagSet("particlefield", flag.ContinueOnError)

	// CLI flags
	configPath := fs.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := fs.Bool("headless", false, "Run without a window, rendering on the CPU")
	maxFrames := fs.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	outputDir := fs.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshot := fs.String("snapshot", "", "Headless: write the last frame to this PNG")
	themeFile := fs.String("theme-file", "", "File holding \"dark\" or \"light\", watched for changes")
	seed := fs.Int64("seed", 0, "Particle RNG seed (0 = time-based)")
	logPerf := fs.Bool("log-perf", false, "Log frame timing every telemetry.log_every frames")
	orbit := fs.Bool("orbit", true, "Headless: move a synthetic pointer around the hero")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if !*logPerf {
		cfg.Telemetry.LogEvery = 0
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		logger.Error("failed to create output directory", "error", err)
		return 1
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		logger.Error("failed to write config snapshot", "error", err)
	}

	opts := app.Options{
		Config:    cfg,
		Logger:    logger,
		Perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		Output:    output,
		Rand:      rand.New(rand.NewSource(rngSeed)),
		ThemeFile: *themeFile,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *headless {
		// Headless mode - software rendering, no raylib window needed
		if size := cfg.Telemetry.SnapshotSize; size > 0 && cfg.Screen.Height > 0 {
			cfg.Screen.Width = cfg.Screen.Width * size / cfg.Screen.Height
			cfg.Screen.Height = size
		}
		opts.Backend = soft.New()

		s := app.NewSession(opts)
		defer s.Close()

		slog.Info("starting headless run", "seed", rngSeed, "width", cfg.Screen.Width, "height", cfg.Screen.Height)
		if err := s.Start(ctx); err != nil {
			logger.Error("failed to start session", "error", err)
			return 1
		}
		err := app.RunHeadless(ctx, s, app.HeadlessOptions{
			MaxFrames:    *maxFrames,
			Orbit:        *orbit,
			SnapshotPath: *snapshot,
		})
		if err != nil {
			logger.Error("headless run failed", "error", err)
			return 1
		}
		return 0
	}

	// Graphical mode
	slog.Info("starting window", "seed", rngSeed)
	if err := desktop.Run(ctx, opts, desktop.Options{MaxFrames: *maxFrames}); err != nil {
		logger.Error("window run failed", "error", err)
		return 1
	}
	return 0
}
