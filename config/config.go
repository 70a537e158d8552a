// Package config provides configuration loading and access for the particle field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Hero      HeroConfig      `yaml:"hero"`
	Field     FieldConfig     `yaml:"field"`
	Palettes  PaletteConfig   `yaml:"palettes"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// HeroConfig places the hero section the field decorates inside the window.
// Zero width/height means "fill the window".
type HeroConfig struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// FieldConfig is the configuration surface of one particle field instance.
// A snapshot is taken at attach; changing it requires detach and reattach.
type FieldConfig struct {
	Count          int      `yaml:"count"`           // Total number of particles
	GlobeSize      float64  `yaml:"globe_size"`      // Radius of the globe volume
	ParticleScale  float64  `yaml:"particle_scale"`  // Point size multiplier
	RingRadius     float64  `yaml:"ring_radius"`     // Full-strength repulsion radius around the pointer
	RingWidth      float64  `yaml:"ring_width"`      // Falloff width beyond ring_radius
	Displacement   float64  `yaml:"displacement"`    // Max push-away distance
	HeartbeatScale float64  `yaml:"heartbeat_scale"` // 0 = no pulse, 1 = default, 2 = dramatic
	SwimSpeed      float64  `yaml:"swim_speed"`      // Ambient jitter speed
	Colors         []string `yaml:"colors,omitempty"` // Optional [color1, color2, color3] hex override
	Theme          string   `yaml:"theme,omitempty"`  // Optional forced theme: "light" or "dark"
}

// PaletteConfig holds the three-color presets per theme.
type PaletteConfig struct {
	Light []string `yaml:"light"`
	Dark  []string `yaml:"dark"`
}

// RenderConfig holds camera, interaction and easing constants.
type RenderConfig struct {
	FOV             float64 `yaml:"fov"`               // Vertical field of view in degrees
	Near            float64 `yaml:"near"`              // Near clip plane
	Far             float64 `yaml:"far"`               // Far clip plane
	CameraDistance  float64 `yaml:"camera_distance"`   // Camera z position
	PlaneSize       float64 `yaml:"plane_size"`        // Interaction plane edge length
	MaxPixelRatio   float64 `yaml:"max_pixel_ratio"`   // Cap on device pixel ratio
	RaycastEvery    int     `yaml:"raycast_every"`     // Raycast on every Nth frame
	VisibilityRatio float64 `yaml:"visibility_ratio"`  // Visible fraction needed to keep running
	EaseBase        float64 `yaml:"ease_base"`         // Minimum lerp factor per frame
	EaseGain        float64 `yaml:"ease_gain"`         // Lerp factor added per unit distance
	EaseMaxExtra    float64 `yaml:"ease_max_extra"`    // Cap on the distance-dependent part
	PointSizeFactor float64 `yaml:"point_size_factor"` // uPointSize = particle_scale * this
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow   int `yaml:"perf_window"`    // Frames averaged by the perf collector
	LogEvery     int `yaml:"log_every"`      // Frames between perf log lines (0 = never)
	SnapshotSize int `yaml:"snapshot_size"`  // Headless snapshot height in pixels
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	LightColors [3]colorful.Color
	DarkColors  [3]colorful.Color
	TanHalfFOV  float64
}

// Validation errors.
var (
	ErrNegativeCount = errors.New("config: count must be >= 0")
	ErrGlobeSize     = errors.New("config: globe_size must be > 0")
	ErrColorCount    = errors.New("config: colors must hold exactly 3 entries")
	ErrTheme         = errors.New(`config: theme must be "", "light" or "dark"`)
)

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Field.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded defaults. Panics if they fail to parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	light, err := ParsePalette(c.Palettes.Light)
	if err != nil {
		return fmt.Errorf("light palette: %w", err)
	}
	dark, err := ParsePalette(c.Palettes.Dark)
	if err != nil {
		return fmt.Errorf("dark palette: %w", err)
	}
	c.Derived.LightColors = light
	c.Derived.DarkColors = dark
	c.Derived.TanHalfFOV = math.Tan(c.Render.FOV * math.Pi / 360)

	if c.Render.RaycastEvery < 1 {
		c.Render.RaycastEvery = 1
	}
	if c.Render.MaxPixelRatio <= 0 {
		c.Render.MaxPixelRatio = 1
	}
	return nil
}

// Validate checks the field configuration for values the engine cannot use.
func (f FieldConfig) Validate() error {
	if f.Count < 0 {
		return fmt.Errorf("%w (got %d)", ErrNegativeCount, f.Count)
	}
	if !(f.GlobeSize > 0) {
		return fmt.Errorf("%w (got %g)", ErrGlobeSize, f.GlobeSize)
	}
	if len(f.Colors) != 0 {
		if _, err := ParsePalette(f.Colors); err != nil {
			return err
		}
	}
	switch f.Theme {
	case "", "light", "dark":
	default:
		return fmt.Errorf("%w (got %q)", ErrTheme, f.Theme)
	}
	return nil
}

// ParsePalette parses exactly three hex colors.
func ParsePalette(hex []string) ([3]colorful.Color, error) {
	var out [3]colorful.Color
	if len(hex) != 3 {
		return out, fmt.Errorf("%w (got %d)", ErrColorCount, len(hex))
	}
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return out, fmt.Errorf("color %d: %w", i+1, err)
		}
		out[i] = c
	}
	return out, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
