package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	f := cfg.Field
	if f.Count != 300 {
		t.Errorf("expected count 300, got %d", f.Count)
	}
	if f.GlobeSize != 0.45 || f.ParticleScale != 0.75 {
		t.Errorf("unexpected globe/scale defaults: %v / %v", f.GlobeSize, f.ParticleScale)
	}
	if f.RingRadius != 0.15 || f.RingWidth != 0.15 || f.Displacement != 0.15 {
		t.Errorf("unexpected ring defaults: %+v", f)
	}
	if cfg.Render.RaycastEvery != 2 {
		t.Errorf("expected raycast every 2 frames, got %d", cfg.Render.RaycastEvery)
	}
	if cfg.Derived.TanHalfFOV < 0.577 || cfg.Derived.TanHalfFOV > 0.578 {
		t.Errorf("expected tan(30deg) ~ 0.5774, got %f", cfg.Derived.TanHalfFOV)
	}
	if got := cfg.Derived.DarkColors[2].Hex(); got != "#10b981" {
		t.Errorf("expected dark color3 #10b981, got %s", got)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "field.yaml")
	data := []byte("field:\n  count: 50\n  theme: light\n  colors: [\"#000000\", \"#ffffff\", \"#ff0000\"]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading overlay: %v", err)
	}
	if cfg.Field.Count != 50 {
		t.Errorf("expected overlay count 50, got %d", cfg.Field.Count)
	}
	// Untouched fields keep defaults
	if cfg.Field.GlobeSize != 0.45 {
		t.Errorf("expected default globe size to survive overlay, got %v", cfg.Field.GlobeSize)
	}
	if cfg.Field.Theme != "light" || len(cfg.Field.Colors) != 3 {
		t.Errorf("expected theme/colors from overlay, got %q %v", cfg.Field.Theme, cfg.Field.Colors)
	}
}

func TestValidate(t *testing.T) {
	base := Default().Field

	tests := []struct {
		name   string
		mutate func(*FieldConfig)
		want   error
	}{
		{"defaults", func(*FieldConfig) {}, nil},
		{"zero count", func(f *FieldConfig) { f.Count = 0 }, nil},
		{"negative count", func(f *FieldConfig) { f.Count = -1 }, ErrNegativeCount},
		{"zero globe", func(f *FieldConfig) { f.GlobeSize = 0 }, ErrGlobeSize},
		{"two colors", func(f *FieldConfig) { f.Colors = []string{"#fff", "#000"} }, ErrColorCount},
		{"bad theme", func(f *FieldConfig) { f.Theme = "sepia" }, ErrTheme},
	}

	for _, tc := range tests {
		f := base
		tc.mutate(&f)
		err := f.Validate()
		if tc.want == nil && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestParsePaletteRejectsBadHex(t *testing.T) {
	if _, err := ParsePalette([]string{"#2c64ed", "nope", "#ffcf03"}); err == nil {
		t.Error("expected error for invalid hex color")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.Field.Count = 1234

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing yaml: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading yaml: %v", err)
	}
	if loaded.Field.Count != 1234 {
		t.Errorf("expected count 1234 after roundtrip, got %d", loaded.Field.Count)
	}
}
