package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/particlefield/config"
)

func TestOutputManager_DisabledWhenNoDir(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v, %v", om, err)
	}
	if err := om.WriteFrame(FrameRecord{}); err != nil {
		t.Errorf("nil manager should discard frames: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil manager close: %v", err)
	}
}

func TestOutputManager_WritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := int64(1); i <= 3; i++ {
		if err := om.WriteFrame(FrameRecord{Frame: i, Running: true, MouseX: -999, Theme: "dark"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteEvent(Event{Frame: 0, Type: EventAttach, Detail: "800x600"}); err != nil {
		t.Fatal(err)
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{PhaseDraw: 90}}, 3); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "frames.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "frame,time_s"); n != 1 {
		t.Errorf("expected exactly one header, got %d", n)
	}

	var frames []FrameRecord
	if err := gocsv.UnmarshalBytes(data, &frames); err != nil {
		t.Fatalf("reading frames back: %v", err)
	}
	if len(frames) != 3 || frames[2].Frame != 3 || frames[0].MouseX != -999 {
		t.Errorf("unexpected frames %+v", frames)
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}
