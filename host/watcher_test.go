package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// waitForTheme pumps the loop until the document reports want.
func waitForTheme(t *testing.T, loop *EventLoop, doc *DocumentRoot, want Theme) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		loop.Flush()
		if doc.Theme() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("theme did not become %s, still %s", want, doc.Theme())
}

func TestThemeFileWatcher(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "theme")
	if err := os.WriteFile(path, []byte("light\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loop := NewEventLoop()
	doc := NewDocumentRoot(loop)
	w := NewThemeFileWatcher(path, loop, doc, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("second start: %v", err)
	}
	waitForTheme(t, loop, doc, ThemeLight)

	if err := os.WriteFile(path, []byte("dark"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForTheme(t, loop, doc, ThemeDark)

	w.Stop()
	w.Stop()
}

func TestThemeFileWatcherMissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := NewEventLoop()
	w := NewThemeFileWatcher(filepath.Join(t.TempDir(), "nope", "theme"), loop, NewDocumentRoot(loop), nil)
	if err := w.Start(context.Background()); err == nil {
		t.Error("expected error watching a missing directory")
		w.Stop()
	}
}
