package host

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ThemeFileWatcher mirrors a text file containing "dark" or "light" into a
// DocumentRoot. The watcher goroutine never touches the document; it posts the
// change onto the event loop.
type ThemeFileWatcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	path    string
	loop    *EventLoop
	doc     *DocumentRoot
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewThemeFileWatcher creates a watcher for path. Nothing is watched until Start.
func NewThemeFileWatcher(path string, loop *EventLoop, doc *DocumentRoot, logger *slog.Logger) *ThemeFileWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThemeFileWatcher{
		path:   filepath.Clean(path),
		loop:   loop,
		doc:    doc,
		logger: logger,
	}
}

// ReadThemeFile parses the theme stored at path.
func ReadThemeFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading theme file: %w", err)
	}
	return ParseTheme(string(data))
}

// Start applies the file's current theme and begins watching it.
// The parent directory is watched so editors that replace the file are seen.
// Calling Start on a running watcher is a no-op.
func (w *ThemeFileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating theme watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", w.path, err)
	}

	w.watcher = watcher
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	w.apply()
	go w.run(ctx, watcher, w.stopCh, w.doneCh)

	w.logger.Info("theme watcher started", "path", w.path)
	return nil
}

// Stop ends watching and waits for the goroutine to exit. Safe to call more than once.
func (w *ThemeFileWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh, watcher := w.stopCh, w.doneCh, w.watcher
	w.watcher = nil
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	if err := watcher.Close(); err != nil {
		w.logger.Error("closing theme watcher", "error", err)
	}
	w.logger.Info("theme watcher stopped", "path", w.path)
}

func (w *ThemeFileWatcher) run(ctx context.Context, watcher *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-stopCh:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.apply()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("theme watcher", "error", err)
		}
	}
}

// apply reads the file and posts the theme to the document.
func (w *ThemeFileWatcher) apply() {
	theme, err := ReadThemeFile(w.path)
	if err != nil {
		w.logger.Warn("ignoring theme file", "path", w.path, "error", err)
		return
	}
	w.loop.Post(func() {
		w.doc.SetTheme(theme)
	})
}
