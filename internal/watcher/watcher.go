package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gallery-admin/internal/filesystem"
	"gallery-admin/internal/logging"
	"gallery-admin/internal/media"
	"gallery-admin/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before it is handled.
// Uploads and copies arrive as one create followed by many writes.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives the path of a settled image file.
type Handler func(path string)

// Watcher reports new or rewritten images in a single directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	handle   Handler
}

// New creates a watcher for dir. A non-positive debounce uses DefaultDebounce.
func New(dir string, debounce time.Duration, handle Handler) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, debounce: debounce, handle: handle}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run watches the directory until ctx is cancelled. Each image is handed to
// the handler once its events have stopped for the debounce interval. The
// handler runs on the Run goroutine, so calls never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		metrics.WatcherErrors.Inc()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	if err := fw.Add(w.dir); err != nil {
		metrics.WatcherErrors.Inc()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logging.Info("Watching %s for new images", w.dir)

	pending := make(map[string]time.Time)
	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug("Watcher for %s stopped (%d pending)", w.dir, len(pending))
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.accept(event) {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.Error("Watcher error: %v", err)
			metrics.WatcherErrors.Inc()

		case now := <-ticker.C:
			w.flush(ctx, pending, now)
		}
	}
}

// accept filters events down to creates and writes of visible images.
func (w *Watcher) accept(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !media.IsSupportedImage(name) {
		metrics.WatcherEventsTotal.WithLabelValues("ignored").Inc()
		return false
	}

	switch {
	case event.Has(fsnotify.Create):
		metrics.WatcherEventsTotal.WithLabelValues("create").Inc()
		return true
	case event.Has(fsnotify.Write):
		metrics.WatcherEventsTotal.WithLabelValues("write").Inc()
		return true
	default:
		metrics.WatcherEventsTotal.WithLabelValues("ignored").Inc()
		return false
	}
}

// flush hands every settled path to the handler in name order.
func (w *Watcher) flush(ctx context.Context, pending map[string]time.Time, now time.Time) {
	var due []string
	for path, last := range pending {
		if now.Sub(last) >= w.debounce {
			due = append(due, path)
		}
	}
	sort.Strings(due)

	for _, path := range due {
		if ctx.Err() != nil {
			return
		}
		delete(pending, path)
		if !filesystem.IsRegularFile(path) {
			// removed again, or a directory with an image-like name
			continue
		}
		logging.Debug("Watcher: %s settled", path)
		w.handle(path)
	}
}
