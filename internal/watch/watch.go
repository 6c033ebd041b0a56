// Package watch triggers catalog refreshes when application directories
// change on disk. Events are debounced so a package install touching many
// files causes one refresh, not dozens.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period after the last filesystem event
// before the refresh fires.
const defaultDebounce = 2 * time.Second

// Config holds the parameters for a Watcher.
type Config struct {
	// Dirs are the directories to watch. Missing directories are skipped;
	// they commonly include application dirs that do not exist on every
	// system.
	Dirs []string

	// Debounce is the quiet period after the last event before OnChange
	// fires. Zero or negative values fall back to the default.
	Debounce time.Duration

	// OnChange is called after the debounce window closes. A nil callback
	// is a no-op.
	OnChange func(ctx context.Context) error

	// Logger is the structured logger (optional, uses default if nil)
	Logger *slog.Logger
}

// Watcher monitors application directories and fires a debounced callback
// when anything inside them changes. Run must be called exactly once.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func(ctx context.Context) error
	logger   *slog.Logger
	watched  int
	started  atomic.Bool
}

// New creates a Watcher over cfg.Dirs. Directories that do not exist or
// cannot be watched are skipped with a log line.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		onChange: cfg.OnChange,
		logger:   logger,
	}

	for _, dir := range cfg.Dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			logger.Debug("skipping unwatchable directory", "dir", dir)
			continue
		}
		if err := fsw.Add(dir); err != nil {
			logger.Warn("failed to watch directory", "dir", dir, "error", err)
			continue
		}
		w.watched++
	}

	logger.Debug("watching application directories", "count", w.watched)
	return w, nil
}

// Watched returns the number of directories under watch.
func (w *Watcher) Watched() int {
	return w.watched
}

// Close releases the underlying fsnotify watcher. Run closes it on exit;
// Close is for the case where Run is never started.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run blocks until ctx is canceled, coalescing filesystem events and
// dispatching debounced refresh callbacks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		timer   *time.Timer
		dirty   bool
		running atomic.Bool
	)

	// fire runs the callback once per debounce window. If the previous
	// refresh is still in progress the window is re-armed so events are
	// not lost.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if !dirty {
			mu.Unlock()
			return
		}
		dirty = false
		mu.Unlock()

		if w.onChange == nil {
			return
		}
		if err := w.onChange(ctx); err != nil {
			w.logger.Warn("refresh after directory change failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		localTimer := timer
		mu.Unlock()
		if localTimer != nil {
			localTimer.Stop()
		}
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("failed to close fsnotify watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}

			// New subdirectories get watched too; desktop entries may
			// live one level down.
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			w.logger.Debug("filesystem event", "path", evt.Name, "op", evt.Op.String())

			mu.Lock()
			dirty = true
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// maybeAddDir adds path to the watcher if it is a directory.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("failed to watch new directory", "dir", path, "error", err)
	}
}
