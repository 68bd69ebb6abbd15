package blocklist

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce absorbs editors and generators that write a file in several steps
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a Store when its rule files change. Bursts of file events
// within the debounce window collapse into a single reload, performed off
// the caller's goroutine.
type Watcher struct {
	store    *Store
	debounce time.Duration
	logger   *zap.Logger
	fsw      *fsnotify.Watcher
	files    map[string]struct{}

	mu       sync.Mutex
	timer    *time.Timer // Protected by mu
	stopped  bool        // Protected by mu
	onReload func(ReloadResult, error)
}

// NewWatcher watches the directories holding the store's rule files.
// Directories that do not exist yet are skipped with a warning.
func NewWatcher(store *Store, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		store:    store,
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
		files:    make(map[string]struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range store.Sources().Paths() {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			logger.Warn("rule directory not watched", zap.String("dir", dir), zap.Error(err))
		}
	}
	return w, nil
}

// OnReload registers a hook called after every watcher-triggered reload
func (w *Watcher) OnReload(fn func(ReloadResult, error)) *Watcher {
	w.mu.Lock()
	w.onReload = fn
	w.mu.Unlock()
	return w
}

// Run dispatches file events until ctx is cancelled, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher and cancels any pending reload
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return w.fsw.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	_, ok := w.files[filepath.Clean(ev.Name)]
	return ok
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	hook := w.onReload
	w.mu.Unlock()

	result, err := w.store.Reload()
	if hook != nil {
		hook(result, err)
	}
}
