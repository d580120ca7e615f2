package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultIgnore holds base-name patterns that never produce events.
var DefaultIgnore = []string{".git", "node_modules", ".idea", "*.swp", "*.tmp", "*~", ".#*"}

// Event reports content inserted or changed under a watched root.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Source delivers content events to subscribers. Subscribe returns a
// function that removes the subscription.
type Source interface {
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Watcher is a Source backed by fsnotify. It watches a directory tree
// recursively and starts watching directories created after Run begins.
type Watcher struct {
	root   string
	ignore []string
	fsw    *fsnotify.Watcher
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[int]func(Event)
	nextID int
}

// NewWatcher creates a Watcher for root. Nil ignore selects DefaultIgnore.
func NewWatcher(root string, ignore []string, logger *slog.Logger) (*Watcher, error) {
	if ignore == nil {
		ignore = DefaultIgnore
	}
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w := &Watcher{
		root:   root,
		ignore: ignore,
		fsw:    fsw,
		logger: logger,
		subs:   make(map[int]func(Event)),
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Subscribe registers fn for every event.
func (w *Watcher) Subscribe(fn func(Event)) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}

// Run dispatches events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if w.ignored(ev.Name) || ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				w.logger.Warn("watching new directory", slog.String("path", ev.Name), slog.Any("error", err))
			}
			return
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}

	w.mu.RLock()
	subs := make([]func(Event), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.RUnlock()

	event := Event{Path: ev.Name, Op: ev.Op}
	for _, fn := range subs {
		fn(event)
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.ignore {
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// Debounced subscribes to src and hands the de-duplicated paths of each
// burst of events to fn once the burst has been quiet for delay. The returned
// function unsubscribes and cancels any pending flush.
func Debounced(src Source, delay time.Duration, fn func(paths []string)) (stop func()) {
	d := NewDebouncer(delay, fn)
	unsubscribe := src.Subscribe(func(ev Event) { d.Add(ev.Path) })
	return func() {
		unsubscribe()
		d.Stop()
	}
}
