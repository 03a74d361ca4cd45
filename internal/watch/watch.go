// Package watch is the optional file-watch mode that keeps the graph
// current between explicit update_code_graph rebuilds: an fsnotify watcher
// recursively covers the project root, debounces bursts of events, and
// drives the graph manager's UpdateFile/RemoveFile per changed path.
// There is no separate create/remove/change callback set, just a
// write-or-remove dispatch per debounced path.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/arven/codegraph/internal/graph"
	"github.com/arven/codegraph/internal/logging"
	"github.com/arven/codegraph/internal/types"
)

// Watcher keeps manager's graph in sync with the filesystem under root
// while Run is active.
type Watcher struct {
	fsw      *fsnotify.Watcher
	manager  *graph.Manager
	root     string
	debounce time.Duration

	mu     sync.Mutex
	events map[string]fsnotify.Op
	timer  *time.Timer

	flushMu sync.Mutex
}

// New creates a Watcher and recursively registers fsnotify watches on every
// non-ignored directory under root. The watcher is not started until Run is
// called.
func New(manager *graph.Manager, root string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	w := &Watcher{
		fsw:      fsw,
		manager:  manager,
		root:     root,
		debounce: debounce,
		events:   make(map[string]fsnotify.Op),
	}

	if err := w.addWatches(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addWatches walks root, registering a watch on every directory except
// .git, node_modules and vendor trees; the configured ignore set and
// .gitignore are not consulted. Symlink cycles are broken by tracking
// resolved real paths.
func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		real, rerr := filepath.EvalSymlinks(path)
		if rerr != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		base := filepath.Base(path)
		if base != "." && (base == ".git" || base == "node_modules" || base == "vendor") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			logging.Debug("watch", "failed to watch %s: %v", path, err)
		}
		return nil
	})
}

// Run processes fsnotify events until ctx is cancelled. Pending debounced
// events are dropped on shutdown rather than raced against a concurrent
// manager shutdown.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Error("watch", "fsnotify error: %v", err)
		}
	}
}

// Close releases the underlying fsnotify watcher and stops any pending
// debounce timer.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	info, err := os.Stat(ev.Name)
	if err == nil && info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			if addErr := w.fsw.Add(ev.Name); addErr != nil {
				logging.Debug("watch", "failed to watch new directory %s: %v", ev.Name, addErr)
			}
		}
		return
	}
	if types.LanguageForPath(ev.Name) == types.LanguageUnknown {
		return
	}

	w.mu.Lock()
	w.events[ev.Name] = w.events[ev.Name] | ev.Op
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
	w.mu.Unlock()
}

// flush applies every debounced path's net effect to the Graph Manager:
// removed-and-gone paths call RemoveFile, everything else calls UpdateFile
// (which itself short-circuits on an unchanged content hash).
func (w *Watcher) flush() {
	w.mu.Lock()
	events := w.events
	w.events = make(map[string]fsnotify.Op)
	w.mu.Unlock()

	if len(events) == 0 {
		return
	}

	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	ctx := context.Background()
	for path, op := range events {
		if _, err := os.Stat(path); err != nil {
			if op&fsnotify.Remove != 0 || op&fsnotify.Rename != 0 {
				if rerr := w.manager.RemoveFile(path); rerr != nil {
					logging.Debug("watch", "remove %s: %v", path, rerr)
				}
			}
			continue
		}
		if _, err := w.manager.UpdateFile(ctx, path); err != nil {
			logging.Error("watch", "update %s: %v", path, err)
		}
	}
}
