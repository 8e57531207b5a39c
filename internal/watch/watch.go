// Package watch is the process-wide filesystem monitor: a single
// recursive fsnotify.Watcher, a mutex-guarded set of registered roots,
// and one background goroutine draining events. Grounded on the
// teacher's FileWatcher, minus its eventDebouncer — the Task queue's
// upsert-by-(path_type,path) semantics already collapse a burst of
// events into a bounded amount of work, so a second debounce layer
// here would only add latency.
package watch

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/duckindex/internal/errors"
	"github.com/standardbeagle/duckindex/internal/logging"
)

// Handler is called once per Create, Write, Remove, or Rename event, with the
// affected path. It is expected to submit reconciliation work, not
// block on it.
type Handler func(path string)

// Monitor owns one fsnotify.Watcher and the set of roots it was asked
// to watch. AddPath/DelPath are safe to call concurrently with the
// drain goroutine.
type Monitor struct {
	watcher *fsnotify.Watcher
	log     *logging.Logger
	onEvent Handler

	mu    sync.Mutex
	roots map[string]bool

	done chan struct{}
}

// New creates the underlying fsnotify.Watcher and starts the drain
// goroutine. onEvent is called for every relevant event; it must not
// block.
func New(log *logging.Logger, onEvent Handler) (*Monitor, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewWatcherError("new", "", err)
	}
	m := &Monitor{
		watcher: w,
		log:     log,
		onEvent: onEvent,
		roots:   make(map[string]bool),
		done:    make(chan struct{}),
	}
	go m.drain()
	return m, nil
}

// AddPath registers root and every directory beneath it for watching.
// Re-adding an already-watched root is a no-op.
func (m *Monitor) AddPath(root string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roots[root] {
		return nil
	}
	if err := m.addTree(root); err != nil {
		return err
	}
	m.roots[root] = true
	return nil
}

// DelPath stops watching root and every directory beneath it that was
// registered under it.
func (m *Monitor) DelPath(root string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roots, root)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			m.watcher.Remove(path) // best effort; already-removed paths error harmlessly
		}
		return nil
	})
}

// addTree registers every directory under root, including root itself.
// Must be called with mu held.
func (m *Monitor) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, continue the walk
		}
		if !d.IsDir() {
			return nil
		}
		if err := m.watcher.Add(path); err != nil {
			m.log.Warnf("watch: add %s: %v", path, err)
		}
		return nil
	})
}

// Close stops the drain goroutine and releases the fsnotify handle.
func (m *Monitor) Close() error {
	err := m.watcher.Close()
	<-m.done
	return err
}

func (m *Monitor) drain() {
	defer close(m.done)
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handle(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.Errorf("watch: %v", err)
		}
	}
}

func (m *Monitor) handle(event fsnotify.Event) {
	switch {
	case event.Op&fsnotify.Create != 0:
		m.onCreate(event.Name)
		m.onEvent(event.Name)
	case event.Op&fsnotify.Write != 0:
		m.onEvent(event.Name)
	case event.Op&fsnotify.Remove != 0 || event.Op&fsnotify.Rename != 0:
		m.onEvent(event.Name)
	case event.Op&fsnotify.Chmod != 0:
		// fsnotify has no Access event; Chmod is the nearest analogue to
		// the "access events are ignored" rule, so it's dropped here too.
		m.log.Debugf("watch: chmod %s", event.Name)
	}
}

// onCreate adds a watch for a newly created directory so its own
// descendants are covered without waiting for a future reconciliation
// pass to discover them via the Reconciler's directory walk.
func (m *Monitor) onCreate(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.watcher.Add(path); err != nil {
		m.log.Warnf("watch: add new directory %s: %v", path, err)
	}
}
