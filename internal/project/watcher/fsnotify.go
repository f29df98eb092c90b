package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/texprettify/internal/project/ignore"
)

// FSNotifyWatcher implements Watcher using fsnotify. fsnotify watches
// directories, so file changes are reported for every file in a watched
// directory.
type FSNotifyWatcher struct {
	mu sync.RWMutex

	watcher *fsnotify.Watcher
	config  Config
	ignore  *ignore.Matcher

	// Watched directories, and the roots given to WatchRecursive that
	// ignore patterns are relative to.
	paths map[string]bool
	roots []string

	events chan Event
	errors chan error

	startTime   time.Time
	totalEvents int64
	totalErrors int64
	lastError   error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewFSNotifyWatcher creates a new fsnotify-based watcher.
func NewFSNotifyWatcher(opts ...WatcherOption) (*FSNotifyWatcher, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	bufSize := config.BufferSize
	if bufSize <= 0 {
		bufSize = 100
	}

	w := &FSNotifyWatcher{
		watcher:   fsw,
		config:    config,
		ignore:    ignore.New(append(slices.Clone(ignore.DefaultPatterns), config.IgnorePatterns...)...),
		paths:     make(map[string]bool),
		events:    make(chan Event, bufSize),
		errors:    make(chan error, bufSize),
		startTime: time.Now(),
		closeCh:   make(chan struct{}),
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch starts watching a directory. Watching a file watches its
// directory.
func (w *FSNotifyWatcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrPathNotExist
		}
		return err
	}
	if !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.addLocked(absPath)
}

func (w *FSNotifyWatcher) addLocked(dir string) error {
	if w.closed {
		return ErrWatcherClosed
	}
	if w.paths[dir] {
		return ErrAlreadyWatching
	}
	if w.config.MaxWatches > 0 && len(w.paths) >= w.config.MaxWatches {
		return ErrWatchLimit
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.paths[dir] = true
	return nil
}

// WatchRecursive watches a directory and every subdirectory that is not
// ignored.
func (w *FSNotifyWatcher) WatchRecursive(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrPathNotExist
		}
		return err
	}
	if !info.IsDir() {
		return w.Watch(absPath)
	}

	w.mu.Lock()
	if !slices.Contains(w.roots, absPath) {
		w.roots = append(w.roots, absPath)
	}
	w.mu.Unlock()

	return w.watchTree(absPath)
}

// watchTree watches dir and its non-ignored subdirectories.
func (w *FSNotifyWatcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries, continue walking
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnore(p, true) {
			return filepath.SkipDir
		}

		w.mu.Lock()
		watchErr := w.addLocked(p)
		w.mu.Unlock()
		switch {
		case watchErr == nil, errors.Is(watchErr, ErrAlreadyWatching):
		case errors.Is(watchErr, ErrWatcherClosed), errors.Is(watchErr, ErrWatchLimit):
			return watchErr
		default:
			w.recordError(watchErr)
		}
		return nil
	})
}

// Unwatch stops watching a directory.
func (w *FSNotifyWatcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.paths[absPath] {
		return ErrNotWatching
	}
	if err := w.watcher.Remove(absPath); err != nil {
		return err
	}
	delete(w.paths, absPath)
	return nil
}

// IsWatching returns true if the directory is being watched.
func (w *FSNotifyWatcher) IsWatching(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.paths[absPath]
}

// Events returns the event channel.
func (w *FSNotifyWatcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel.
func (w *FSNotifyWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *FSNotifyWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()

	close(w.events)
	close(w.errors)

	return w.watcher.Close()
}

// Stats returns watcher statistics.
func (w *FSNotifyWatcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return Stats{
		WatchedPaths:  len(w.paths),
		PendingEvents: len(w.events),
		TotalEvents:   atomic.LoadInt64(&w.totalEvents),
		Errors:        atomic.LoadInt64(&w.totalErrors),
		LastError:     w.lastError,
		StartTime:     w.startTime,
	}
}

func (w *FSNotifyWatcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.recordError(err)
			w.sendError(err)
		}
	}
}

func (w *FSNotifyWatcher) handleFSEvent(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 {
		return
	}

	isDir := false
	if op.Has(OpCreate) {
		if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
			isDir = true
		}
	}
	if w.shouldIgnore(fsEvent.Name, isDir) {
		return
	}

	// New directories under a recursive root are watched too, so build
	// directories created after startup are covered.
	if isDir && w.underRoot(fsEvent.Name) {
		if err := w.watchTree(fsEvent.Name); err != nil && !errors.Is(err, ErrWatcherClosed) {
			w.recordError(err)
		}
	}

	event := Event{
		Path:      fsEvent.Name,
		Op:        op,
		Timestamp: time.Now(),
	}
	if w.config.EventFilter != nil && !w.config.EventFilter(event) {
		return
	}
	w.sendEvent(event)
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}

func (w *FSNotifyWatcher) underRoot(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldIgnore checks path against the ignore patterns of every root
// containing it.
func (w *FSNotifyWatcher) shouldIgnore(path string, isDir bool) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, root := range w.roots {
		if path != root && strings.HasPrefix(path, root+string(filepath.Separator)) && w.ignore.MatchUnder(root, path, isDir) {
			return true
		}
	}
	return false
}

func (w *FSNotifyWatcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		atomic.AddInt64(&w.totalEvents, 1)
	default:
		w.recordError(errors.New("event channel full, dropping event"))
	}
}

func (w *FSNotifyWatcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

func (w *FSNotifyWatcher) recordError(err error) {
	atomic.AddInt64(&w.totalErrors, 1)
	w.mu.Lock()
	w.lastError = err
	w.mu.Unlock()
}

var _ Watcher = (*FSNotifyWatcher)(nil)
