package watcher

import (
	"sync"
	"time"
)

// DefaultDebounce is the coalescing window used when none is given.
// LaTeX builds rewrite the .aux file several times per run.
const DefaultDebounce = 100 * time.Millisecond

// DebouncedWatcher wraps a Watcher and coalesces rapid changes to the
// same path into one event carrying the union of their operations.
type DebouncedWatcher struct {
	inner Watcher
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingEvent
	events  chan Event
	errors  chan error
	closed  bool
	closeCh chan struct{}
	loopWg  sync.WaitGroup
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// NewDebouncedWatcher creates a debounced wrapper around inner.
func NewDebouncedWatcher(inner Watcher, delay time.Duration) *DebouncedWatcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}

	dw := &DebouncedWatcher{
		inner:   inner,
		delay:   delay,
		pending: make(map[string]*pendingEvent),
		events:  make(chan Event, 100),
		errors:  make(chan error, 100),
		closeCh: make(chan struct{}),
	}

	dw.loopWg.Add(1)
	go dw.processLoop()

	return dw
}

// Watch starts watching a path.
func (dw *DebouncedWatcher) Watch(path string) error {
	return dw.inner.Watch(path)
}

// WatchRecursive starts watching a directory recursively.
func (dw *DebouncedWatcher) WatchRecursive(path string) error {
	return dw.inner.WatchRecursive(path)
}

// Unwatch stops watching a path.
func (dw *DebouncedWatcher) Unwatch(path string) error {
	return dw.inner.Unwatch(path)
}

// Events returns the debounced event channel.
func (dw *DebouncedWatcher) Events() <-chan Event {
	return dw.events
}

// Errors returns the error channel.
func (dw *DebouncedWatcher) Errors() <-chan error {
	return dw.errors
}

// Close drops pending events and closes the inner watcher.
func (dw *DebouncedWatcher) Close() error {
	dw.mu.Lock()
	if dw.closed {
		dw.mu.Unlock()
		return nil
	}
	dw.closed = true
	close(dw.closeCh)
	for path, p := range dw.pending {
		p.timer.Stop()
		delete(dw.pending, path)
	}
	dw.mu.Unlock()

	dw.loopWg.Wait()
	err := dw.inner.Close()

	// Timers stopped above may already be running fireEvent; it sees
	// closeCh and returns without sending.
	dw.mu.Lock()
	close(dw.events)
	close(dw.errors)
	dw.mu.Unlock()
	return err
}

// Stats returns the inner statistics plus the pending count.
func (dw *DebouncedWatcher) Stats() Stats {
	stats := dw.inner.Stats()
	stats.PendingEvents = dw.PendingCount()
	return stats
}

// PendingCount returns the number of paths waiting for their window to
// close.
func (dw *DebouncedWatcher) PendingCount() int {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return len(dw.pending)
}

func (dw *DebouncedWatcher) processLoop() {
	defer dw.loopWg.Done()

	for {
		select {
		case <-dw.closeCh:
			return

		case event, ok := <-dw.inner.Events():
			if !ok {
				return
			}
			dw.handleEvent(event)

		case err, ok := <-dw.inner.Errors():
			if !ok {
				return
			}
			dw.forwardError(err)
		}
	}
}

// handleEvent starts or extends the window for the event's path.
func (dw *DebouncedWatcher) handleEvent(event Event) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.closed {
		return
	}

	if p, ok := dw.pending[event.Path]; ok {
		p.event.Op |= event.Op
		p.event.Timestamp = event.Timestamp
		p.timer.Reset(dw.delay)
		return
	}

	path := event.Path
	dw.pending[path] = &pendingEvent{
		event: event,
		timer: time.AfterFunc(dw.delay, func() { dw.fireEvent(path) }),
	}
}

// fireEvent sends the pending event for path.
func (dw *DebouncedWatcher) fireEvent(path string) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	p, ok := dw.pending[path]
	if !ok || dw.closed {
		return
	}
	delete(dw.pending, path)

	select {
	case dw.events <- p.event:
	default:
		// Channel full, drop event
	}
}

func (dw *DebouncedWatcher) forwardError(err error) {
	select {
	case dw.errors <- err:
	case <-dw.closeCh:
	default:
	}
}

// Flush immediately fires all pending events.
func (dw *DebouncedWatcher) Flush() {
	dw.mu.Lock()
	paths := make([]string, 0, len(dw.pending))
	for path, p := range dw.pending {
		p.timer.Stop()
		paths = append(paths, path)
	}
	dw.mu.Unlock()

	for _, path := range paths {
		dw.fireEvent(path)
	}
}

var _ Watcher = (*DebouncedWatcher)(nil)
