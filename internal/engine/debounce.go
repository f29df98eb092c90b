package engine

import (
	"sync"
	"time"

	"github.com/dshills/texprettify/internal/reveal"
)

// debouncer coalesces recompute requests per document. Each request
// restarts the document's quiet period; the callback runs once after the
// last one.
type debouncer struct {
	mu      sync.Mutex
	clock   reveal.Clock
	delay   time.Duration
	seq     uint64 // sequence number to detect stale callbacks
	pending map[string]pendingRun
	fn      func(uri string)
	closed  bool
}

type pendingRun struct {
	seq   uint64
	timer reveal.Timer
}

func newDebouncer(clock reveal.Clock, delay time.Duration, fn func(uri string)) *debouncer {
	return &debouncer{
		clock:   clock,
		delay:   delay,
		pending: make(map[string]pendingRun),
		fn:      fn,
	}
}

// Call schedules fn(uri) after the quiet period.
func (d *debouncer) Call(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if p, ok := d.pending[uri]; ok {
		p.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending[uri] = pendingRun{
		seq:   seq,
		timer: d.clock.AfterFunc(d.delay, func() { d.fire(uri, seq) }),
	}
}

func (d *debouncer) fire(uri string, seq uint64) {
	d.mu.Lock()
	// Only execute if this is still the current scheduled run.
	p, ok := d.pending[uri]
	if !ok || p.seq != seq || d.closed {
		d.mu.Unlock()
		return
	}
	delete(d.pending, uri)
	d.mu.Unlock()

	d.fn(uri)
}

// Cancel drops a pending run for uri.
func (d *debouncer) Cancel(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[uri]; ok {
		p.timer.Stop()
		delete(d.pending, uri)
	}
}

// Pending reports whether a run is scheduled for uri.
func (d *debouncer) Pending(uri string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[uri]
	return ok
}

// SetDelay changes the quiet period of later calls.
func (d *debouncer) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

// Flush runs every pending call now.
func (d *debouncer) Flush() {
	d.mu.Lock()
	uris := make([]string, 0, len(d.pending))
	for uri, p := range d.pending {
		p.timer.Stop()
		uris = append(uris, uri)
	}
	clear(d.pending)
	d.mu.Unlock()

	for _, uri := range uris {
		d.fn(uri)
	}
}

// Close cancels every pending run.
func (d *debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.pending {
		p.timer.Stop()
	}
	clear(d.pending)
	d.closed = true
}
