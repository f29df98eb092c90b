// Package reveal tracks which prettified spans are temporarily shown as
// their original source text.
//
// A span enters the held state when the user hovers it or moves the caret
// into it. Each further interaction restarts its expiry timer. When the
// timer fires the span becomes visible again, exactly once per episode.
package reveal

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultHold is the hold duration used when none is configured.
	DefaultHold = 1600 * time.Millisecond

	// MinHold is the shortest accepted hold duration.
	MinHold = 100 * time.Millisecond
)

// Range is a span position in line/column coordinates.
type Range struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Key identifies a held span. Keys are positional, so a span keeps its
// held state across recomputes as long as it does not move.
func Key(uri string, r Range) string {
	return fmt.Sprintf("%s:%d:%d:%d:%d", uri, r.StartLine, r.StartCol, r.EndLine, r.EndCol)
}

// ClampHold applies the default and minimum to a configured duration.
// Zero selects the default.
func ClampHold(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultHold
	}
	return max(d, MinHold)
}

type entry struct {
	uri   string
	seq   uint64
	timer Timer
}

// Holder is the hold state machine. It is safe for concurrent use.
type Holder struct {
	mu       sync.Mutex
	hold     time.Duration
	clock    Clock
	onChange func(uri string)
	held     map[string]*entry
	seq      uint64
	closed   bool
}

// Option configures a Holder.
type Option func(*Holder)

// WithHold sets the hold duration. See ClampHold.
func WithHold(d time.Duration) Option {
	return func(h *Holder) {
		h.hold = ClampHold(d)
	}
}

// WithClock replaces the timer source.
func WithClock(c Clock) Option {
	return func(h *Holder) {
		if c != nil {
			h.clock = c
		}
	}
}

// WithOnChange registers a callback invoked, outside the lock, whenever a
// key of uri moves between the visible and held states.
func WithOnChange(fn func(uri string)) Option {
	return func(h *Holder) {
		h.onChange = fn
	}
}

// New creates a Holder.
func New(opts ...Option) *Holder {
	h := &Holder{
		hold:  DefaultHold,
		clock: realClock{},
		held:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetHold changes the hold duration for subsequent episodes.
func (h *Holder) SetHold(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hold = ClampHold(d)
}

// Hold returns the current hold duration.
func (h *Holder) Hold() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hold
}

// Enter holds key, or restarts its expiry if it is already held. It
// reports whether the key was newly held.
func (h *Holder) Enter(uri, key string) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}

	h.seq++
	seq := h.seq
	e, wasHeld := h.held[key]
	if wasHeld {
		e.timer.Stop()
		e.seq = seq
	} else {
		e = &entry{uri: uri, seq: seq}
		h.held[key] = e
	}
	e.timer = h.clock.AfterFunc(h.hold, func() { h.expire(key, seq) })
	h.mu.Unlock()

	if !wasHeld {
		h.notify(uri)
	}
	return !wasHeld
}

// expire returns key to the visible state unless it was re-entered or
// cleared since the timer for seq was scheduled.
func (h *Holder) expire(key string, seq uint64) {
	h.mu.Lock()
	e, ok := h.held[key]
	if !ok || e.seq != seq {
		h.mu.Unlock()
		return
	}
	delete(h.held, key)
	uri := e.uri
	h.mu.Unlock()

	h.notify(uri)
}

func (h *Holder) notify(uri string) {
	if h.onChange != nil {
		h.onChange(uri)
	}
}

// IsHeld reports whether key is currently held.
func (h *Holder) IsHeld(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.held[key]
	return ok
}

// HeldKeys returns the set of keys currently held for uri.
func (h *Holder) HeldKeys(uri string) map[string]bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]bool)
	for k, e := range h.held {
		if e.uri == uri {
			out[k] = true
		}
	}
	return out
}

// Len returns the number of held keys.
func (h *Holder) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.held)
}

// Clear releases every key of uri without notifying.
func (h *Holder) Clear(uri string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for k, e := range h.held {
		if e.uri == uri {
			e.timer.Stop()
			delete(h.held, k)
		}
	}
}

// Close cancels all timers. Enter is a no-op afterwards.
func (h *Holder) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for k, e := range h.held {
		e.timer.Stop()
		delete(h.held, k)
	}
	h.closed = true
}
