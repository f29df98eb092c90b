// Package notify delivers configuration change events to subscribers.
package notify

import (
	"slices"
	"sync"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeSet indicates settings were replaced programmatically.
	ChangeSet ChangeType = iota

	// ChangeReload indicates the configuration file was re-read.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change is one configuration update.
type Change struct {
	Type ChangeType

	// Keys lists the top-level settings whose values differ, sorted.
	Keys []string

	// Old and New are the settings before and after the change.
	Old any
	New any

	// Source identifies where the change came from.
	Source string
}

// Has reports whether key is among the changed keys.
func (c Change) Has(key string) bool {
	_, found := slices.BinarySearch(c.Keys, key)
	return found
}

// Observer is called when configuration changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type subscriber struct {
	keys     []string // empty means every change
	observer Observer
}

// Notifier manages change subscriptions.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[uint64]subscriber
	nextID uint64

	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous notification delivery through a buffer
// of the given size.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		subs: make(map[uint64]subscriber),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}
	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.add(subscriber{observer: observer})
}

// SubscribeKeys registers an observer called only when one of keys
// changed.
func (n *Notifier) SubscribeKeys(observer Observer, keys ...string) *Subscription {
	return n.add(subscriber{keys: keys, observer: observer})
}

func (n *Notifier) add(s subscriber) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.subs[id] = s
	return &Subscription{id: id, notifier: n}
}

// Notify sends a change to all matching observers. Changes with no keys
// are dropped.
func (n *Notifier) Notify(change Change) {
	if len(change.Keys) == 0 {
		return
	}
	change.Keys = slices.Clone(change.Keys)
	slices.Sort(change.Keys)

	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}
	n.deliver(change)
}

// Close shuts down the notifier. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

// deliver calls matching observers in subscription order, outside the
// lock.
func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.subs))
	for id := range n.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var observers []Observer
	for _, id := range ids {
		s := n.subs[id]
		if len(s.keys) == 0 || slices.ContainsFunc(s.keys, change.Has) {
			observers = append(observers, s.observer)
		}
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()
	for {
		select {
		case change := <-n.buffer:
			n.deliver(change)
		case <-n.done:
			// Drain remaining buffered changes
			for {
				select {
				case change := <-n.buffer:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}
