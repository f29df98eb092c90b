// Package watcher reports file system changes that affect prettified
// documents: LaTeX auxiliary files written by a build, the settings file,
// and the source documents themselves.
//
// Events from fsnotify are filtered through the project ignore rules and
// can be coalesced per path with a DebouncedWatcher. Workspace ties the
// pieces together and routes events to typed handlers.
package watcher

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
	ErrWatchLimit      = errors.New("maximum watch limit reached")
)

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file or directory was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
	// OpChmod indicates file permissions were changed.
	OpChmod
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpCreate, "CREATE"},
	{OpWrite, "WRITE"},
	{OpRemove, "REMOVE"},
	{OpRename, "RENAME"},
	{OpChmod, "CHMOD"},
}

// String returns the operation names joined by "|".
func (op Op) String() string {
	var parts []string
	for _, n := range opNames {
		if op.Has(n.op) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event represents a file system change event.
type Event struct {
	// Path is the absolute path of the affected file or directory.
	Path string

	// Op is the operation that occurred. Debounced events may combine
	// several operations.
	Op Op

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Stats provides watcher status information.
type Stats struct {
	WatchedPaths  int
	PendingEvents int
	TotalEvents   int64
	Errors        int64
	LastError     error
	StartTime     time.Time
}

// Watcher monitors file system changes.
type Watcher interface {
	// Watch starts watching a directory and its immediate children.
	Watch(path string) error

	// WatchRecursive starts watching a directory and every
	// non-ignored subdirectory.
	WatchRecursive(path string) error

	// Unwatch stops watching a path.
	Unwatch(path string) error

	// Events returns the channel of file change events.
	// The channel is closed when the watcher is closed.
	Events() <-chan Event

	// Errors returns the channel of watcher errors.
	// The channel is closed when the watcher is closed.
	Errors() <-chan error

	// Close stops the watcher and releases resources.
	Close() error

	// Stats returns watcher statistics.
	Stats() Stats
}

// EventFilter reports whether an event should be delivered.
type EventFilter func(event Event) bool

// Config holds watcher configuration options.
type Config struct {
	// BufferSize is the size of the event and error channels.
	// Default: 100
	BufferSize int

	// IgnorePatterns are gitignore-style patterns added to the project
	// defaults.
	IgnorePatterns []string

	// MaxWatches is the maximum number of directories to watch.
	// 0 means unlimited.
	MaxWatches int

	// EventFilter is an optional filter for events.
	EventFilter EventFilter
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{BufferSize: 100}
}

// WatcherOption configures a watcher.
type WatcherOption func(*Config)

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) WatcherOption {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// WithIgnorePatterns adds ignore patterns.
func WithIgnorePatterns(patterns ...string) WatcherOption {
	return func(c *Config) {
		c.IgnorePatterns = append(c.IgnorePatterns, patterns...)
	}
}

// WithMaxWatches sets the maximum number of watches.
func WithMaxWatches(n int) WatcherOption {
	return func(c *Config) {
		c.MaxWatches = n
	}
}

// WithEventFilter sets the event filter.
func WithEventFilter(filter EventFilter) WatcherOption {
	return func(c *Config) {
		c.EventFilter = filter
	}
}

// Run delivers events and errors from w to the handlers until ctx is
// cancelled or w is closed. Either handler may be nil.
func Run(ctx context.Context, w Watcher, onEvent func(Event), onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events():
			if !ok {
				return
			}
			if onEvent != nil {
				onEvent(event)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
