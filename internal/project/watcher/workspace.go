package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/texprettify/internal/logging"
)

// Kind classifies a changed file.
type Kind int

const (
	// KindOther is a file the prettifier does not care about.
	KindOther Kind = iota
	// KindAux is a LaTeX auxiliary file.
	KindAux
	// KindConfig is the settings file.
	KindConfig
	// KindSource is a TeX source file.
	KindSource
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAux:
		return "aux"
	case KindConfig:
		return "config"
	case KindSource:
		return "source"
	default:
		return "other"
	}
}

// Classify returns the kind of path given the settings file location.
func Classify(path, configPath string) Kind {
	if configPath != "" && filepath.Clean(path) == filepath.Clean(configPath) {
		return KindConfig
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".aux":
		return KindAux
	case ".tex", ".ltx", ".latex":
		return KindSource
	default:
		return KindOther
	}
}

// Handlers receive classified workspace events. Nil handlers are
// skipped.
type Handlers struct {
	OnAux    func(path string, op Op)
	OnConfig func(path string, op Op)
	OnSource func(path string, op Op)
	OnError  func(err error)
}

// Workspace watches a project directory for auxiliary, settings, and
// source file changes.
type Workspace struct {
	root       string
	configPath string
	w          Watcher
	log        *logging.Logger
}

// NewWorkspace watches root recursively, plus the directory of
// configPath when it lies outside root. Events are debounced by delay.
func NewWorkspace(root, configPath string, delay time.Duration, log *logging.Logger, opts ...WatcherOption) (*Workspace, error) {
	if log == nil {
		log = logging.Nop()
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if configPath, err = filepath.Abs(configPath); err != nil {
			return nil, err
		}
	}

	relevant := func(e Event) bool { return Classify(e.Path, configPath) != KindOther }
	inner, err := NewFSNotifyWatcher(append(opts, WithEventFilter(relevant))...)
	if err != nil {
		return nil, err
	}
	dw := NewDebouncedWatcher(inner, delay)

	if err := dw.WatchRecursive(root); err != nil {
		dw.Close()
		return nil, err
	}
	if configPath != "" && !within(root, configPath) {
		// The file may not exist yet; its directory must.
		if err := dw.Watch(filepath.Dir(configPath)); err != nil && err != ErrAlreadyWatching {
			log.Warn("not watching settings file %s: %v", configPath, err)
		}
	}

	return NewWorkspaceFrom(dw, root, configPath, log), nil
}

// NewWorkspaceFrom wraps an existing watcher.
func NewWorkspaceFrom(w Watcher, root, configPath string, log *logging.Logger) *Workspace {
	if log == nil {
		log = logging.Nop()
	}
	return &Workspace{root: root, configPath: configPath, w: w, log: log}
}

// Root returns the watched project directory.
func (ws *Workspace) Root() string {
	return ws.root
}

// Run routes events to h until ctx is cancelled or the watcher closes.
func (ws *Workspace) Run(ctx context.Context, h Handlers) {
	Run(ctx, ws.w, func(e Event) {
		kind := Classify(e.Path, ws.configPath)
		ws.log.Debug("%s %s %s", kind, e.Op, e.Path)
		switch kind {
		case KindAux:
			if h.OnAux != nil {
				h.OnAux(e.Path, e.Op)
			}
		case KindConfig:
			if h.OnConfig != nil {
				h.OnConfig(e.Path, e.Op)
			}
		case KindSource:
			if h.OnSource != nil {
				h.OnSource(e.Path, e.Op)
			}
		}
	}, func(err error) {
		ws.log.Warn("watch error: %v", err)
		if h.OnError != nil {
			h.OnError(err)
		}
	})
}

// Stats returns watcher statistics.
func (ws *Workspace) Stats() Stats {
	return ws.w.Stats()
}

// Close stops watching.
func (ws *Workspace) Close() error {
	return ws.w.Close()
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
