package config

import (
	"reflect"
	"strings"
	"sync"

	"github.com/dshills/texprettify/internal/config/loader"
	"github.com/dshills/texprettify/internal/config/notify"
	"github.com/dshills/texprettify/internal/logging"
	"github.com/dshills/texprettify/internal/project/vfs"
)

// Store holds the current settings and notifies subscribers when they
// change. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sources  Sources
	log      *logging.Logger
	notifier *notify.Notifier
	current  Settings
	loaded   bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for validation warnings.
func WithLogger(l *logging.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithEnv replaces the environment source. Nil disables environment
// overrides.
func WithEnv(env *loader.EnvLoader) StoreOption {
	return func(s *Store) {
		s.sources.Env = env
	}
}

// NewStore creates a store for the settings file at path. An empty path
// means defaults plus environment only. The store holds defaults until
// Load is called.
func NewStore(fsys vfs.FS, path string, opts ...StoreOption) *Store {
	s := &Store{
		sources:  NewSources(fsys, path),
		log:      logging.Nop(),
		notifier: notify.New(),
		current:  Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.sources.File.Path()
}

// Load reads the settings. On error the store keeps its current settings.
func (s *Store) Load() error {
	settings, warnings, err := Load(s.sources)
	if err != nil {
		return err
	}
	s.logWarnings(warnings)

	s.mu.Lock()
	s.current = settings
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Reload re-reads the settings and notifies subscribers of changed keys.
// A file that fails to parse leaves the previous settings in place.
func (s *Store) Reload() error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		return ErrNotLoaded
	}

	settings, warnings, err := Load(s.sources)
	if err != nil {
		s.log.Warn("reload failed, keeping previous settings: %v", err)
		return err
	}
	s.logWarnings(warnings)
	s.replace(settings, notify.ChangeReload, s.Path())
	return nil
}

// Set validates and installs settings, notifying subscribers.
func (s *Store) Set(settings Settings) []string {
	settings, warnings := Validate(settings.Clone())
	s.logWarnings(warnings)
	s.replace(settings, notify.ChangeSet, "set")
	return warnings
}

func (s *Store) replace(settings Settings, typ notify.ChangeType, source string) {
	s.mu.Lock()
	old := s.current
	s.current = settings
	s.mu.Unlock()

	s.notifier.Notify(notify.Change{
		Type:   typ,
		Keys:   Changed(old, settings),
		Old:    old.Clone(),
		New:    settings.Clone(),
		Source: source,
	})
}

func (s *Store) logWarnings(warnings []string) {
	for _, w := range warnings {
		s.log.Warn("%s", w)
	}
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Subscribe registers an observer for every change.
func (s *Store) Subscribe(observer notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(observer)
}

// SubscribeKeys registers an observer for changes touching keys.
func (s *Store) SubscribeKeys(observer notify.Observer, keys ...string) *notify.Subscription {
	return s.notifier.SubscribeKeys(observer, keys...)
}

// Close stops change delivery.
func (s *Store) Close() {
	s.notifier.Close()
}

// Changed lists the setting keys whose values differ between a and b.
func Changed(a, b Settings) []string {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	t := va.Type()
	var out []string
	for i := range t.NumField() {
		key, _, _ := strings.Cut(t.Field(i).Tag.Get("toml"), ",")
		if key == "" || key == "-" {
			continue
		}
		if !reflect.DeepEqual(va.Field(i).Interface(), vb.Field(i).Interface()) {
			out = append(out, key)
		}
	}
	return out
}
