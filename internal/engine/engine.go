package engine

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dshills/texprettify/internal/config"
	"github.com/dshills/texprettify/internal/logging"
	"github.com/dshills/texprettify/internal/project/vfs"
	"github.com/dshills/texprettify/internal/refs"
	"github.com/dshills/texprettify/internal/reveal"
	"github.com/dshills/texprettify/internal/scan"
	"github.com/dshills/texprettify/internal/session"
)

// Errors returned by engine operations.
var (
	// ErrClosed indicates the engine was closed.
	ErrClosed = errors.New("engine is closed")

	// ErrUnknownDocument indicates the URI was never opened.
	ErrUnknownDocument = errors.New("unknown document")
)

// Engine is the prettifier's context object. It owns the per-document
// sessions, the reveal state, and the reference resolver.
type Engine struct {
	log       *logging.Logger
	fs        vfs.FS
	clock     reveal.Clock
	workspace string
	renderer  Renderer

	scanner  *scan.Scanner
	resolver *refs.Resolver
	holder   *reveal.Holder
	sessions *session.Store
	debounce *debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	settings config.Settings
	docs     map[string]Document
	active   string
	closed   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithFS sets the file system aux files are read from.
func WithFS(fsys vfs.FS) Option {
	return func(e *Engine) {
		if fsys != nil {
			e.fs = fsys
		}
	}
}

// WithClock replaces the timer source for debouncing and reveal holds.
func WithClock(c reveal.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithWorkspace sets the directory searched for aux files and root
// documents.
func WithWorkspace(dir string) Option {
	return func(e *Engine) {
		e.workspace = dir
	}
}

// WithSettings sets the initial settings. They are validated.
func WithSettings(s config.Settings) Option {
	return func(e *Engine) {
		e.settings, _ = config.Validate(s.Clone())
	}
}

// New creates an Engine rendering through r.
func New(r Renderer, opts ...Option) *Engine {
	e := &Engine{
		log:      logging.Nop(),
		fs:       &vfs.OSFS{},
		clock:    reveal.DefaultClock(),
		renderer: r,
		settings: config.Defaults(),
		sessions: session.NewStore(),
		docs:     make(map[string]Document),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("engine")
	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.scanner = scan.New(scan.WithLogger(e.log.WithComponent("scan")))
	e.resolver = refs.New(e.fs, refs.WithLogger(e.log.WithComponent("refs")))
	e.holder = reveal.New(
		reveal.WithClock(e.clock),
		reveal.WithHold(e.settings.HoldDuration()),
		reveal.WithOnChange(e.render),
	)
	e.debounce = newDebouncer(e.clock, e.settings.Debounce(), e.recompute)
	return e
}

// Settings returns the settings in effect.
func (e *Engine) Settings() config.Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings.Clone()
}

// Session returns the latest session of uri.
func (e *Engine) Session(uri string) (*session.Session, bool) {
	return e.sessions.Get(uri)
}

// OpenDocument starts tracking doc and schedules its first recompute.
func (e *Engine) OpenDocument(doc Document) {
	if !e.track(doc) {
		return
	}
	e.debounce.Call(doc.URI())
}

// CloseDocument stops tracking uri and discards its session and reveal
// state.
func (e *Engine) CloseDocument(uri string) {
	e.mu.Lock()
	delete(e.docs, uri)
	if e.active == uri {
		e.active = ""
	}
	e.mu.Unlock()

	e.debounce.Cancel(uri)
	e.holder.Clear(uri)
	e.sessions.Delete(uri)
}

// OnDocumentChanged schedules a recompute after an edit.
func (e *Engine) OnDocumentChanged(doc Document) {
	e.OpenDocument(doc)
}

// OnActiveEditorChanged makes doc the active document and schedules a
// recompute. A nil doc means no editor is active.
func (e *Engine) OnActiveEditorChanged(doc Document) {
	if doc == nil {
		e.mu.Lock()
		e.active = ""
		e.mu.Unlock()
		return
	}
	if !e.track(doc) {
		return
	}
	e.mu.Lock()
	e.active = doc.URI()
	e.mu.Unlock()
	e.debounce.Call(doc.URI())
}

// Active returns the URI of the active document.
func (e *Engine) Active() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// OnConfigChanged installs new settings and recomputes every document.
func (e *Engine) OnConfigChanged(s config.Settings) {
	s, warnings := config.Validate(s.Clone())
	for _, w := range warnings {
		e.log.Warn("%s", w)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.settings = s
	e.mu.Unlock()

	e.holder.SetHold(s.HoldDuration())
	e.debounce.SetDelay(s.Debounce())
	e.Invalidate()
}

// OnAuxFileChanged drops cached label data read from path and, when
// references render as numbers, recomputes every document.
func (e *Engine) OnAuxFileChanged(path string) {
	e.resolver.Invalidate(path)
	if e.Settings().ResolveReferences() {
		e.Invalidate()
	}
}

// OnSourceFileChanged reacts to a .tex file other than an open document
// changing on disk. Such a change can move a document under a different
// root, so cached roots are dropped.
func (e *Engine) OnSourceFileChanged(path string) {
	e.OnAuxFileChanged(path)
}

// Invalidate schedules a recompute of every open document.
func (e *Engine) Invalidate() {
	for _, uri := range e.uris() {
		e.debounce.Call(uri)
	}
}

// Flush runs every scheduled recompute now.
func (e *Engine) Flush() {
	e.debounce.Flush()
}

// Close cancels pending work. Later events are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.debounce.Close()
	e.holder.Close()
	e.sessions.Clear()
}

// Update recomputes uri immediately, replacing any scheduled recompute.
func (e *Engine) Update(ctx context.Context, uri string) error {
	e.debounce.Cancel(uri)
	return e.run(ctx, uri)
}

func (e *Engine) run(ctx context.Context, uri string) error {
	e.mu.RLock()
	closed := e.closed
	doc, ok := e.docs[uri]
	settings := e.settings
	e.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if !ok {
		return ErrUnknownDocument
	}
	return e.update(ctx, doc, settings)
}

// ResolveLabels returns the label mapping for uri regardless of the
// reference setting.
func (e *Engine) ResolveLabels(ctx context.Context, uri string) (refs.Result, error) {
	e.mu.RLock()
	doc, ok := e.docs[uri]
	settings := e.settings
	e.mu.RUnlock()
	if !ok {
		return refs.Result{}, ErrUnknownDocument
	}
	return e.resolve(ctx, doc, settings), nil
}

func (e *Engine) track(doc Document) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.docs[doc.URI()] = doc
	return true
}

func (e *Engine) uris() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.docs))
	for uri := range e.docs {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// recompute is the debounced entry point.
func (e *Engine) recompute(uri string) {
	err := e.run(e.ctx, uri)
	switch {
	case err == nil, errors.Is(err, ErrUnknownDocument), errors.Is(err, ErrClosed), errors.Is(err, context.Canceled):
	default:
		e.log.Warn("recompute %s: %v", uri, err)
	}
}

func (e *Engine) update(ctx context.Context, doc Document, settings config.Settings) error {
	uri := doc.URI()
	log := e.log.WithField("uri", uri)

	if !isTeX(doc.LanguageID()) {
		e.sessions.Delete(uri)
		e.renderer.Apply(uri, nil)
		return nil
	}

	active := settings.ActiveRules()
	if len(active) == 0 {
		e.sessions.Delete(uri)
		e.renderer.Apply(uri, nil)
		return nil
	}

	// Phase 1: label snapshot.
	var labels map[string]string
	if settings.ResolveReferences() {
		labels = e.resolve(ctx, doc, settings).Labels
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Phase 2: scan the text as it is now.
	version := doc.Version()
	res := e.scanner.Scan(scan.Request{
		Text:          doc.Text(),
		Rules:         active,
		ReferenceMode: settings.ResolveReferences(),
		Labels:        labels,
	})
	s := session.New(uri, version, res, labels)

	// A document closed while resolving keeps no session.
	e.mu.RLock()
	_, open := e.docs[uri]
	e.mu.RUnlock()
	if !open {
		return nil
	}
	e.sessions.Put(s)

	log.WithFields(map[string]any{"pass": s.PassID, "version": version}).
		Debug("scanned %d spans", len(s.Spans))

	e.render(uri)
	return nil
}

func (e *Engine) resolve(ctx context.Context, doc Document, settings config.Settings) refs.Result {
	if doc.Path() == "" {
		return refs.Result{Labels: map[string]string{}}
	}
	return e.resolver.Resolve(ctx, refs.Request{
		DocumentPath:      doc.Path(),
		DocumentText:      doc.Text(),
		WorkspaceRoot:     e.workspace,
		OutputDirTemplate: settings.AuxOutputDir,
	})
}
