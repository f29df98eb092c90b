// Package refs resolves LaTeX label references to their compiled numbers
// by locating, parsing, and merging the auxiliary files a LaTeX build
// leaves behind.
package refs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dshills/texprettify/internal/logging"
	"github.com/dshills/texprettify/internal/project/ignore"
	"github.com/dshills/texprettify/internal/project/vfs"
)

// maxInputDepth bounds how deep \@input chains are followed.
const maxInputDepth = 8

// ErrNoAuxData is recorded when no auxiliary file could be found.
var ErrNoAuxData = errors.New("no auxiliary data found")

// Request describes the document whose references are being resolved.
type Request struct {
	DocumentPath string
	DocumentText string

	// WorkspaceRoot bounds project-wide searches. When empty the root
	// document's directory is used.
	WorkspaceRoot string

	// OutputDirTemplate is the configured build output directory.
	OutputDirTemplate string
}

// Result is an immutable label snapshot. Callers must not modify Labels.
type Result struct {
	Labels map[string]string

	// Root is the detected root document.
	Root string

	// Primary is the aux file that seeded the mapping, empty when none
	// was found.
	Primary string

	// Sources lists every aux file merged, in merge order.
	Sources []string
}

type parsedAux struct {
	modTime time.Time
	file    AuxFile
}

// auxCache is the most recent merged result and the identity of the aux
// file it was built from.
type auxCache struct {
	key     string
	primary string
	modTime time.Time
	result  Result
	stale   bool
}

// Resolver locates and merges auxiliary files. It is safe for concurrent
// use; concurrent requests for the same document share one resolution.
type Resolver struct {
	fs     vfs.FS
	log    *logging.Logger
	ignore *ignore.Matcher
	jobs   int

	parsed *lru.Cache[string, parsedAux]
	flight singleflight.Group

	mu    sync.Mutex
	last  *auxCache
	roots map[string]string // includer found by walking, per document
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithIgnore sets the matcher used to skip directories during
// project-wide searches.
func WithIgnore(m *ignore.Matcher) Option {
	return func(r *Resolver) {
		r.ignore = m
	}
}

// WithJobs bounds how many aux files are parsed concurrently.
func WithJobs(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.jobs = n
		}
	}
}

// New creates a Resolver reading through fsys.
func New(fsys vfs.FS, opts ...Option) *Resolver {
	parsed, err := lru.New[string, parsedAux](256)
	if err != nil {
		panic(fmt.Sprintf("refs: creating aux cache: %v", err))
	}
	r := &Resolver{
		fs:     fsys,
		log:    logging.Nop(),
		ignore: ignore.Default(),
		jobs:   runtime.GOMAXPROCS(0),
		parsed: parsed,
		roots:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the merged label mapping for a document. It never
// fails: when no aux data exists the mapping is empty, and when the
// document's aux file exists but cannot be read, the mapping last built
// from that same file for that same document is returned.
func (r *Resolver) Resolve(ctx context.Context, req Request) Result {
	key := req.DocumentPath + "\x00" + req.WorkspaceRoot + "\x00" + req.OutputDirTemplate
	v, _, _ := r.flight.Do(key, func() (any, error) {
		return r.resolve(ctx, req, key), nil
	})
	return v.(Result)
}

// Invalidate drops any cached data derived from path, typically in
// response to a file watcher event. The next Resolve re-reads.
func (r *Resolver) Invalidate(path string) {
	r.parsed.Remove(filepath.Clean(path))

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last != nil {
		r.last.stale = true
	}
	// Any .tex or aux change may move a document under another root.
	clear(r.roots)
}

// Last returns the most recently resolved snapshot.
func (r *Resolver) Last() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Result{}, false
	}
	return r.last.result, true
}

func (r *Resolver) resolve(ctx context.Context, req Request, key string) Result {
	docPath := filepath.Clean(req.DocumentPath)
	docDir := filepath.Dir(docPath)
	log := r.log.WithField("document", docPath)

	root := r.root(ctx, docPath, req.DocumentText, req.WorkspaceRoot)
	workspace := req.WorkspaceRoot
	if workspace == "" {
		workspace = filepath.Dir(root)
	}

	candidates := Candidates(Locations{
		DocumentPath:      docPath,
		RootPath:          root,
		Directives:        Directives(req.DocumentText),
		OutputDirTemplate: req.OutputDirTemplate,
	})

	primary := ""
	for _, c := range candidates {
		if r.fs.Exists(c) {
			primary = c
			break
		}
	}

	// An unchanged primary skips the workspace walk entirely.
	if primary != "" {
		if info, err := r.fs.Stat(primary); err == nil {
			if cached, ok := r.cached(key, primary, info.ModTime()); ok {
				return cached
			}
		}
	}

	all, err := FindAuxFiles(ctx, r.fs, r.ignore, workspace)
	if err != nil {
		log.Warn("searching aux files: %v", err)
		return r.fallback(key, primary, root)
	}
	SortByDistance(all, docDir)

	if primary == "" {
		for _, p := range all {
			if aux, err := r.load(p); err == nil && len(aux.Labels) > 0 {
				primary = p
				break
			}
		}
	}
	if primary == "" {
		log.Debug("%v", ErrNoAuxData)
		return empty(root)
	}

	info, err := r.fs.Stat(primary)
	if err != nil {
		log.Warn("stat %s: %v", primary, err)
		return empty(root)
	}

	if cached, ok := r.cached(key, primary, info.ModTime()); ok {
		return cached
	}

	result, err := r.merge(ctx, primary, all)
	if err != nil {
		log.Warn("merging aux files: %v", err)
		return r.fallback(key, primary, root)
	}
	result.Root = root

	log.WithFields(map[string]any{"primary": primary, "sources": len(result.Sources)}).
		Debug("resolved %d labels", len(result.Labels))

	r.mu.Lock()
	r.last = &auxCache{key: key, primary: primary, modTime: info.ModTime(), result: result}
	r.mu.Unlock()
	return result
}

func (r *Resolver) cached(key, primary string, modTime time.Time) (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil || r.last.stale || r.last.key != key || r.last.primary != primary || !r.last.modTime.Equal(modTime) {
		return Result{}, false
	}
	return r.last.result, true
}

// root returns the root document of docPath. Roots that need a
// workspace walk are remembered until the next Invalidate.
func (r *Resolver) root(ctx context.Context, docPath, text, workspace string) string {
	if _, ok := magicRoot(text); ok || IsRootDocument(text) || workspace == "" {
		return DetectRoot(ctx, r.fs, r.ignore, docPath, text, workspace)
	}

	k := docPath + "\x00" + workspace
	r.mu.Lock()
	root, ok := r.roots[k]
	r.mu.Unlock()
	if ok {
		return root
	}

	root = DetectRoot(ctx, r.fs, r.ignore, docPath, text, workspace)
	if ctx.Err() == nil {
		r.mu.Lock()
		r.roots[k] = root
		r.mu.Unlock()
	}
	return root
}

// fallback is used when primary exists but could not be merged. Only a
// mapping built for the same request from the same primary is reused.
func (r *Resolver) fallback(key, primary, root string) Result {
	if primary != "" && r.fs.Exists(primary) {
		r.mu.Lock()
		last := r.last
		r.mu.Unlock()
		if last != nil && last.key == key && last.primary == primary {
			return last.result
		}
	}
	return empty(root)
}

func empty(root string) Result {
	return Result{Labels: map[string]string{}, Root: root}
}

// merge builds the label space: the primary file and its inputs first,
// then every other aux file in the given order. A key keeps the first
// value seen. Files are parsed concurrently; merging is sequential so the
// outcome depends only on the order of others.
func (r *Resolver) merge(ctx context.Context, primary string, others []string) (Result, error) {
	order := make([]string, 0, len(others)+1)
	order = append(order, primary)
	for _, p := range others {
		if p != primary {
			order = append(order, p)
		}
	}

	expanded := make([][]namedAux, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)
	for i, p := range order {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			expanded[i] = r.expand(p, 0, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Labels: make(map[string]string), Primary: primary}
	seen := make(map[string]bool)
	for _, files := range expanded {
		for _, f := range files {
			if seen[f.path] {
				continue
			}
			seen[f.path] = true
			res.Sources = append(res.Sources, f.path)
			for k, v := range f.file.Labels {
				if _, ok := res.Labels[k]; !ok {
					res.Labels[k] = v
				}
			}
		}
	}
	return res, nil
}

type namedAux struct {
	path string
	file AuxFile
}

// expand loads path and, depth first, the files it \@inputs.
func (r *Resolver) expand(path string, depth int, visiting map[string]bool) []namedAux {
	if depth > maxInputDepth {
		return nil
	}
	if visiting == nil {
		visiting = make(map[string]bool)
	}
	if visiting[path] {
		return nil
	}
	visiting[path] = true

	aux, err := r.load(path)
	if err != nil {
		r.log.Warn("reading %s: %v", path, err)
		return nil
	}

	out := []namedAux{{path: path, file: aux}}
	for _, in := range aux.Inputs {
		target := in
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		out = append(out, r.expand(filepath.Clean(target), depth+1, visiting)...)
	}
	return out
}

// load returns the parsed aux file, reusing the cached parse when the
// modification time is unchanged.
func (r *Resolver) load(path string) (AuxFile, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return AuxFile{}, err
	}
	if p, ok := r.parsed.Get(path); ok && p.modTime.Equal(info.ModTime()) {
		return p.file, nil
	}

	data, err := r.fs.ReadFile(path)
	if err != nil {
		return AuxFile{}, err
	}
	aux := ParseAux(data)
	r.parsed.Add(path, parsedAux{modTime: info.ModTime(), file: aux})
	return aux, nil
}
