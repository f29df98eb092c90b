// Package ignore matches workspace paths against gitignore-style patterns
// so project-wide searches skip version control, dependency, and build
// directories.
//
// Supported syntax:
//   - *.log             match a base name anywhere
//   - /build/           match a directory at the workspace root only
//   - **/node_modules/  match a directory at any depth
//   - !keep.aux         re-include a previously ignored path
package ignore

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultPatterns are the directories never worth searching for compiler
// output.
var DefaultPatterns = []string{
	".git/",
	".svn/",
	".hg/",
	"node_modules/",
	"vendor/",
	".venv/",
	"build/",
	"dist/",
	"out/",
	"target/",
	".idea/",
	".vscode/",
	"_minted-*/",
}

type pattern struct {
	glob     string
	negation bool
	dirOnly  bool
	rooted   bool
}

// Matcher holds an ordered list of patterns. Later patterns override
// earlier ones, as in gitignore. A Matcher is immutable after
// construction and safe for concurrent use.
type Matcher struct {
	patterns []pattern
}

// New compiles patterns. Blank lines and lines starting with # are
// skipped.
func New(patterns ...string) *Matcher {
	m := &Matcher{}
	for _, raw := range patterns {
		raw = strings.TrimRight(raw, " \t")
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		var p pattern
		if rest, ok := strings.CutPrefix(raw, "!"); ok {
			p.negation = true
			raw = rest
		}
		if rest, ok := strings.CutSuffix(raw, "/"); ok {
			p.dirOnly = true
			raw = rest
		}
		if rest, ok := strings.CutPrefix(raw, "**/"); ok {
			raw = rest
		} else if rest, ok := strings.CutPrefix(raw, "/"); ok {
			p.rooted = true
			raw = rest
		}
		p.glob = raw
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Default returns a matcher over DefaultPatterns.
func Default() *Matcher {
	return New(DefaultPatterns...)
}

// Match reports whether rel, a path relative to the workspace root, is
// ignored.
func (m *Matcher) Match(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return false
	}

	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.matches(rel) {
			ignored = !p.negation
		}
	}
	return ignored
}

// MatchUnder is Match for an absolute path under root.
func (m *Matcher) MatchUnder(root, abs string, isDir bool) bool {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return m.Match(rel, isDir)
}

func (p pattern) matches(rel string) bool {
	if p.rooted || strings.Contains(p.glob, "/") {
		ok, _ := path.Match(p.glob, rel)
		return ok
	}
	ok, _ := path.Match(p.glob, path.Base(rel))
	return ok
}
