// Package scan implements the substitution scanner: longest-match-first
// tokenization over compiled rule patterns with non-overlapping occupancy
// tracking, and the reference pass that renders \ref and \eqref as their
// compiled numbers.
package scan

import (
	"sync"

	"github.com/dshills/texprettify/internal/logging"
	"github.com/dshills/texprettify/internal/rules"
)

// Request is the input of one scan pass.
type Request struct {
	Text  string
	Rules []rules.Rule

	// ReferenceMode enables the resolved-number pass for \ref and \eqref.
	ReferenceMode bool

	// Labels maps label keys to rendered numbers. Only read when
	// ReferenceMode is set; treated as read-only.
	Labels map[string]string
}

// Result holds the spans of one pass in emission order plus the same spans
// indexed by position.
type Result struct {
	Spans []Span
	Index Index
}

// Scanner applies rules to document text. Compiled patterns are cached by
// original so repeated passes do not recompile. A Scanner is safe for
// concurrent use.
type Scanner struct {
	log *logging.Logger

	mu       sync.Mutex
	patterns map[string]*rules.Pattern
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for dropped rules and unresolved
// references.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		log:      logging.Nop(),
		patterns: make(map[string]*rules.Pattern),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs one pass. Rules are applied longest original first; an
// occurrence is accepted only if its source interval is free, so spans
// accepted earlier are never displaced.
func (s *Scanner) Scan(req Request) Result {
	var (
		occ   Occupancy
		spans []Span
	)

	if req.ReferenceMode {
		spans = s.scanReferences(req.Text, req.Labels, &occ)
	}

	for _, r := range rules.ByPriority(req.Rules) {
		if req.ReferenceMode && r.IsReference() {
			continue
		}
		p := s.pattern(r)
		if p == nil {
			continue
		}
		for _, m := range p.FindAll(req.Text) {
			if !occ.TryClaim(Interval{Start: m[0], End: m[1]}) {
				continue
			}
			spans = append(spans, newSpan(req.Text, m[0], m[1], r.Original, r.Display, KindRule))
		}
	}

	return Result{Spans: spans, Index: NewIndex(spans)}
}

func (s *Scanner) pattern(r rules.Rule) *rules.Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Patterns depend only on the original; a nil entry marks a rule
	// that failed to compile.
	if p, ok := s.patterns[r.Original]; ok {
		return p
	}

	p, err := rules.Compile(r)
	if err != nil {
		s.log.Warn("dropping rule %q: %v", r.Original, err)
		s.patterns[r.Original] = nil
		return nil
	}
	s.patterns[r.Original] = p
	return p
}
