// Package session keeps the most recent scan result for each open
// document.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/texprettify/internal/scan"
)

// Session is the state derived from one scan of a document. A Session is
// replaced wholesale on every recompute and never modified in place.
type Session struct {
	URI string

	// Spans in emission order and the same spans ordered by position.
	Spans []scan.Span
	Index scan.Index

	// PassID identifies the scan that produced this session.
	PassID uuid.UUID

	// Version is the document version that was scanned.
	Version int

	// Labels is the label snapshot the scan used, nil when references
	// were not resolved.
	Labels map[string]string

	CreatedAt time.Time
}

// New builds a session from a scan result.
func New(uri string, version int, res scan.Result, labels map[string]string) *Session {
	return &Session{
		URI:       uri,
		Spans:     res.Spans,
		Index:     res.Index,
		PassID:    uuid.New(),
		Version:   version,
		Labels:    labels,
		CreatedAt: time.Now(),
	}
}

// Lookup returns the span touching offset.
func (s *Session) Lookup(offset int) (scan.Span, bool) {
	if s == nil {
		return scan.Span{}, false
	}
	return s.Index.Lookup(offset)
}

// Store maps document URIs to their latest session. Writes are
// last-writer-wins. Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Put replaces the session for s.URI.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.URI] = s
}

// Get returns the session for uri.
func (st *Store) Get(uri string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[uri]
	return s, ok
}

// Delete drops the session for uri.
func (st *Store) Delete(uri string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, uri)
}

// Lookup returns the span of uri's session touching offset.
func (st *Store) Lookup(uri string, offset int) (scan.Span, bool) {
	s, ok := st.Get(uri)
	if !ok {
		return scan.Span{}, false
	}
	return s.Lookup(offset)
}

// URIs returns the URIs with a session, sorted.
func (st *Store) URIs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]string, 0, len(st.sessions))
	for uri := range st.sessions {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Clear drops every session.
func (st *Store) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	clear(st.sessions)
}
