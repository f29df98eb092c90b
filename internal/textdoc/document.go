// Package textdoc provides an in-memory text document with conversion
// between byte offsets and line/column positions.
package textdoc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Language identifiers.
const (
	LanguageLaTeX     = "latex"
	LanguageTeX       = "tex"
	LanguagePlainText = "plaintext"
)

// LanguageForPath guesses a language identifier from a file extension.
func LanguageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tex", ".ltx", ".latex", ".sty", ".cls":
		return LanguageLaTeX
	case ".dtx", ".ins":
		return LanguageTeX
	default:
		return LanguagePlainText
	}
}

// URIForPath returns the file URI of path.
func URIForPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

// Document is a text buffer identified by URI. Every SetText bumps the
// version. Document is safe for concurrent use.
type Document struct {
	uri        string
	path       string
	languageID string

	mu      sync.RWMutex
	version int
	text    string
	lines   lineIndex
}

// New creates a document at version 1.
func New(uri, path, languageID, text string) *Document {
	return &Document{
		uri:        uri,
		path:       path,
		languageID: languageID,
		version:    1,
		text:       text,
		lines:      buildLineIndex(text),
	}
}

// Open reads a document from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return New(URIForPath(path), path, LanguageForPath(path), string(data)), nil
}

// URI returns the document identifier.
func (d *Document) URI() string { return d.uri }

// Path returns the file system path, empty for untitled documents.
func (d *Document) Path() string { return d.path }

// LanguageID returns the language identifier.
func (d *Document) LanguageID() string { return d.languageID }

// Version returns the current version.
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Text returns the full content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// SetText replaces the content and returns the new version.
func (d *Document) SetText(text string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	d.lines = buildLineIndex(text)
	d.version++
	return d.version
}

// PositionAt converts a byte offset to a position. Offsets outside the
// text are clamped.
func (d *Document) PositionAt(offset int) Position {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return positionAt(d.text, d.lines, offset)
}

// OffsetAt converts a position to a byte offset. Positions past the end of
// a line are clamped to the line end.
func (d *Document) OffsetAt(pos Position) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return offsetAt(d.text, d.lines, pos)
}

// RangeOf converts a byte interval to a range.
func (d *Document) RangeOf(start, end int) Range {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Range{
		Start: positionAt(d.text, d.lines, start),
		End:   positionAt(d.text, d.lines, end),
	}
}

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// Line returns the content of line n without its newline.
func (d *Document) Line(n int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n < 0 || n >= len(d.lines) {
		return ""
	}
	start, end := d.lines.bounds(d.text, n)
	return d.text[start:end]
}
