package engine

import (
	"github.com/dshills/texprettify/internal/config"
	"github.com/dshills/texprettify/internal/textdoc"
)

// Document is the host's view of an open text document.
type Document interface {
	URI() string
	LanguageID() string

	// Path is the file system path, empty for unsaved documents.
	Path() string

	Version() int
	Text() string
	PositionAt(offset int) textdoc.Position
	OffsetAt(pos textdoc.Position) int
}

// Renderer displays decorations. Each call replaces every decoration
// previously applied to uri; an empty slice clears them.
type Renderer interface {
	Apply(uri string, decorations []Decoration)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(uri string, decorations []Decoration)

// Apply calls f.
func (f RendererFunc) Apply(uri string, decorations []Decoration) {
	f(uri, decorations)
}

// DecorationKind tells a renderer how to draw a decoration.
type DecorationKind uint8

const (
	// DecorationGhost hides the source range and shows Display in its
	// place.
	DecorationGhost DecorationKind = iota

	// DecorationHighlight leaves the source visible and marks it with
	// Style and Color.
	DecorationHighlight
)

// String returns the kind name.
func (k DecorationKind) String() string {
	if k == DecorationHighlight {
		return "highlight"
	}
	return "ghost"
}

// Decoration is one visual replacement or highlight.
type Decoration struct {
	Kind DecorationKind

	// Range and the byte offsets Start, End locate the source text.
	Range textdoc.Range
	Start int
	End   int

	Original string
	Display  string

	// Reference is set for resolved \ref and \eqref numbers.
	Reference bool

	// Length is the code point count and Width the terminal cell width
	// of the source text.
	Length int
	Width  int

	// GlyphWidth is the cell width of Display, counted per grapheme
	// cluster. A renderer pads with Width-GlyphWidth cells to keep
	// columns aligned.
	GlyphWidth int

	// Style and Color apply to highlight decorations.
	Style config.HighlightStyle
	Color string
}

// HoverInfo describes the span under the pointer.
type HoverInfo struct {
	Original string
	Display  string
	Range    textdoc.Range
}

// isTeX reports whether documents of languageID are prettified.
func isTeX(languageID string) bool {
	return languageID == textdoc.LanguageLaTeX || languageID == textdoc.LanguageTeX
}
