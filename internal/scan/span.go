package scan

import (
	"sort"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Kind tells which pass produced a span.
type Kind uint8

const (
	// KindRule spans come from the generic substitution pass.
	KindRule Kind = iota
	// KindReference spans come from the resolved-number reference pass.
	KindReference
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRule:
		return "rule"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Span is a matched source interval slated for visual replacement.
// Spans are immutable once produced by a scan.
type Span struct {
	// Start and End are byte offsets into the scanned text, [Start, End).
	Start int
	End   int

	// Original is the rule's original token, or the whole matched command
	// for reference spans.
	Original string

	// Display is the text shown in place of the source.
	Display string

	// DisplayLength is the number of code points in the matched source.
	DisplayLength int

	// DisplayWidth is the terminal cell width of the matched source.
	DisplayWidth int

	Kind Kind
}

func newSpan(text string, start, end int, original, display string, kind Kind) Span {
	matched := text[start:end]
	return Span{
		Start:         start,
		End:           end,
		Original:      original,
		Display:       display,
		DisplayLength: utf8.RuneCountInString(matched),
		DisplayWidth:  runewidth.StringWidth(matched),
		Kind:          kind,
	}
}

// Interval returns the source interval of the span.
func (s Span) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// Contains reports whether a caret at offset touches the span. The end
// offset is included so a caret placed right after a token still counts.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// Index is a copy of a scan's spans ordered by start offset, for point
// lookups from hover and caret events.
type Index []Span

// NewIndex builds an index from spans in any order.
func NewIndex(spans []Span) Index {
	idx := make(Index, len(spans))
	copy(idx, spans)
	sort.Slice(idx, func(i, j int) bool { return idx[i].Start < idx[j].Start })
	return idx
}

// Lookup returns the span touching offset. When the offset sits on the
// boundary of two adjacent spans, the span starting there wins.
func (idx Index) Lookup(offset int) (Span, bool) {
	i := sort.Search(len(idx), func(i int) bool { return idx[i].Start > offset })
	// idx[i-1] is the last span starting at or before offset.
	if i > 0 && idx[i-1].Contains(offset) {
		return idx[i-1], true
	}
	return Span{}, false
}
