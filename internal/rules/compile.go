package rules

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Pattern is a compiled rule.
type Pattern struct {
	Rule Rule
	// Anchored is true when both ends carry word boundaries.
	Anchored bool

	re *regexp.Regexp
}

// Compile builds the pattern for a rule.
//
// Originals that do not start with the escape marker and whose first and
// last characters are word characters are anchored with \b on both sides,
// so "x" never matches inside "xx". Everything else is matched literally.
// Go regular expressions are always UTF-8 aware and accept an escaped
// leading backslash, so escape-initial tokens need no special mode.
func Compile(r Rule) (*Pattern, error) {
	if r.Original == "" {
		return nil, ErrEmptyOriginal
	}

	anchored := useWordBoundary(r.Original)
	expr := regexp.QuoteMeta(r.Original)
	if anchored {
		expr = `\b` + expr + `\b`
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling rule %q: %w", r.Original, err)
	}
	return &Pattern{Rule: r, Anchored: anchored, re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(r Rule) *Pattern {
	p, err := Compile(r)
	if err != nil {
		panic(err)
	}
	return p
}

// FindAll returns the byte offsets [start, end) of every non-overlapping
// occurrence in text, left to right.
func (p *Pattern) FindAll(text string) [][]int {
	return p.re.FindAllStringIndex(text, -1)
}

// String returns the underlying expression.
func (p *Pattern) String() string {
	return p.re.String()
}

func useWordBoundary(original string) bool {
	if original[0] == EscapeMarker[0] {
		return false
	}
	first, _ := utf8.DecodeRuneInString(original)
	last, _ := utf8.DecodeLastRuneInString(original)
	return isWordRune(first) && isWordRune(last)
}

// isWordRune matches the ASCII \w class, which is also what \b tests.
func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
