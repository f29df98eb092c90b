// Package rules defines substitution rules, their grouping, and the pattern
// compiler that turns a rule into a matchable regular expression.
package rules

import (
	"errors"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// EscapeMarker is the leading character of TeX control sequences.
const EscapeMarker = `\`

// Reference command originals handled by the resolved-number pass.
const (
	RefCommand   = `\ref`
	EqrefCommand = `\eqref`
)

// ErrEmptyOriginal is returned when a rule has nothing to match.
var ErrEmptyOriginal = errors.New("rule original is empty")

// Rule maps a literal source token to the text displayed in its place.
type Rule struct {
	Original string `yaml:"original" toml:"original" json:"original"`
	Display  string `yaml:"display" toml:"display" json:"display"`
}

// IsEscaped reports whether the original begins with the escape marker.
func (r Rule) IsEscaped() bool {
	return len(r.Original) > 0 && r.Original[0] == EscapeMarker[0]
}

// IsReference reports whether the rule is one of the reference commands
// replaced by the resolved-number pass.
func (r Rule) IsReference() bool {
	return r.Original == RefCommand || r.Original == EqrefCommand
}

// Normalized returns the rule with its display text in NFC form.
func (r Rule) Normalized() Rule {
	r.Display = norm.NFC.String(r.Display)
	return r
}

// Group identifies a configurable family of rules.
type Group uint8

const (
	// GroupSymbols holds operator and punctuation glyphs such as "<=".
	GroupSymbols Group = iota
	// GroupMath holds math-mode control sequences such as \alpha.
	GroupMath
	// GroupTex holds text-mode and structural commands such as \ref.
	GroupTex
)

// String returns the configuration name of the group.
func (g Group) String() string {
	switch g {
	case GroupSymbols:
		return "symbols"
	case GroupMath:
		return "math_commands"
	case GroupTex:
		return "tex_commands"
	default:
		return "unknown"
	}
}

// Set is the full rule table, one list per group.
type Set struct {
	Symbols      []Rule `yaml:"symbols" toml:"symbols"`
	MathCommands []Rule `yaml:"math_commands" toml:"math_commands"`
	TexCommands  []Rule `yaml:"tex_commands" toml:"tex_commands"`
}

// Group returns the rules of one group.
func (s Set) Group(g Group) []Rule {
	switch g {
	case GroupSymbols:
		return s.Symbols
	case GroupMath:
		return s.MathCommands
	case GroupTex:
		return s.TexCommands
	default:
		return nil
	}
}

// Len returns the total number of rules.
func (s Set) Len() int {
	return len(s.Symbols) + len(s.MathCommands) + len(s.TexCommands)
}

// WithFallback returns a set where every empty group is taken from def.
func (s Set) WithFallback(def Set) Set {
	if len(s.Symbols) == 0 {
		s.Symbols = def.Symbols
	}
	if len(s.MathCommands) == 0 {
		s.MathCommands = def.MathCommands
	}
	if len(s.TexCommands) == 0 {
		s.TexCommands = def.TexCommands
	}
	return s
}

// Active concatenates the enabled groups in group order.
func (s Set) Active(symbols, math, tex bool) []Rule {
	var out []Rule
	if symbols {
		out = append(out, s.Symbols...)
	}
	if math {
		out = append(out, s.MathCommands...)
	}
	if tex {
		out = append(out, s.TexCommands...)
	}
	return out
}

// ByPriority returns a copy of rules ordered longest original first.
// Rules of equal length keep their relative order.
func ByPriority(rs []Rule) []Rule {
	out := make([]Rule, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i].Original) > utf8.RuneCountInString(out[j].Original)
	})
	return out
}
