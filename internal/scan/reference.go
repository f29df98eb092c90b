package scan

import (
	"regexp"
	"strings"
)

// Unresolved is shown for members of a label list that did not resolve
// while at least one other member did.
const Unresolved = "??"

var referenceRe = regexp.MustCompile(`\\(eqref|ref)\{([^{}]*)\}`)

// scanReferences renders \ref{...} and \eqref{...} whose labels resolve,
// claiming their intervals before any generic rule runs. Occurrences where
// no label resolves emit no span but are still claimed, so they show as
// typed.
func (s *Scanner) scanReferences(text string, labels map[string]string, occ *Occupancy) []Span {
	var spans []Span
	for _, m := range referenceRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		command := text[m[2]:m[3]]
		keys := SplitLabels(text[m[4]:m[5]])

		rendered, ok := renderNumbers(keys, labels)
		if !ok {
			s.log.Debug("unresolved reference %s", text[start:end])
			occ.TryClaim(Interval{Start: start, End: end})
			continue
		}
		if command == "eqref" {
			rendered = "(" + rendered + ")"
		}

		if !occ.TryClaim(Interval{Start: start, End: end}) {
			continue
		}
		spans = append(spans, newSpan(text, start, end, text[start:end], rendered, KindReference))
	}
	return spans
}

// SplitLabels splits a reference argument on commas and semicolons,
// trimming whitespace and dropping empty members.
func SplitLabels(arg string) []string {
	fields := strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ';' })
	keys := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			keys = append(keys, f)
		}
	}
	return keys
}

// renderNumbers joins the numbers for keys. It reports false when none of
// the keys resolve.
func renderNumbers(keys []string, labels map[string]string) (string, bool) {
	parts := make([]string, 0, len(keys))
	resolved := 0
	for _, k := range keys {
		if n, ok := labels[k]; ok {
			parts = append(parts, n)
			resolved++
			continue
		}
		parts = append(parts, Unresolved)
	}
	if resolved == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}
