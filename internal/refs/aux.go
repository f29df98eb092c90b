package refs

import (
	"bytes"
	"regexp"
	"strings"
)

const newlabelMarker = `\newlabel{`

var auxInputRe = regexp.MustCompile(`\\@input\{([^{}]*)\}`)

// AuxFile is the parsed content of one auxiliary file.
type AuxFile struct {
	// Labels maps label keys to rendered numbers. Within a file the first
	// definition of a key wins.
	Labels map[string]string

	// Inputs lists the \@input targets in the order they appear, as
	// written (relative to the aux file's directory).
	Inputs []string
}

// HasLabels reports whether data contains any label-definition record.
func HasLabels(data []byte) bool {
	return bytes.Contains(data, []byte(newlabelMarker))
}

// ParseAux extracts label records of the form
//
//	\newlabel{KEY}{{NUMBER}{PAGE}...}
//
// Redundant braces around NUMBER are stripped. Records that do not have
// this shape, or whose number is empty, are skipped.
func ParseAux(data []byte) AuxFile {
	s := string(data)
	out := AuxFile{Labels: make(map[string]string)}

	for rest := s; ; {
		k := strings.Index(rest, newlabelMarker)
		if k < 0 {
			break
		}
		rest = rest[k+len(newlabelMarker):]

		key, num, ok := parseNewlabel(rest)
		if !ok {
			continue
		}
		if _, dup := out.Labels[key]; !dup {
			out.Labels[key] = num
		}
	}

	for _, m := range auxInputRe.FindAllStringSubmatch(s, -1) {
		if target := strings.TrimSpace(m[1]); target != "" {
			out.Inputs = append(out.Inputs, target)
		}
	}
	return out
}

// parseNewlabel parses what follows `\newlabel{`.
func parseNewlabel(s string) (key, number string, ok bool) {
	key, after, ok := readGroup(s)
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)

	after = strings.TrimLeft(after, " \t")
	if !strings.HasPrefix(after, "{") {
		return "", "", false
	}
	outer, _, ok := readGroup(after[1:])
	if !ok {
		return "", "", false
	}

	outer = strings.TrimLeft(outer, " \t")
	if !strings.HasPrefix(outer, "{") {
		return "", "", false
	}
	number, _, ok = readGroup(outer[1:])
	if !ok {
		return "", "", false
	}

	number = stripBraces(number)
	if key == "" || number == "" {
		return "", "", false
	}
	return key, number, true
}

// readGroup reads a brace group whose opening brace has already been
// consumed. It returns the group body and the text after the closing
// brace. Escaped braces do not count toward nesting.
func readGroup(s string) (body, rest string, ok bool) {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// stripBraces removes braces that wrap the whole value, e.g. "{{3}}" -> "3".
func stripBraces(v string) string {
	v = strings.TrimSpace(v)
	for strings.HasPrefix(v, "{") {
		body, rest, ok := readGroup(v[1:])
		if !ok || strings.TrimSpace(rest) != "" {
			break
		}
		v = strings.TrimSpace(body)
	}
	return v
}
