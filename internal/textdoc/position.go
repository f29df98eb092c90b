package textdoc

import "sort"

// Position is a zero-based line and column. Columns count UTF-16 code
// units, the convention editors use for decoration ranges.
type Position struct {
	Line      int
	Character int
}

// Before reports whether p sorts before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

// Range is a half-open position range.
type Range struct {
	Start Position
	End   Position
}

// lineIndex holds the byte offset at which each line starts.
type lineIndex []int

func buildLineIndex(text string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

// lineOf returns the line containing byte offset off.
func (idx lineIndex) lineOf(off int) int {
	return sort.Search(len(idx), func(i int) bool { return idx[i] > off }) - 1
}

// bounds returns the byte range of line n without its newline.
func (idx lineIndex) bounds(text string, n int) (start, end int) {
	start = idx[n]
	if n+1 < len(idx) {
		end = idx[n+1] - 1
	} else {
		end = len(text)
	}
	return start, end
}

func positionAt(text string, idx lineIndex, off int) Position {
	off = min(max(off, 0), len(text))
	line := idx.lineOf(off)
	start, _ := idx.bounds(text, line)
	return Position{Line: line, Character: utf16Len(text[start:off])}
}

func offsetAt(text string, idx lineIndex, pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(idx) {
		return len(text)
	}
	start, end := idx.bounds(text, pos.Line)
	return start + utf16ToByteOffset(text[start:end], pos.Character)
}

// utf16Len returns the length of s in UTF-16 code units. A split
// multi-byte sequence counts as one unit per rune decoded.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func utf16ToByteOffset(s string, units int) int {
	if units <= 0 {
		return 0
	}
	count := 0
	for i, r := range s {
		if count >= units {
			return i
		}
		if r >= 0x10000 {
			count += 2
		} else {
			count++
		}
	}
	return len(s)
}
