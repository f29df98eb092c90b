package refs

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/texprettify/internal/project/ignore"
	"github.com/dshills/texprettify/internal/project/vfs"
)

// magicRootLines is how far into a document the root magic comment is
// looked for.
const magicRootLines = 20

var (
	magicRootRe     = regexp.MustCompile(`(?i)^\s*%\s*!\s*TEX\s+root\s*=\s*(.+?)\s*$`)
	documentclassRe = regexp.MustCompile(`(?m)^[^%\n]*\\documentclass`)
	directiveRe     = regexp.MustCompile(`\\(include|input|subfile|bibliography)\s*\{([^{}]*)\}`)
)

// Directive is an \include-style reference from one source file to
// another.
type Directive struct {
	Command string
	Target  string
}

// Directives lists the file references in a document, in order. Commented
// lines are ignored. Comma separated \bibliography lists produce one
// directive per entry.
func Directives(text string) []Directive {
	var out []Directive
	for _, line := range strings.Split(text, "\n") {
		for _, m := range directiveRe.FindAllStringSubmatch(stripComment(line), -1) {
			for _, target := range strings.Split(m[2], ",") {
				if target = strings.TrimSpace(target); target != "" {
					out = append(out, Directive{Command: m[1], Target: target})
				}
			}
		}
	}
	return out
}

// stripComment cuts a line at its first unescaped %.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '%':
			return line[:i]
		}
	}
	return line
}

// magicRoot returns the target of a "% !TEX root = ..." comment near the
// top of text.
func magicRoot(text string) (string, bool) {
	lines := strings.SplitN(text, "\n", magicRootLines+1)
	if len(lines) > magicRootLines {
		lines = lines[:magicRootLines]
	}
	for _, line := range lines {
		if m := magicRootRe.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// IsRootDocument reports whether text declares a document class.
func IsRootDocument(text string) bool {
	return documentclassRe.MatchString(text)
}

// texPath resolves a directive target relative to dir, adding the .tex
// extension when none is given.
func texPath(dir, target string) string {
	if filepath.Ext(target) == "" {
		target += ".tex"
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(dir, target)
}

// DetectRoot finds the root document of a multi-file project. It tries,
// in order: a "% !TEX root" magic comment, the document itself when it has
// \documentclass, and the nearest workspace .tex file with \documentclass
// that includes the document. When all fail the document is its own root.
func DetectRoot(ctx context.Context, fsys vfs.FS, skip *ignore.Matcher, docPath, text, workspace string) string {
	docDir := filepath.Dir(docPath)

	if target, ok := magicRoot(text); ok {
		if p := texPath(docDir, target); fsys.Exists(p) {
			return p
		}
	}

	if IsRootDocument(text) || workspace == "" {
		return docPath
	}

	var parents []string
	_ = fsys.WalkDir(workspace, func(p string, info vfs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return vfs.SkipAll
		}
		if skip != nil && skip.MatchUnder(workspace, p, info.IsDir()) {
			if info.IsDir() {
				return vfs.SkipDir
			}
			return nil
		}
		if info.IsDir() || filepath.Ext(p) != ".tex" || p == docPath {
			return nil
		}
		data, err := fsys.ReadFile(p)
		if err != nil {
			return nil
		}
		src := string(data)
		if !IsRootDocument(src) {
			return nil
		}
		for _, d := range Directives(src) {
			if d.Command != "bibliography" && texPath(filepath.Dir(p), d.Target) == docPath {
				parents = append(parents, p)
				break
			}
		}
		return nil
	})

	if len(parents) == 0 {
		return docPath
	}
	SortByDistance(parents, docDir)
	return parents[0]
}

// SortByDistance orders paths by the directory distance between each
// path's directory and from, breaking ties by path.
func SortByDistance(paths []string, from string) {
	sort.SliceStable(paths, func(i, j int) bool {
		di := DirDistance(filepath.Dir(paths[i]), from)
		dj := DirDistance(filepath.Dir(paths[j]), from)
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})
}

// DirDistance counts the directory steps needed to walk from a to b
// through their deepest common ancestor.
func DirDistance(a, b string) int {
	pa := splitDir(a)
	pb := splitDir(b)
	common := 0
	for common < len(pa) && common < len(pb) && pa[common] == pb[common] {
		common++
	}
	return (len(pa) - common) + (len(pb) - common)
}

func splitDir(dir string) []string {
	dir = filepath.ToSlash(filepath.Clean(dir))
	var parts []string
	for _, p := range strings.Split(dir, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}
