package refs

import (
	"path/filepath"
	"strings"
)

// Template tokens understood in the output directory setting.
const (
	TokenDocumentDir  = "${documentDir}"
	TokenRootDir      = "${rootDir}"
	TokenDocumentName = "${documentName}"
	TokenRootName     = "${rootName}"
)

// Locations is what candidate generation needs to know about a document.
type Locations struct {
	DocumentPath string
	RootPath     string
	Directives   []Directive

	// OutputDirTemplate is the configured build output directory, possibly
	// containing template tokens. Relative results are taken from the root
	// document's directory.
	OutputDirTemplate string
}

// Candidates returns auxiliary file paths in priority order without
// duplicates: next to the document, next to the root document, next to
// each directive target, then inside the configured output directory.
func Candidates(loc Locations) []string {
	docDir, docName := splitName(loc.DocumentPath)
	rootPath := loc.RootPath
	if rootPath == "" {
		rootPath = loc.DocumentPath
	}
	rootDir, rootName := splitName(rootPath)

	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	add(filepath.Join(docDir, docName+".aux"))
	add(filepath.Join(rootDir, rootName+".aux"))

	for _, d := range loc.Directives {
		target := strings.TrimSuffix(strings.TrimSuffix(d.Target, ".tex"), ".bib")
		if filepath.IsAbs(target) {
			add(target + ".aux")
			continue
		}
		add(filepath.Join(docDir, target+".aux"))
	}

	if tmpl := strings.TrimSpace(loc.OutputDirTemplate); tmpl != "" {
		dir := strings.NewReplacer(
			TokenDocumentDir, docDir,
			TokenRootDir, rootDir,
			TokenDocumentName, docName,
			TokenRootName, rootName,
		).Replace(tmpl)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(rootDir, dir)
		}
		add(filepath.Join(dir, rootName+".aux"))
		add(filepath.Join(dir, docName+".aux"))
	}

	return out
}

func splitName(p string) (dir, name string) {
	dir = filepath.Dir(p)
	base := filepath.Base(p)
	return dir, strings.TrimSuffix(base, filepath.Ext(base))
}
