package main

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/tidwall/sjson"

	"github.com/dshills/texprettify/internal/engine"
	"github.com/dshills/texprettify/internal/refs"
)

// byStart returns a copy of ds ordered by source offset.
func byStart(ds []engine.Decoration) []engine.Decoration {
	out := slices.Clone(ds)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// substitute returns text with the source of every decoration replaced by
// paint(d). Decorations never overlap.
func substitute(text string, ds []engine.Decoration, paint func(engine.Decoration) string) string {
	var b strings.Builder
	b.Grow(len(text))

	pos := 0
	for _, d := range byStart(ds) {
		if d.Start < pos || d.End > len(text) {
			continue
		}
		b.WriteString(text[pos:d.Start])
		b.WriteString(paint(d))
		pos = d.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

// position formats a range as 1-based line:col-line:col.
func position(d engine.Decoration) string {
	return fmt.Sprintf("%d:%d-%d:%d",
		d.Range.Start.Line+1, d.Range.Start.Character+1,
		d.Range.End.Line+1, d.Range.End.Character+1)
}

// writeSpans prints one aligned line per decoration.
func writeSpans(w io.Writer, ds []engine.Decoration, paint func(string) string) error {
	ds = byStart(ds)

	posWidth, origWidth := 0, 0
	for _, d := range ds {
		posWidth = max(posWidth, len(position(d)))
		origWidth = max(origWidth, runewidth.StringWidth(d.Original))
	}

	for _, d := range ds {
		_, err := fmt.Fprintf(w, "%s  %s  -> %s\n",
			runewidth.FillRight(position(d), posWidth),
			runewidth.FillRight(d.Original, origWidth),
			paint(d.Display))
		if err != nil {
			return err
		}
	}
	return nil
}

// spansJSON encodes the decorations of uri as a JSON document.
func spansJSON(uri string, ds []engine.Decoration) (string, error) {
	doc, err := sjson.Set(`{}`, "uri", uri)
	if err != nil {
		return "", err
	}
	doc, err = sjson.SetRaw(doc, "spans", `[]`)
	if err != nil {
		return "", err
	}

	for _, d := range byStart(ds) {
		span := `{}`
		fields := []struct {
			key   string
			value any
		}{
			{"start", d.Start},
			{"end", d.End},
			{"line", d.Range.Start.Line},
			{"character", d.Range.Start.Character},
			{"original", d.Original},
			{"display", d.Display},
			{"width", d.Width},
			{"reference", d.Reference},
		}
		for _, f := range fields {
			if span, err = sjson.Set(span, f.key, f.value); err != nil {
				return "", err
			}
		}
		if doc, err = sjson.SetRaw(doc, "spans.-1", span); err != nil {
			return "", err
		}
	}
	return doc, nil
}

// writeLabels prints the label mapping sorted by key.
func writeLabels(w io.Writer, res refs.Result, paint func(string) string) error {
	primary := res.Primary
	if primary == "" {
		primary = "(none)"
	}
	if _, err := fmt.Fprintf(w, "aux: %s\n", primary); err != nil {
		return err
	}
	for _, src := range res.Sources {
		if src == res.Primary {
			continue
		}
		if _, err := fmt.Fprintf(w, "  + %s\n", src); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(res.Labels))
	width := 0
	for k := range res.Labels {
		keys = append(keys, k)
		width = max(width, runewidth.StringWidth(k))
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight(k, width), paint(res.Labels[k])); err != nil {
			return err
		}
	}
	return nil
}
