package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"

	"github.com/dshills/texprettify/internal/config"
	"github.com/dshills/texprettify/internal/engine"
	"github.com/dshills/texprettify/internal/refs"
	"github.com/dshills/texprettify/internal/textdoc"
)

func plain(s string) string { return s }

func sampleDecorations() []engine.Decoration {
	doc := textdoc.New("u", "", textdoc.LanguageLaTeX, "$\\alpha \\to x$\nsee \\ref{a}")
	mk := func(start, end int, original, display string) engine.Decoration {
		return engine.Decoration{
			Range:    doc.RangeOf(start, end),
			Start:    start,
			End:      end,
			Original: original,
			Display:  display,
			Width:    end - start,

			GlyphWidth: 1,
		}
	}
	// Out of order on purpose.
	return []engine.Decoration{
		mk(8, 11, `\to`, "→"),
		mk(1, 7, `\alpha`, "α"),
		mk(19, 26, `\ref{a}`, "3"),
	}
}

func TestSubstitute(t *testing.T) {
	text := "$\\alpha \\to x$\nsee \\ref{a}"
	got := substitute(text, sampleDecorations(), func(d engine.Decoration) string { return d.Display })
	if want := "$α → x$\nsee 3"; got != want {
		t.Errorf("substitute = %q, want %q", got, want)
	}

	if got := substitute(text, nil, nil); got != text {
		t.Errorf("substitute without decorations = %q", got)
	}
}

func TestSubstitute_Aligned(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	text := "$\\alpha \\to x$\nsee \\ref{a}"
	got := substitute(text, sampleDecorations(), painter(true))
	want := "$α      →   x$\nsee 3      "
	if got != want {
		t.Errorf("aligned substitute = %q, want %q", got, want)
	}

	if got := substitute(text, sampleDecorations(), painter(false)); got != "$α → x$\nsee 3" {
		t.Errorf("unaligned substitute = %q", got)
	}

	wide := engine.Decoration{Display: "⟹", Width: 1, GlyphWidth: 2}
	if got := aligned(wide); got != "⟹" {
		t.Errorf("aligned(wider glyph) = %q, want no padding", got)
	}
}

func TestWriteSpans(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSpans(&buf, sampleDecorations(), plain); err != nil {
		t.Fatal(err)
	}
	want := "1:2-1:8   \\alpha   -> α\n" +
		"1:9-1:12  \\to      -> →\n" +
		"2:5-2:12  \\ref{a}  -> 3\n"
	if got := buf.String(); got != want {
		t.Errorf("writeSpans =\n%s\nwant\n%s", got, want)
	}
}

func TestSpansJSON(t *testing.T) {
	doc, err := spansJSON("file:///a.tex", sampleDecorations())
	if err != nil {
		t.Fatal(err)
	}
	if !gjson.Valid(doc) {
		t.Fatalf("invalid JSON: %s", doc)
	}
	if got := gjson.Get(doc, "uri").String(); got != "file:///a.tex" {
		t.Errorf("uri = %q", got)
	}
	if n := gjson.Get(doc, "spans.#").Int(); n != 3 {
		t.Fatalf("spans = %d, want 3", n)
	}
	if got := gjson.Get(doc, "spans.0.original").String(); got != `\alpha` {
		t.Errorf("first original = %q", got)
	}
	if got := gjson.Get(doc, "spans.2.line").Int(); got != 1 {
		t.Errorf("third line = %d", got)
	}

	empty, err := spansJSON("u", nil)
	if err != nil || gjson.Get(empty, "spans.#").Int() != 0 {
		t.Errorf("empty spans = %s, %v", empty, err)
	}
}

func TestWriteLabels(t *testing.T) {
	res := refs.Result{
		Labels:  map[string]string{"sec:intro": "1", "eq:a": "2.1"},
		Primary: "/w/main.aux",
		Sources: []string{"/w/main.aux", "/w/ch1.aux"},
	}
	var buf bytes.Buffer
	if err := writeLabels(&buf, res, plain); err != nil {
		t.Fatal(err)
	}
	want := "aux: /w/main.aux\n" +
		"  + /w/ch1.aux\n" +
		"eq:a       2.1\n" +
		"sec:intro  1\n"
	if got := buf.String(); got != want {
		t.Errorf("writeLabels =\n%s\nwant\n%s", got, want)
	}

	buf.Reset()
	if err := writeLabels(&buf, refs.Result{}, plain); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "aux: (none)\n" {
		t.Errorf("empty writeLabels = %q", got)
	}
}

func TestWithMode(t *testing.T) {
	s := config.Defaults()

	got, err := withMode(s, "")
	if err != nil || got.ReferenceMask != config.MaskPlainGlyph {
		t.Errorf("withMode(\"\") = %q, %v", got.ReferenceMask, err)
	}
	got, err = withMode(s, "resolved-number")
	if err != nil || got.ReferenceMask != config.MaskResolvedNumber {
		t.Errorf("withMode(resolved-number) = %q, %v", got.ReferenceMask, err)
	}
	if _, err := withMode(s, "numbers"); err == nil {
		t.Error("withMode should reject unknown modes")
	}
}
