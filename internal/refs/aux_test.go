package refs

import (
	"reflect"
	"testing"
)

func TestParseAux(t *testing.T) {
	data := []byte(`\relax
\providecommand\hyper@newdestlabel[2]{}
\newlabel{sec:intro}{{1}{1}{Introduction}{section.1}{}}
\newlabel{eq:1}{{{3}}{2}}
\newlabel{eq:spaced} { {  2.4 }{5}}
\newlabel{thm:main}{{{\bfseries A}}{7}}
\newlabel{unnumbered}{{}{3}}
\newlabel{broken}{{4}
\newlabel{sec:intro}{{99}{1}}
\newlabel{tab:x}{{1\}2}{3}}
\@input{chapters/one.aux}
\@input{two.aux}
`)

	got := ParseAux(data)

	want := map[string]string{
		"sec:intro": "1",
		"eq:1":      "3",
		"eq:spaced": "2.4",
		"thm:main":  `\bfseries A`,
		"tab:x":     `1\}2`,
	}
	// "broken" never closes its outer group and is skipped.
	if !reflect.DeepEqual(got.Labels, want) {
		t.Errorf("Labels = %v, want %v", got.Labels, want)
	}

	wantInputs := []string{"chapters/one.aux", "two.aux"}
	if !reflect.DeepEqual(got.Inputs, wantInputs) {
		t.Errorf("Inputs = %v, want %v", got.Inputs, wantInputs)
	}
}

func TestParseAux_Empty(t *testing.T) {
	got := ParseAux([]byte(`\relax`))
	if len(got.Labels) != 0 || len(got.Inputs) != 0 {
		t.Errorf("ParseAux(relax) = %+v, want empty", got)
	}
	if HasLabels([]byte(`\relax`)) {
		t.Error("HasLabels(relax) = true")
	}
	if !HasLabels([]byte(`\newlabel{a}{{1}{1}}`)) {
		t.Error("HasLabels(newlabel) = false")
	}
}

func TestStripBraces(t *testing.T) {
	tests := map[string]string{
		"3":       "3",
		"{3}":     "3",
		" {{3}} ": "3",
		"{1}{2}":  "{1}{2}",
		"{a{b}c}": "a{b}c",
		"{":       "{",
	}
	for in, want := range tests {
		if got := stripBraces(in); got != want {
			t.Errorf("stripBraces(%q) = %q, want %q", in, got, want)
		}
	}
}
