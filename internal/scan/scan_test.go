package scan

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/texprettify/internal/rules"
)

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		a, b Interval
		want bool
	}{
		{Interval{0, 5}, Interval{5, 10}, false},
		{Interval{0, 5}, Interval{4, 10}, true},
		{Interval{3, 4}, Interval{0, 10}, true},
		{Interval{0, 10}, Interval{3, 4}, true},
		{Interval{6, 8}, Interval{0, 5}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestOccupancy(t *testing.T) {
	var o Occupancy

	for _, iv := range []Interval{{10, 15}, {0, 3}, {20, 22}} {
		if !o.TryClaim(iv) {
			t.Fatalf("TryClaim(%v) = false on free interval", iv)
		}
	}

	tests := []struct {
		iv   Interval
		want bool
	}{
		{Interval{3, 10}, false},
		{Interval{2, 4}, true},
		{Interval{14, 20}, true},
		{Interval{15, 20}, false},
		{Interval{21, 30}, true},
		{Interval{22, 30}, false},
		{Interval{0, 100}, true},
	}
	for _, tt := range tests {
		if got := o.Overlaps(tt.iv); got != tt.want {
			t.Errorf("Overlaps(%v) = %v, want %v", tt.iv, got, tt.want)
		}
	}
	if o.TryClaim(Interval{1, 2}) {
		t.Error("TryClaim on claimed interval should fail")
	}
	if o.Len() != 3 {
		t.Errorf("Len() = %d, want 3", o.Len())
	}
}

func originals(spans []Span) []string {
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = s.Original
	}
	return out
}

func TestScan_AdjacentCommands(t *testing.T) {
	s := New()
	res := s.Scan(Request{
		Text: `\alpha + \alpha\beta`,
		Rules: []rules.Rule{
			{Original: `\beta`, Display: "β"},
			{Original: `\alpha`, Display: "α"},
		},
	})

	want := []Span{
		{Start: 0, End: 6, Original: `\alpha`, Display: "α", DisplayLength: 6, DisplayWidth: 6},
		{Start: 9, End: 15, Original: `\alpha`, Display: "α", DisplayLength: 6, DisplayWidth: 6},
		{Start: 15, End: 20, Original: `\beta`, Display: "β", DisplayLength: 5, DisplayWidth: 5},
	}
	if !reflect.DeepEqual(res.Spans, want) {
		t.Errorf("Spans = %+v, want %+v", res.Spans, want)
	}
}

func TestScan_WordBoundary(t *testing.T) {
	res := New().Scan(Request{
		Text:  "x xx",
		Rules: []rules.Rule{{Original: "x", Display: "y"}},
	})
	if len(res.Spans) != 1 || res.Spans[0].Start != 0 || res.Spans[0].End != 1 {
		t.Errorf("Spans = %+v, want only the standalone x", res.Spans)
	}
}

func TestScan_LongestMatchWins(t *testing.T) {
	res := New().Scan(Request{
		Text: `a \le b \leq c <= d <=> e`,
		Rules: []rules.Rule{
			{Original: `\le`, Display: "≤"},
			{Original: "<=", Display: "≤"},
			{Original: `\leq`, Display: "≤"},
			{Original: "<=>", Display: "⇔"},
		},
	})

	got := originals(res.Index)
	want := []string{`\le`, `\leq`, "<=", "<=>"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("index originals = %v, want %v", got, want)
	}
}

func TestScan_DisplayLengthCountsCodePoints(t *testing.T) {
	res := New().Scan(Request{
		Text:  "a → b",
		Rules: []rules.Rule{{Original: "→", Display: "->"}},
	})
	if len(res.Spans) != 1 {
		t.Fatalf("Spans = %+v", res.Spans)
	}
	sp := res.Spans[0]
	if sp.End-sp.Start != 3 || sp.DisplayLength != 1 {
		t.Errorf("bytes = %d, DisplayLength = %d; want 3 and 1", sp.End-sp.Start, sp.DisplayLength)
	}
}

func TestScan_NonOverlapAndIdempotence(t *testing.T) {
	rs := []rules.Rule{
		{Original: `\alpha`, Display: "α"},
		{Original: `\al`, Display: "?"},
		{Original: "--", Display: "–"},
		{Original: "---", Display: "—"},
		{Original: "->", Display: "→"},
		{Original: "<-", Display: "←"},
		{Original: "<->", Display: "↔"},
		{Original: "a", Display: "A"},
		{Original: "ab", Display: "AB"},
	}
	pieces := []string{`\alpha`, `\al`, "-", ">", "<", "a", "b", " ", "\n", "é"}
	rng := rand.New(rand.NewSource(42))
	s := New()

	for round := 0; round < 200; round++ {
		var b strings.Builder
		for i := 0; i < 40; i++ {
			b.WriteString(pieces[rng.Intn(len(pieces))])
		}
		text := b.String()

		first := s.Scan(Request{Text: text, Rules: rs})
		for i := 0; i < len(first.Spans); i++ {
			for j := i + 1; j < len(first.Spans); j++ {
				if first.Spans[i].Interval().Overlaps(first.Spans[j].Interval()) {
					t.Fatalf("text %q: spans %+v and %+v overlap", text, first.Spans[i], first.Spans[j])
				}
			}
		}

		second := s.Scan(Request{Text: text, Rules: rs})
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("text %q: scan not idempotent", text)
		}
	}
}

func TestScan_ReferenceMode(t *testing.T) {
	rs := []rules.Rule{
		{Original: `\ref`, Display: "※"},
		{Original: `\eqref`, Display: "(※)"},
		{Original: `\alpha`, Display: "α"},
		{Original: "eq", Display: "≡"},
	}
	labels := map[string]string{"eq:1": "3", "fig:a": "1.2", "sec:b": "4"}

	tests := []struct {
		name string
		text string
		want []Span
	}{
		{
			name: "resolved eqref",
			text: `\eqref{eq:1}`,
			want: []Span{{Start: 0, End: 12, Original: `\eqref{eq:1}`, Display: "(3)", DisplayLength: 12, DisplayWidth: 12, Kind: KindReference}},
		},
		{
			name: "unresolved eqref is left alone",
			text: `\eqref{eq:2}`,
			want: nil,
		},
		{
			name: "unresolved argument is not substituted",
			text: `eq \eqref{eq:2}`,
			want: []Span{{Start: 0, End: 2, Original: "eq", Display: "≡", DisplayLength: 2, DisplayWidth: 2}},
		},
		{
			name: "label list",
			text: `\ref{fig:a; sec:b}`,
			want: []Span{{Start: 0, End: 18, Original: `\ref{fig:a; sec:b}`, Display: "1.2, 4", DisplayLength: 18, DisplayWidth: 18, Kind: KindReference}},
		},
		{
			name: "partially resolved list",
			text: `\ref{fig:a,nope}`,
			want: []Span{{Start: 0, End: 16, Original: `\ref{fig:a,nope}`, Display: "1.2, ??", DisplayLength: 16, DisplayWidth: 16, Kind: KindReference}},
		},
		{
			name: "generic rules still run",
			text: `\alpha\ref{eq:1}`,
			want: []Span{
				{Start: 6, End: 16, Original: `\ref{eq:1}`, Display: "3", DisplayLength: 10, DisplayWidth: 10, Kind: KindReference},
				{Start: 0, End: 6, Original: `\alpha`, Display: "α", DisplayLength: 6, DisplayWidth: 6},
			},
		},
	}

	s := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Scan(Request{Text: tt.text, Rules: rs, ReferenceMode: true, Labels: labels})
			if !reflect.DeepEqual(res.Spans, tt.want) {
				t.Errorf("Spans = %+v, want %+v", res.Spans, tt.want)
			}
		})
	}
}

func TestScan_PlainGlyphMode(t *testing.T) {
	res := New().Scan(Request{
		Text:   `see \eqref{eq:1}`,
		Rules:  []rules.Rule{{Original: `\eqref`, Display: "(※)"}},
		Labels: map[string]string{"eq:1": "3"},
	})
	if len(res.Spans) != 1 || res.Spans[0].Original != `\eqref` || res.Spans[0].Display != "(※)" {
		t.Errorf("Spans = %+v, want the static glyph rule", res.Spans)
	}
}

func TestScan_DropsEmptyRule(t *testing.T) {
	res := New().Scan(Request{
		Text:  "ab",
		Rules: []rules.Rule{{Original: ""}, {Original: "ab", Display: "x"}},
	})
	if len(res.Spans) != 1 {
		t.Errorf("Spans = %+v, want one span", res.Spans)
	}
}

func TestSplitLabels(t *testing.T) {
	got := SplitLabels(" a , b;;c ,")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLabels = %v, want %v", got, want)
	}
}

func TestIndex_Lookup(t *testing.T) {
	idx := NewIndex([]Span{
		{Start: 9, End: 15, Original: "second"},
		{Start: 0, End: 6, Original: "first"},
		{Start: 15, End: 20, Original: "third"},
	})

	tests := []struct {
		offset int
		want   string
		ok     bool
	}{
		{0, "first", true},
		{6, "first", true},
		{7, "", false},
		{12, "second", true},
		{15, "third", true},
		{20, "third", true},
		{21, "", false},
	}
	for _, tt := range tests {
		got, ok := idx.Lookup(tt.offset)
		if ok != tt.ok || got.Original != tt.want {
			t.Errorf("Lookup(%d) = (%q, %v), want (%q, %v)", tt.offset, got.Original, ok, tt.want, tt.ok)
		}
	}
}
