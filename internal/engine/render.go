package engine

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/texprettify/internal/config"
	"github.com/dshills/texprettify/internal/reveal"
	"github.com/dshills/texprettify/internal/scan"
	"github.com/dshills/texprettify/internal/textdoc"
)

// render applies the decorations of uri's current session. Held spans
// become highlights; the rest become ghost text.
func (e *Engine) render(uri string) {
	e.mu.RLock()
	doc, ok := e.docs[uri]
	settings := e.settings
	closed := e.closed
	e.mu.RUnlock()
	if !ok || closed {
		return
	}

	s, ok := e.sessions.Get(uri)
	if !ok {
		return
	}
	e.renderer.Apply(uri, Decorations(doc, s.Spans, e.holder.HeldKeys(uri), settings))
}

// Decorations converts spans to decorations. Spans whose key is in held
// render as highlights, or not at all when the highlight style is none.
func Decorations(doc Document, spans []scan.Span, held map[string]bool, settings config.Settings) []Decoration {
	out := make([]Decoration, 0, len(spans))
	for _, sp := range spans {
		rng := textdoc.Range{Start: doc.PositionAt(sp.Start), End: doc.PositionAt(sp.End)}
		d := Decoration{
			Kind:     DecorationGhost,
			Range:    rng,
			Start:    sp.Start,
			End:      sp.End,
			Original: sp.Original,
			Display:  sp.Display,
			Length:   sp.DisplayLength,
			Width:    sp.DisplayWidth,

			Reference:  sp.Kind == scan.KindReference,
			GlyphWidth: uniseg.StringWidth(sp.Display),
		}
		if held[spanKey(doc.URI(), rng)] {
			if settings.HighlightStyle == config.HighlightNone {
				continue
			}
			d.Kind = DecorationHighlight
			d.Style = settings.HighlightStyle
			d.Color = settings.HighlightColor
		}
		out = append(out, d)
	}
	return out
}

func spanKey(uri string, r textdoc.Range) string {
	return reveal.Key(uri, reveal.Range{
		StartLine: r.Start.Line,
		StartCol:  r.Start.Character,
		EndLine:   r.End.Line,
		EndCol:    r.End.Character,
	})
}
