package engine

import (
	"github.com/dshills/texprettify/internal/scan"
	"github.com/dshills/texprettify/internal/textdoc"
)

// Hover returns the span under offset and reveals it.
func (e *Engine) Hover(uri string, offset int) (HoverInfo, bool) {
	sp, rng, ok := e.reveal(uri, offset)
	if !ok {
		return HoverInfo{}, false
	}
	return HoverInfo{Original: sp.Original, Display: sp.Display, Range: rng}, true
}

// OnCaretMoved reveals the span touching the caret, if any.
func (e *Engine) OnCaretMoved(uri string, offset int) {
	e.reveal(uri, offset)
}

func (e *Engine) reveal(uri string, offset int) (scan.Span, textdoc.Range, bool) {
	e.mu.RLock()
	doc, ok := e.docs[uri]
	e.mu.RUnlock()
	if !ok {
		return scan.Span{}, textdoc.Range{}, false
	}

	sp, ok := e.sessions.Lookup(uri, offset)
	if !ok {
		return scan.Span{}, textdoc.Range{}, false
	}
	rng := textdoc.Range{Start: doc.PositionAt(sp.Start), End: doc.PositionAt(sp.End)}
	e.holder.Enter(uri, spanKey(uri, rng))
	return sp, rng, true
}
