// Package engine drives prettification for a set of open documents.
//
// The host editor reports document, editor, configuration, and build
// output events. The engine debounces them per document, recomputes the
// substitution spans, stores them as the document's session, and hands
// the resulting decorations to the host's Renderer.
//
// # Recompute
//
// A recompute runs in two phases:
//
//  1. When references render as numbers, the label mapping is resolved
//     from the LaTeX build's .aux files. This may block on I/O.
//  2. The current document text is scanned against the active rules and
//     the label snapshot from phase 1. This phase never blocks.
//
// Documents whose language is not LaTeX or TeX render no decorations.
//
// # Reveal
//
// Hovering a span, or moving the caret into it, reveals its source text
// for a short while. Revealed spans render as highlight decorations
// instead of ghost text until their hold expires.
//
// # Thread Safety
//
// All Engine methods are safe for concurrent use. Renderer.Apply may be
// called from timer goroutines.
package engine
