package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/texprettify/internal/reveal"
	"github.com/dshills/texprettify/internal/rules"
)

// Validate clamps out-of-range values and replaces unknown enum values
// with their defaults. It never fails; each correction is reported as a
// warning.
func Validate(s Settings) (Settings, []string) {
	def := Defaults()
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if minMs := int(reveal.MinHold / time.Millisecond); s.HoverRevealMs < minMs {
		warnf("%s %d below minimum, using %d", KeyHoverRevealMs, s.HoverRevealMs, minMs)
		s.HoverRevealMs = minMs
	}

	switch s.ReferenceMask {
	case MaskPlainGlyph, MaskResolvedNumber:
	default:
		warnf("unknown %s %q, using %q", KeyReferenceMask, s.ReferenceMask, def.ReferenceMask)
		s.ReferenceMask = def.ReferenceMask
	}

	switch s.HighlightStyle {
	case HighlightBackground, HighlightTextColor, HighlightMarkerGlyph, HighlightNone:
	default:
		warnf("unknown %s %q, using %q", KeyHighlightStyle, s.HighlightStyle, def.HighlightStyle)
		s.HighlightStyle = def.HighlightStyle
	}

	if c, err := colorful.Hex(s.HighlightColor); err != nil {
		warnf("invalid %s %q, using %q", KeyHighlightColor, s.HighlightColor, def.HighlightColor)
		s.HighlightColor = def.HighlightColor
	} else {
		// #rgb and upper-case forms are stored as lower-case #rrggbb.
		s.HighlightColor = c.Hex()
	}

	if s.DebounceMs < 0 {
		warnf("negative %s, using 0", KeyDebounceMs)
		s.DebounceMs = 0
	}

	switch strings.ToLower(strings.TrimSpace(s.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		warnf("unknown %s %q, using %q", KeyLogLevel, s.LogLevel, def.LogLevel)
		s.LogLevel = def.LogLevel
	}

	s.Symbols = validRules(KeySymbols, s.Symbols, warnf)
	s.MathCommands = validRules(KeyMathCommands, s.MathCommands, warnf)
	s.TexCommands = validRules(KeyTexCommands, s.TexCommands, warnf)

	return s, warnings
}

// validRules drops rules with an empty original and normalizes display
// text.
func validRules(key string, rs []rules.Rule, warnf func(string, ...any)) []rules.Rule {
	if len(rs) == 0 {
		return rs
	}
	out := make([]rules.Rule, 0, len(rs))
	for i, r := range rs {
		if r.Original == "" {
			warnf("%s[%d] has an empty original, dropped", key, i)
			continue
		}
		out = append(out, r.Normalized())
	}
	return out
}
