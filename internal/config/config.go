package config

import (
	"slices"
	"time"

	"github.com/dshills/texprettify/internal/logging"
	"github.com/dshills/texprettify/internal/reveal"
	"github.com/dshills/texprettify/internal/rules"
)

// Setting keys, as they appear in the settings file.
const (
	KeyEnabled        = "enabled"
	KeySymbolEnabled  = "symbol_enabled"
	KeyMathEnabled    = "math_enabled"
	KeyTexEnabled     = "tex_enabled"
	KeySymbols        = "symbols"
	KeyMathCommands   = "math_commands"
	KeyTexCommands    = "tex_commands"
	KeyReferenceMask  = "reference_mask"
	KeyHoverRevealMs  = "hover_reveal_ms"
	KeyHighlightStyle = "highlight_style"
	KeyHighlightColor = "highlight_color"
	KeyAuxOutputDir   = "aux_output_dir"
	KeyDebounceMs     = "debounce_ms"
	KeyLogLevel       = "log_level"
)

var keys = []string{
	KeyEnabled, KeySymbolEnabled, KeyMathEnabled, KeyTexEnabled,
	KeySymbols, KeyMathCommands, KeyTexCommands,
	KeyReferenceMask, KeyHoverRevealMs, KeyHighlightStyle, KeyHighlightColor,
	KeyAuxOutputDir, KeyDebounceMs, KeyLogLevel,
}

// ReferenceMask selects how \ref and \eqref are displayed.
type ReferenceMask string

const (
	// MaskPlainGlyph shows the configured tex command glyph.
	MaskPlainGlyph ReferenceMask = "plain-glyph"
	// MaskResolvedNumber shows the label numbers from the LaTeX build.
	MaskResolvedNumber ReferenceMask = "resolved-number"
)

// HighlightStyle selects how a held span is marked while its source text
// is revealed.
type HighlightStyle string

const (
	HighlightBackground  HighlightStyle = "background"
	HighlightTextColor   HighlightStyle = "text-color"
	HighlightMarkerGlyph HighlightStyle = "marker-glyph"
	HighlightNone        HighlightStyle = "none"
)

// Settings is the complete prettifier configuration.
type Settings struct {
	Enabled       bool `toml:"enabled"`
	SymbolEnabled bool `toml:"symbol_enabled"`
	MathEnabled   bool `toml:"math_enabled"`
	TexEnabled    bool `toml:"tex_enabled"`

	// Rule tables. Empty tables use the built-in defaults.
	Symbols      []rules.Rule `toml:"symbols"`
	MathCommands []rules.Rule `toml:"math_commands"`
	TexCommands  []rules.Rule `toml:"tex_commands"`

	ReferenceMask ReferenceMask `toml:"reference_mask"`

	// HoverRevealMs is how long a span stays revealed after the last
	// hover or caret visit.
	HoverRevealMs int `toml:"hover_reveal_ms"`

	HighlightStyle HighlightStyle `toml:"highlight_style"`
	HighlightColor string         `toml:"highlight_color"`

	// AuxOutputDir is the LaTeX build output directory. It may use the
	// ${documentDir}, ${rootDir}, ${documentName} and ${rootName} tokens.
	AuxOutputDir string `toml:"aux_output_dir"`

	DebounceMs int    `toml:"debounce_ms"`
	LogLevel   string `toml:"log_level"`
}

// Defaults returns the built-in settings. Rule tables are left empty so
// they track the built-in tables.
func Defaults() Settings {
	return Settings{
		Enabled:        true,
		SymbolEnabled:  true,
		MathEnabled:    true,
		TexEnabled:     true,
		ReferenceMask:  MaskPlainGlyph,
		HoverRevealMs:  int(reveal.DefaultHold / time.Millisecond),
		HighlightStyle: HighlightBackground,
		HighlightColor: "#ffcc00",
		DebounceMs:     150,
		LogLevel:       "info",
	}
}

// Rules returns the configured rule tables with empty ones replaced by
// the built-in tables.
func (s Settings) Rules() rules.Set {
	return rules.Set{
		Symbols:      s.Symbols,
		MathCommands: s.MathCommands,
		TexCommands:  s.TexCommands,
	}.WithFallback(rules.Defaults())
}

// ActiveRules returns the rules of every enabled group, or nil when the
// prettifier is disabled.
func (s Settings) ActiveRules() []rules.Rule {
	if !s.Enabled {
		return nil
	}
	return s.Rules().Active(s.SymbolEnabled, s.MathEnabled, s.TexEnabled)
}

// ResolveReferences reports whether references render as label numbers.
func (s Settings) ResolveReferences() bool {
	return s.ReferenceMask == MaskResolvedNumber
}

// HoldDuration returns the clamped reveal duration.
func (s Settings) HoldDuration() time.Duration {
	return reveal.ClampHold(time.Duration(max(s.HoverRevealMs, 1)) * time.Millisecond)
}

// Debounce returns the recompute debounce delay.
func (s Settings) Debounce() time.Duration {
	return time.Duration(max(s.DebounceMs, 0)) * time.Millisecond
}

// Level returns the configured log level.
func (s Settings) Level() logging.Level {
	return logging.ParseLevel(s.LogLevel)
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.Symbols = slices.Clone(s.Symbols)
	s.MathCommands = slices.Clone(s.MathCommands)
	s.TexCommands = slices.Clone(s.TexCommands)
	return s
}
