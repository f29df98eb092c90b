package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/texprettify/internal/engine"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] FILE",
	Short: "Print a LaTeX file with substitutions applied",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().String("mode", "", "reference display (plain-glyph|resolved-number)")
	renderCmd.Flags().Bool("align", false, "pad glyphs to the width of their source so columns line up")
}

func runRender(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	align, _ := cmd.Flags().GetBool("align")

	a, err := newApp(cmd, args[0], mode)
	if err != nil {
		return err
	}
	defer a.Close()

	ds, err := a.decorations(cmd)
	if err != nil {
		return fmt.Errorf("render %s: %w", args[0], err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), substitute(a.doc.Text(), ds, painter(align)))
	return err
}

var (
	ruleColor      = color.New(color.FgCyan)
	referenceColor = color.New(color.FgYellow, color.Bold)
)

func ruleGlyph(s string) string      { return ruleColor.Sprint(s) }
func referenceGlyph(s string) string { return referenceColor.Sprint(s) }

// painter returns glyph, or aligned when align is set.
func painter(align bool) func(engine.Decoration) string {
	if align {
		return aligned
	}
	return glyph
}

// aligned is glyph padded with spaces up to the cell width of the source
// text d replaces.
func aligned(d engine.Decoration) string {
	return glyph(d) + strings.Repeat(" ", max(d.Width-d.GlyphWidth, 0))
}

// glyph colours the display text of d.
func glyph(d engine.Decoration) string {
	if d.Reference {
		return referenceGlyph(d.Display)
	}
	return ruleGlyph(d.Display)
}
