package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var spansCmd = &cobra.Command{
	Use:   "spans [flags] FILE",
	Short: "List the substitution spans of a LaTeX file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpans,
}

func init() {
	spansCmd.Flags().String("mode", "", "reference display (plain-glyph|resolved-number)")
	spansCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runSpans(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	a, err := newApp(cmd, args[0], mode)
	if err != nil {
		return err
	}
	defer a.Close()

	ds, err := a.decorations(cmd)
	if err != nil {
		return fmt.Errorf("scan %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		doc, err := spansJSON(a.doc.URI(), ds)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, doc)
		return err
	}
	return writeSpans(out, ds, ruleGlyph)
}
