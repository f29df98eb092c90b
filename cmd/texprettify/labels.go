package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels FILE",
	Short: "Print the label numbers found in the LaTeX build output",
	Args:  cobra.ExactArgs(1),
	RunE:  runLabels,
}

func runLabels(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, args[0], "")
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.engine.ResolveLabels(cmd.Context(), a.doc.URI())
	if err != nil {
		return fmt.Errorf("resolve labels: %w", err)
	}
	return writeLabels(cmd.OutOrStdout(), res, referenceGlyph)
}
