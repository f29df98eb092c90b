// Package main is the entry point for the texprettify command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "texprettify",
	Short: "Prettify LaTeX source with Unicode substitutions",
	Long: `texprettify shows LaTeX source with commands and symbols replaced by
their Unicode glyphs, and \ref / \eqref replaced by the numbers from the
last LaTeX build.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(spansCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(watchCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "settings file (default <workspace>/.texprettify.toml)")
	rootCmd.PersistentFlags().StringP("workspace", "w", "", "workspace directory (default: directory of FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error); overrides the settings file")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
