package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/texprettify/internal/config"
	"github.com/dshills/texprettify/internal/config/notify"
	"github.com/dshills/texprettify/internal/engine"
	"github.com/dshills/texprettify/internal/project/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] FILE",
	Short: "Re-render a LaTeX file whenever it, its build output, or the settings change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("mode", "", "reference display (plain-glyph|resolved-number)")
	watchCmd.Flags().Bool("align", false, "pad glyphs to the width of their source so columns line up")
}

var header = color.New(color.Faint)

func runWatch(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	align, _ := cmd.Flags().GetBool("align")

	a, err := newApp(cmd, args[0], mode)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	a.mu.Lock()
	a.onApply = func(ds []engine.Decoration) { printRender(out, a, ds, painter(align)) }
	a.mu.Unlock()

	ws, err := watcher.NewWorkspace(a.root, a.store.Path(), watcher.DefaultDebounce, a.log.WithComponent("watch"))
	if err != nil {
		return fmt.Errorf("watch %s: %w", a.root, err)
	}
	defer ws.Close()

	sub := a.store.Subscribe(func(c notify.Change) {
		s, ok := c.New.(config.Settings)
		if !ok {
			return
		}
		if s, err := withMode(s, mode); err == nil {
			a.log.Info("settings changed: %v", c.Keys)
			a.engine.OnConfigChanged(s)
		}
	})
	defer sub.Unsubscribe()

	if err := a.engine.Update(ctx, a.doc.URI()); err != nil {
		return err
	}

	ws.Run(ctx, watcher.Handlers{
		OnAux: func(path string, _ watcher.Op) {
			a.engine.OnAuxFileChanged(path)
		},
		OnConfig: func(string, watcher.Op) {
			// Failures keep the previous settings and are logged.
			_ = a.store.Reload()
		},
		OnSource: func(path string, op watcher.Op) {
			if filepath.Clean(path) != a.doc.Path() {
				a.engine.OnSourceFileChanged(path)
				return
			}
			if op&watcher.OpRemove != 0 {
				return
			}
			data, err := os.ReadFile(path)
			if err != nil {
				a.log.Warn("reload %s: %v", path, err)
				return
			}
			a.doc.SetText(string(data))
			a.engine.OnDocumentChanged(a.doc)
		},
	})
	return nil
}

func printRender(w io.Writer, a *app, ds []engine.Decoration, paint func(engine.Decoration) string) {
	header.Fprintf(w, "--- %s (version %d, %d substitutions)\n", a.doc.Path(), a.doc.Version(), len(ds))
	fmt.Fprint(w, substitute(a.doc.Text(), ds, paint))
}
