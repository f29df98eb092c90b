package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/texprettify/internal/config"
	"github.com/dshills/texprettify/internal/engine"
	"github.com/dshills/texprettify/internal/logging"
	"github.com/dshills/texprettify/internal/project/vfs"
	"github.com/dshills/texprettify/internal/textdoc"
)

// settingsFile is looked up in the workspace when --config is not given.
const settingsFile = ".texprettify.toml"

// app wires one document to an engine for a single command run.
type app struct {
	log    *logging.Logger
	store  *config.Store
	doc    *textdoc.Document
	engine *engine.Engine
	root   string

	mu      sync.Mutex
	latest  []engine.Decoration
	onApply func(decorations []engine.Decoration)
}

// newApp loads settings, opens file, and starts an engine for it. mode,
// when not empty, overrides the reference mask from the settings.
func newApp(cmd *cobra.Command, file, mode string) (*app, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, _ := flags.GetString("config")
	root, _ := flags.GetString("workspace")
	level, _ := flags.GetString("log-level")
	colorFlag, _ := flags.GetString("color")

	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return nil, fmt.Errorf("invalid --color %q (must be auto, on, or off)", colorFlag)
	}

	doc, err := textdoc.Open(file)
	if err != nil {
		return nil, err
	}

	if root == "" {
		root = filepath.Dir(doc.Path())
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if configPath == "" {
		configPath = filepath.Join(root, settingsFile)
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(level),
		Output: os.Stderr,
		Prefix: "texprettify",
	})

	store := config.NewStore(&vfs.OSFS{}, configPath, config.WithLogger(log.WithComponent("config")))
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings := store.Settings()
	if level == "" {
		log.SetLevel(settings.Level())
	}

	settings, err = withMode(settings, mode)
	if err != nil {
		return nil, err
	}

	a := &app{
		log:   log,
		store: store,
		doc:   doc,
		root:  root,
	}
	a.engine = engine.New(engine.RendererFunc(a.apply),
		engine.WithLogger(log),
		engine.WithFS(&vfs.OSFS{}),
		engine.WithWorkspace(root),
		engine.WithSettings(settings),
	)
	a.engine.OpenDocument(doc)
	return a, nil
}

// withMode overrides the reference mask when mode is set.
func withMode(s config.Settings, mode string) (config.Settings, error) {
	switch config.ReferenceMask(mode) {
	case "":
	case config.MaskPlainGlyph, config.MaskResolvedNumber:
		s.ReferenceMask = config.ReferenceMask(mode)
	default:
		return s, fmt.Errorf("invalid --mode %q (must be %s or %s)", mode, config.MaskPlainGlyph, config.MaskResolvedNumber)
	}
	return s, nil
}

func (a *app) apply(uri string, decorations []engine.Decoration) {
	a.mu.Lock()
	a.latest = decorations
	fn := a.onApply
	a.mu.Unlock()

	if fn != nil {
		fn(decorations)
	}
}

// decorations recomputes the document and returns its decorations.
func (a *app) decorations(cmd *cobra.Command) ([]engine.Decoration, error) {
	if err := a.engine.Update(cmd.Context(), a.doc.URI()); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest, nil
}

func (a *app) Close() {
	a.engine.Close()
	a.store.Close()
}
