// Package config provides the prettifier settings.
//
// Settings are layered, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← TEXPRETTIFY_*
//	├─────────────────────────────┤
//	│  2. Settings File           │  ← .texprettify.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Rule tables left empty after layering fall back to the built-in tables
// from the rules package.
//
// # Sub-packages
//
//   - loader: TOML file and environment variable loading
//   - notify: change notification for live reload
//
// # Basic Usage
//
//	store := config.NewStore(&vfs.OSFS{}, ".texprettify.toml")
//	if err := store.Load(); err != nil {
//	    return err
//	}
//	store.Subscribe(func(c notify.Change) {
//	    if c.Has(config.KeyHoverRevealMs) {
//	        // ...
//	    }
//	})
//
// Settings values are copies; modifying one has no effect on the store.
package config
