package config

import (
	"fmt"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/texprettify/internal/config/loader"
	"github.com/dshills/texprettify/internal/project/vfs"
)

// Sources are the layers settings are built from. Nil loaders are
// skipped.
type Sources struct {
	File *loader.TOMLLoader
	Env  *loader.EnvLoader
}

// NewSources returns the file at path plus the TEXPRETTIFY_ environment.
func NewSources(fsys vfs.FS, path string) Sources {
	return Sources{
		File: loader.NewTOMLLoader(fsys, path),
		Env:  loader.NewEnvLoader(loader.DefaultEnvPrefix),
	}
}

// Load merges the sources over the defaults and validates the result.
// Warnings describe values that were corrected.
func Load(src Sources) (Settings, []string, error) {
	merged := make(map[string]any)
	name := "defaults"

	if src.File != nil {
		m, err := src.File.Load()
		if err != nil {
			return Settings{}, nil, err
		}
		if m != nil {
			merged = loader.DeepMerge(merged, m)
			name = src.File.Path()
		}
	}
	if src.Env != nil {
		m, err := src.Env.Load()
		if err != nil {
			return Settings{}, nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, m)
	}

	return build(name, merged)
}

// Parse decodes settings from TOML data over the defaults.
func Parse(data []byte) (Settings, []string, error) {
	m, err := loader.Parse("<input>", data)
	if err != nil {
		return Settings{}, nil, err
	}
	return build("<input>", m)
}

func build(source string, m map[string]any) (Settings, []string, error) {
	var unknown []string
	for k := range m {
		if !slices.Contains(keys, k) {
			unknown = append(unknown, fmt.Sprintf("unknown setting %q ignored", k))
			delete(m, k)
		}
	}
	slices.Sort(unknown)

	s, err := decode(source, m)
	if err != nil {
		return Settings{}, nil, err
	}
	s, warnings := Validate(s)
	return s, append(unknown, warnings...), nil
}

// decode applies a raw map over the defaults. The map is re-encoded so
// the typed decoder handles field matching and conversions.
func decode(source string, m map[string]any) (Settings, error) {
	s := Defaults()
	if len(m) == 0 {
		return s, nil
	}

	data, err := toml.Marshal(m)
	if err != nil {
		return Settings{}, &DecodeError{Source: source, Err: err}
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, &DecodeError{Source: source, Err: err}
	}
	return s, nil
}
