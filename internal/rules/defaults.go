package rules

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var (
	defaultsOnce sync.Once
	defaultSet   Set
)

// Defaults returns the built-in rule tables.
func Defaults() Set {
	defaultsOnce.Do(func() {
		set, err := Parse(defaultsYAML)
		if err != nil {
			panic(fmt.Sprintf("rules: embedded defaults: %v", err))
		}
		defaultSet = set
	})
	return clone(defaultSet)
}

// Parse decodes a YAML rule table and normalizes display text.
func Parse(data []byte) (Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return Set{}, fmt.Errorf("parsing rule table: %w", err)
	}
	normalize(set.Symbols)
	normalize(set.MathCommands)
	normalize(set.TexCommands)
	return set, nil
}

func normalize(rs []Rule) {
	for i := range rs {
		rs[i] = rs[i].Normalized()
	}
}

func clone(s Set) Set {
	return Set{
		Symbols:      append([]Rule(nil), s.Symbols...),
		MathCommands: append([]Rule(nil), s.MathCommands...),
		TexCommands:  append([]Rule(nil), s.TexCommands...),
	}
}
