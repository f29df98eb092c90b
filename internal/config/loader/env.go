package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "TEXPRETTIFY_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "TEXPRETTIFY_")
	mapping map[string]string // Env var -> config key
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// NewEnvLoaderFrom creates a loader reading from a fixed environment
// instead of the process environment.
func NewEnvLoaderFrom(prefix string, environ []string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.environ = func() []string { return environ }
	return l
}

// defaultEnvMapping maps the short names that don't follow the
// PREFIX_KEY convention.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "HOLD_MS":    "hover_reveal_ms",
		prefix + "MODE":       "reference_mask",
		prefix + "OUTPUT_DIR": "aux_output_dir",
		prefix + "DEBUG":      "log_level",
	}
}

// Load reads the environment and returns a configuration map.
// Empty values are treated as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if key, mapped := l.mapping[name]; mapped {
			if key == "log_level" {
				// PREFIX_DEBUG=1 is a switch, not a level.
				if b, ok := parseBool(value); ok && b {
					config[key] = "debug"
				}
				continue
			}
			config[key] = l.parseValue(value)
			continue
		}
		config[l.envToKey(name)] = l.parseValue(value)
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, key string) {
	l.mapping[envVar] = key
}

// envToKey converts TEXPRETTIFY_HOVER_REVEAL_MS to hover_reveal_ms.
func (l *EnvLoader) envToKey(env string) string {
	return strings.ToLower(strings.TrimPrefix(env, l.prefix))
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// parseValue attempts to parse the string value into an appropriate type.
// Digits are integers; "1" and "0" are not read as booleans.
func (l *EnvLoader) parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Rule tables as JSON arrays.
	if (strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")) && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}

	return s
}
