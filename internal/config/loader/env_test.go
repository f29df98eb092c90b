package loader

import (
	"reflect"
	"testing"
)

func TestEnvLoader_Load(t *testing.T) {
	l := NewEnvLoaderFrom(DefaultEnvPrefix, []string{
		"TEXPRETTIFY_ENABLED=false",
		"TEXPRETTIFY_HOVER_REVEAL_MS=250",
		"TEXPRETTIFY_MODE=resolved-number",
		"TEXPRETTIFY_DEBUG=1",
		`TEXPRETTIFY_SYMBOLS=[{"original":"->","display":"→"}]`,
		"HOME=/home/u",
		"TEXPRETTIFYX=1",
	})

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := map[string]any{
		"enabled":         false,
		"hover_reveal_ms": int64(250),
		"reference_mask":  "resolved-number",
		"log_level":       "debug",
		"symbols":         []any{map[string]any{"original": "->", "display": "→"}},
	}
	if !reflect.DeepEqual(config, want) {
		t.Errorf("Load = %#v, want %#v", config, want)
	}
}

func TestEnvLoader_DebugOff(t *testing.T) {
	config, _ := NewEnvLoaderFrom(DefaultEnvPrefix, []string{"TEXPRETTIFY_DEBUG=0"}).Load()
	if _, ok := config["log_level"]; ok {
		t.Errorf("DEBUG=0 should not set log_level, got %v", config)
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	l := NewEnvLoaderFrom("TP_", []string{"TP_COLOR=#ff0000"})
	l.AddMapping("TP_COLOR", "highlight_color")
	config, _ := l.Load()
	if config["highlight_color"] != "#ff0000" {
		t.Errorf("highlight_color = %v", config["highlight_color"])
	}
}

func TestEnvLoader_parseValue(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"Off", false},
		{"1", int64(1)},
		{"0", int64(0)},
		{"-20", int64(-20)},
		{"plain-glyph", "plain-glyph"},
		{"[1,", "[1,"},
		{`["a"]`, []any{"a"}},
	}
	for _, tt := range tests {
		if got := l.parseValue(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
