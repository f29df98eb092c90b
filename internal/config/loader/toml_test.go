package loader

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/texprettify/internal/project/vfs"
)

func TestTOMLLoader_Load(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/cfg/texprettify.toml", `
enabled = true
hover_reveal_ms = 900
reference_mask = "resolved-number"

[[symbols]]
original = "->"
display = "→"
`)

	config, err := NewTOMLLoader(fsys, "/cfg/texprettify.toml").Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if config["enabled"] != true {
		t.Errorf("enabled = %v", config["enabled"])
	}
	if config["hover_reveal_ms"] != int64(900) {
		t.Errorf("hover_reveal_ms = %v (%T)", config["hover_reveal_ms"], config["hover_reveal_ms"])
	}
	symbols, ok := config["symbols"].([]any)
	if !ok || len(symbols) != 1 {
		t.Fatalf("symbols = %#v", config["symbols"])
	}
	want := map[string]any{"original": "->", "display": "→"}
	if !reflect.DeepEqual(symbols[0], want) {
		t.Errorf("symbols[0] = %v, want %v", symbols[0], want)
	}
}

func TestTOMLLoader_Missing(t *testing.T) {
	config, err := NewTOMLLoader(vfs.NewMemFS(), "/nope.toml").Load()
	if err != nil || config != nil {
		t.Errorf("Load of missing file = %v, %v; want nil, nil", config, err)
	}

	config, err = NewTOMLLoader(vfs.NewMemFS(), "").Load()
	if err != nil || config != nil {
		t.Errorf("Load with no path = %v, %v; want nil, nil", config, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/bad.toml", "enabled = true\nhover_reveal_ms = \n")

	_, err := NewTOMLLoader(fsys, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" || perr.Line != 2 {
		t.Errorf("ParseError = %+v, want line 2 of /bad.toml", perr)
	}
	if perr.Unwrap() == nil {
		t.Error("ParseError should wrap the decoder error")
	}
}

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		err  ParseError
		want string
	}{
		{ParseError{Path: "a", Message: "m"}, "parse error in a: m"},
		{ParseError{Path: "a", Line: 3, Message: "m"}, "parse error in a at line 3: m"},
		{ParseError{Path: "a", Line: 3, Column: 7, Message: "m"}, "parse error in a at line 3, column 7: m"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"enabled": true,
		"nested":  map[string]any{"a": 1, "b": 2},
	}
	src := map[string]any{
		"enabled": false,
		"nested":  map[string]any{"b": 3},
		"extra":   "x",
	}

	got := DeepMerge(dst, src)
	want := map[string]any{
		"enabled": false,
		"nested":  map[string]any{"a": 1, "b": 3},
		"extra":   "x",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeepMerge = %v, want %v", got, want)
	}

	if got := DeepMerge(nil, map[string]any{"k": 1}); got["k"] != 1 {
		t.Errorf("DeepMerge(nil, ...) = %v", got)
	}
}
