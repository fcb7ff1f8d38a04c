package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jade/pkg/compiler"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := `
pretty: true
compileDebug: source
doctype: xml
selfClosing: [img, br]
filters:
  sanitize:
    policy: strict
watch:
  extensions: [YAML, .json]
  debounce: 250ms
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := &Config{
		Pretty:       true,
		CompileDebug: "source",
		Doctype:      "xml",
		SelfClosing:  []string{"img", "br"},
		Filters:      map[string]map[string]any{"sanitize": {"policy": "strict"}},
		Watch: WatchConfig{
			Extensions: []string{".yaml", ".json"},
			Debounce:   250 * time.Millisecond,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.DebugMode() != compiler.DebugSource {
		t.Fatalf("unexpected debug mode %v", cfg.DebugMode())
	}
	if !cfg.Watches("views/index.YAML") || cfg.Watches("main.go") {
		t.Fatalf("unexpected Watches results")
	}

	options, err := cfg.Options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(options) != 5 {
		t.Fatalf("expected 5 options, got %d", len(options))
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed", doc: "pretty: [unterminated"},
		{name: "debug mode", doc: "compileDebug: verbose"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestRegistryAppliesFilterDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("filters:\n  sanitize:\n    policy: strict\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	registry, err := cfg.Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	out, err := registry.Render("sanitize", `<b>bold</b>`, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "bold" {
		t.Fatalf("expected the strict policy to apply, got %q", out)
	}

	unknown, err := Parse([]byte("filters:\n  nope: {}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := unknown.Registry(); err == nil {
		t.Fatalf("expected unknown filter defaults to fail")
	}
}
