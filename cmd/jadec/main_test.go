package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jade/internal/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRenderCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "locals",
			args: []string{"render", "testdata/hello.yaml", "--locals", "testdata/hello.locals.yaml"},
			want: "<!DOCTYPE html><ul><li>a</li><li>b</li></ul>\n",
		},
		{
			name: "pretty",
			args: []string{"render", "testdata/hello.yaml", "-l", "testdata/hello.locals.yaml", "--pretty"},
			want: "<!DOCTYPE html>\n<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n",
		},
		{
			name: "no locals",
			args: []string{"render", "testdata/hello.yaml", "--debug", "off"},
			want: "<!DOCTYPE html><ul></ul>\n",
		},
		{
			name: "filter",
			args: []string{"render", "testdata/slow.yaml", "--async"},
			want: "<p><em>hi</em></p>\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderCommandWritesOutput(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "hello.html")
	_, stderr, err := execute(t, "render", "testdata/hello.yaml", "-l", "testdata/hello.locals.yaml", "-o", target)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "<!DOCTYPE html><ul><li>a</li><li>b</li></ul>" {
		t.Fatalf("unexpected output %q", data)
	}
	if !strings.Contains(stderr, "rendered") {
		t.Fatalf("expected a confirmation, got %q", stderr)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing tree", args: []string{"render", "testdata/missing.yaml"}, want: "missing.yaml"},
		{name: "bad debug", args: []string{"render", "testdata/hello.yaml", "--debug", "loud"}, want: "--debug"},
		{name: "bad locals", args: []string{"render", "testdata/hello.yaml", "-l", "testdata/missing.locals.yaml"}, want: "read locals"},
		{name: "no args", args: []string{"render"}, want: "arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected an error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRenderCommandUsesProjectFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte("pretty: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, _, err := execute(t, "render", "testdata/hello.yaml", "-l", "testdata/hello.locals.yaml", "--config", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(got, "<!DOCTYPE html>\n<ul>") {
		t.Fatalf("expected pretty output from the project file, got %q", got)
	}

	flat, _, err := execute(t, "render", "testdata/hello.yaml", "-l", "testdata/hello.locals.yaml", "--config", path, "--pretty=false")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(flat, "\n<ul>") {
		t.Fatalf("expected --pretty=false to override the project file, got %q", flat)
	}
}

func TestProgramCommand(t *testing.T) {
	t.Parallel()

	got, stderr, err := execute(t, "program", "testdata/hello.yaml", "--debug", "off")
	if err != nil {
		t.Fatalf("program: %v", err)
	}
	if !strings.Contains(got, "items") {
		t.Fatalf("expected the listing to reference items, got:\n%s", got)
	}
	if !strings.Contains(stderr, "items") {
		t.Fatalf("expected the locals summary, got %q", stderr)
	}
}

func TestWatcherPaths(t *testing.T) {
	t.Parallel()

	target, err := outputPath("views", "dist", filepath.Join("views", "blog", "post.yaml"))
	if err != nil {
		t.Fatalf("output path: %v", err)
	}
	if target != filepath.Join("dist", "blog", "post.html") {
		t.Fatalf("unexpected target %q", target)
	}
	if _, err := outputPath("views", "dist", filepath.Join("other", "x.yaml")); err == nil {
		t.Fatalf("expected paths outside the root to fail")
	}

	if !isLocalsFile("a/page.locals.yaml") || isLocalsFile("a/page.yaml") {
		t.Fatalf("unexpected isLocalsFile results")
	}
	if got := treeFor("a/page.locals.yaml"); got != "a/page.yaml" {
		t.Fatalf("unexpected tree %q", got)
	}
	if got := treeFor("a/page.yaml"); got != "a/page.yaml" {
		t.Fatalf("unexpected tree %q", got)
	}
	if got := localsFor("testdata/hello.yaml"); got != "testdata/hello.locals.yaml" {
		t.Fatalf("unexpected locals %q", got)
	}
	if got := localsFor("testdata/slow.yaml"); got != "" {
		t.Fatalf("expected no locals, got %q", got)
	}
}

func TestWatcherRendersTrees(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := filepath.Join(root, "dist")
	copyFile(t, "testdata/hello.yaml", filepath.Join(root, "pages", "hello.yaml"))
	copyFile(t, "testdata/hello.locals.yaml", filepath.Join(root, "pages", "hello.locals.yaml"))

	cmd := newWatchCommand(new(string))
	cmd.SetContext(context.Background())
	w := &watcher{cmd: cmd, cfg: config.Default(), flags: &compileFlags{}, root: root, out: out}

	trees, err := w.trees()
	if err != nil {
		t.Fatalf("trees: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(root, "pages", "hello.yaml")}, trees); diff != "" {
		t.Fatalf("trees mismatch (-want +got):\n%s", diff)
	}

	w.renderAll()
	data, err := os.ReadFile(filepath.Join(out, "pages", "hello.html"))
	if err != nil {
		t.Fatalf("read rendered page: %v", err)
	}
	if string(data) != "<!DOCTYPE html><ul><li>a</li><li>b</li></ul>" {
		t.Fatalf("unexpected page %q", data)
	}
}

func copyFile(t *testing.T, from, to string) {
	t.Helper()

	data, err := os.ReadFile(from)
	if err != nil {
		t.Fatalf("read %s: %v", from, err)
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(to, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", to, err)
	}
}
