package jade

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-jade/pkg/ast"
	"github.com/goliatone/go-jade/pkg/compiler"
	"github.com/goliatone/go-jade/pkg/filters"
	"github.com/goliatone/go-jade/pkg/runtime"
	"github.com/goliatone/go-jade/pkg/testsupport"
	theme "github.com/goliatone/go-theme"
)

func greeting() *ast.Block {
	return &ast.Block{Nodes: []ast.Node{
		&ast.Tag{Name: "p", Block: &ast.Block{Nodes: []ast.Node{
			&ast.Text{Value: "Hello #{name}"},
		}}},
	}}
}

func TestRender(t *testing.T) {
	t.Parallel()

	got, err := Render(greeting(), map[string]any{"name": "<ann>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<p>Hello &lt;ann&gt;</p>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestCompileOptions(t *testing.T) {
	t.Parallel()

	root := &ast.Block{Nodes: []ast.Node{
		&ast.Doctype{},
		&ast.Tag{Name: "ul", Block: &ast.Block{Nodes: []ast.Node{
			&ast.Tag{Name: "li", Block: &ast.Block{}},
		}}},
	}}
	tmpl, err := Compile(root, WithDoctype("xml"), WithPretty(true), WithCompileDebug(DebugOff))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, err := tmpl.Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<?xml version=\"1.0\" encoding=\"utf-8\" ?>\n<ul>\n  <li></li>\n</ul>"
	if got != want {
		t.Fatalf("unexpected output:\nwant %q\n got %q", want, got)
	}
	if tmpl.Program().Meta().Debug {
		t.Fatalf("expected debug records to be off")
	}
}

func TestCacheRequiresFilename(t *testing.T) {
	t.Parallel()

	_, err := Compile(greeting(), WithCache(true))
	if !errors.Is(err, ErrCacheFilename) {
		t.Fatalf("expected ErrCacheFilename, got %v", err)
	}
}

func TestCacheReusesTemplates(t *testing.T) {
	t.Parallel()

	first, err := Compile(greeting(), WithCache(true), WithFilename("cache-reuse.jade"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !Cached("cache-reuse.jade") {
		t.Fatalf("expected template to be cached")
	}

	second, err := Compile(&ast.Block{}, WithCache(true), WithFilename("cache-reuse.jade"))
	if err != nil {
		t.Fatalf("compile cached: %v", err)
	}
	if first != second {
		t.Fatalf("expected the cached template to be returned")
	}

	uncached, err := Compile(greeting(), WithFilename("cache-reuse.jade"))
	if err != nil {
		t.Fatalf("compile uncached: %v", err)
	}
	if uncached == first {
		t.Fatalf("expected a fresh template without WithCache")
	}
}

func TestClearCache(t *testing.T) {
	if _, err := Compile(greeting(), WithCache(true), WithFilename("cache-clear.jade")); err != nil {
		t.Fatalf("compile: %v", err)
	}
	ClearCache()
	if Cached("cache-clear.jade") {
		t.Fatalf("expected cache to be empty")
	}
}

func TestCompileFile(t *testing.T) {
	t.Parallel()

	tmpl, err := CompileFile("testdata/greeting.yaml", WithCache(true))
	if err != nil {
		t.Fatalf("compile file: %v", err)
	}
	if !Cached("testdata/greeting.yaml") {
		t.Fatalf("expected the path to key the cache")
	}
	if got := tmpl.Program().Meta().Filename; got != "testdata/greeting.yaml" {
		t.Fatalf("unexpected filename %q", got)
	}
	got, err := tmpl.Render(map[string]any{"name": "Bo"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<p>Hello Bo</p>" {
		t.Fatalf("unexpected output %q", got)
	}

	if _, err := CompileFile("testdata/missing.yaml"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestCompileFileErrorsSkipTreeDocument(t *testing.T) {
	t.Parallel()

	tmpl, err := CompileFile("testdata/broken.yaml", WithCompileDebug(compiler.DebugLines))
	if err != nil {
		t.Fatalf("compile file: %v", err)
	}
	_, err = tmpl.Render(nil)
	var runtimeErr *runtime.RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if runtimeErr.Filename != "testdata/broken.yaml" || runtimeErr.Line != 2 {
		t.Fatalf("unexpected position %s:%d", runtimeErr.Filename, runtimeErr.Line)
	}
	if runtimeErr.Context != "" {
		t.Fatalf("tree document must not be quoted as source:\n%s", runtimeErr.Context)
	}
	if strings.Contains(err.Error(), "type: Code") {
		t.Fatalf("error quotes the tree document: %q", err.Error())
	}

	tmpl, err = CompileFile("testdata/broken.yaml",
		WithCompileDebug(compiler.DebugSource),
		WithSource("p\n  = user.name\n"),
	)
	if err != nil {
		t.Fatalf("compile file with source: %v", err)
	}
	_, err = tmpl.Render(nil)
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if !strings.Contains(runtimeErr.Context, "  > 2|   = user.name") {
		t.Fatalf("embedded source should be quoted, got:\n%s", runtimeErr.Context)
	}
}

func slowRegistry(t *testing.T) *filters.Registry {
	t.Helper()

	registry := filters.NewRegistry()
	registry.MustRegister(filters.Filter{
		Name: "upper",
		Async: func(ctx context.Context, text string, _ map[string]any, done func(string, error)) {
			go func() {
				select {
				case <-time.After(5 * time.Millisecond):
					done(strings.ToUpper(text), nil)
				case <-ctx.Done():
					done("", ctx.Err())
				}
			}()
		},
	})
	return registry
}

func filterTree() *ast.Block {
	return &ast.Block{Nodes: []ast.Node{
		&ast.Filter{Name: "upper", Block: &ast.Block{Nodes: []ast.Node{
			&ast.Text{Value: "shout"},
		}}},
	}}
}

func TestAsyncFilters(t *testing.T) {
	t.Parallel()

	registry := slowRegistry(t)

	if _, err := Compile(filterTree(), WithFilters(registry)); !errors.Is(err, compiler.ErrAsyncDependencies) {
		t.Fatalf("expected ErrAsyncDependencies, got %v", err)
	}

	got, err := RenderContext(context.Background(), filterTree(), nil, WithFilters(registry))
	if err != nil {
		t.Fatalf("render context: %v", err)
	}
	if got != "SHOUT" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderAsync(t *testing.T) {
	t.Parallel()

	type result struct {
		out string
		err error
	}
	results := make(chan result, 1)
	RenderAsync(context.Background(), filterTree(), nil, func(out string, err error) {
		results <- result{out: out, err: err}
	}, WithFilters(slowRegistry(t)))

	select {
	case res := <-results:
		if res.err != nil {
			t.Fatalf("render async: %v", res.err)
		}
		if res.out != "SHOUT" {
			t.Fatalf("unexpected output %q", res.out)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("callback never ran")
	}
}

func TestCompileAsync(t *testing.T) {
	t.Parallel()

	done := make(chan *Template, 1)
	CompileAsync(context.Background(), greeting(), func(tmpl *Template, err error) {
		if err != nil {
			t.Errorf("compile async: %v", err)
		}
		done <- tmpl
	})

	select {
	case tmpl := <-done:
		if tmpl == nil {
			t.Fatalf("expected a template")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("callback never ran")
	}
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []string
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, name+"/"+variant)
	return s.selection, s.err
}

func themedTree() *ast.Block {
	return &ast.Block{Nodes: []ast.Node{
		&ast.Tag{
			Name:  "p",
			Attrs: []ast.Attribute{{Name: "style", Value: "theme.cssVars", Escaped: true}},
			Block: &ast.Block{},
			Code:  &ast.Code{Value: "theme.name + ':' + theme.tokens.brand", Buffer: true, Escape: true},
		},
	}}
}

func TestThemeSelectorExposesTokens(t *testing.T) {
	t.Parallel()

	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:   "acme",
			Tokens: map[string]string{"brand": "#123456", "space.sm": "4px"},
			Variants: map[string]theme.Variant{
				"dark": {Tokens: map[string]string{"brand": "#654321"}},
			},
		},
	}}

	tmpl, err := Compile(themedTree(), WithThemeSelector(selector, "acme", "dark"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(selector.calls) != 1 || selector.calls[0] != "acme/dark" {
		t.Fatalf("unexpected selector calls %v", selector.calls)
	}

	got, err := tmpl.Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<p style="--brand: #654321; --space-sm: 4px;">acme:#654321</p>`
	if got != want {
		t.Fatalf("unexpected output:\nwant %s\n got %s", want, got)
	}

	override, err := tmpl.Render(map[string]any{
		"theme": map[string]any{"name": "local", "cssVars": "", "tokens": map[string]any{"brand": "red"}},
	})
	if err != nil {
		t.Fatalf("render override: %v", err)
	}
	if override != `<p style="">local:red</p>` {
		t.Fatalf("expected caller locals to win, got %s", override)
	}
}

func TestThemeSelectorErrors(t *testing.T) {
	t.Parallel()

	selector := &stubThemeSelector{err: errors.New("no such theme")}
	_, err := Compile(themedTree(), WithThemeSelector(selector, "missing", ""))
	if err == nil || !strings.Contains(err.Error(), "no such theme") {
		t.Fatalf("expected the selector error, got %v", err)
	}

	empty := &stubThemeSelector{}
	if _, err := Compile(themedTree(), WithThemeSelector(empty, "acme", "")); err == nil {
		t.Fatalf("expected an error for an empty selection")
	}
}

func TestTemplateExecuteStreams(t *testing.T) {
	t.Parallel()

	tmpl, err := CompileFile("testdata/greeting.yaml")
	if err != nil {
		t.Fatalf("compile file: %v", err)
	}
	got := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return tmpl.Execute(testsupport.Context(), w, map[string]any{"name": "Cy"})
	})
	if got != "<p>Hello Cy</p>" {
		t.Fatalf("unexpected output %q", got)
	}
}
