package jade

import (
	"context"
	"errors"

	"github.com/goliatone/go-jade/pkg/ast"
	"github.com/goliatone/go-jade/pkg/compiler"
	"github.com/goliatone/go-jade/pkg/program"
)

// ErrCacheFilename is returned when caching is requested for an unnamed
// template.
var ErrCacheFilename = errors.New("jade: the \"filename\" option is required for caching")

// Compile compiles root without waiting on asynchronous filters.
func Compile(root *ast.Block, options ...Option) (*Template, error) {
	return compile(context.Background(), false, treeOf(root), newSettings(options...))
}

// CompileContext compiles root, waiting on asynchronous filters until ctx
// is done.
func CompileContext(ctx context.Context, root *ast.Block, options ...Option) (*Template, error) {
	return compile(ctx, true, treeOf(root), newSettings(options...))
}

// CompileAsync compiles root on a new goroutine and reports through done.
func CompileAsync(ctx context.Context, root *ast.Block, done func(*Template, error), options ...Option) {
	go func() {
		done(CompileContext(ctx, root, options...))
	}()
}

// CompileFile decodes the tree document at path and compiles it. The path
// is the default filename, so it can be combined with WithCache. Runtime
// errors never quote the document itself; pass WithSource to embed the
// template text.
func CompileFile(path string, options ...Option) (*Template, error) {
	return CompileFileContext(context.Background(), path, options...)
}

// CompileFileContext is CompileFile waiting on asynchronous filters.
func CompileFileContext(ctx context.Context, path string, options ...Option) (*Template, error) {
	defaults := []Option{WithFilename(path), WithCompilerOptions(compiler.WithDocument(path))}
	s := newSettings(append(defaults, options...)...)
	return compile(ctx, true, func() (*ast.Block, error) {
		return ast.DecodeFile(path)
	}, s)
}

// Render compiles root and renders it against locals.
func Render(root *ast.Block, locals map[string]any, options ...Option) (string, error) {
	tmpl, err := Compile(root, options...)
	if err != nil {
		return "", err
	}
	return tmpl.Render(locals)
}

// RenderContext compiles root, waiting on asynchronous filters, and renders
// it against locals.
func RenderContext(ctx context.Context, root *ast.Block, locals map[string]any, options ...Option) (string, error) {
	tmpl, err := CompileContext(ctx, root, options...)
	if err != nil {
		return "", err
	}
	return tmpl.RenderContext(ctx, locals)
}

// RenderAsync runs RenderContext on a new goroutine and reports through
// done.
func RenderAsync(ctx context.Context, root *ast.Block, locals map[string]any, done func(string, error), options ...Option) {
	go func() {
		done(RenderContext(ctx, root, locals, options...))
	}()
}

func treeOf(root *ast.Block) func() (*ast.Block, error) {
	return func() (*ast.Block, error) {
		return root, nil
	}
}

func compile(ctx context.Context, wait bool, load func() (*ast.Block, error), s settings) (*Template, error) {
	if s.cache {
		if s.filename == "" {
			return nil, ErrCacheFilename
		}
		if tmpl, ok := templates.get(s.filename); ok {
			return tmpl, nil
		}
	}

	root, err := load()
	if err != nil {
		return nil, err
	}

	c := compiler.New(root, s.compilerOptions()...)
	var prog *program.Program
	if wait {
		prog, err = c.CompileContext(ctx)
	} else {
		prog, err = c.Compile()
	}
	if err != nil {
		return nil, err
	}

	tmpl := &Template{program: prog}
	if s.selector != nil {
		selected, err := selectTheme(s)
		if err != nil {
			return nil, err
		}
		tmpl.theme = selected
	}

	if s.cache {
		templates.put(s.filename, tmpl)
	}
	return tmpl, nil
}
