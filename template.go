package jade

import (
	"context"
	"io"

	"github.com/goliatone/go-jade/pkg/expr"
	"github.com/goliatone/go-jade/pkg/program"
)

// ThemeLocal is the local a selected theme is exposed under.
const ThemeLocal = "theme"

// Template is a compiled template. It is safe for concurrent use.
type Template struct {
	program *program.Program
	theme   *expr.Object
}

// Program returns the compiled program.
func (t *Template) Program() *program.Program {
	return t.program
}

// Render renders the template against locals.
func (t *Template) Render(locals map[string]any) (string, error) {
	return t.RenderContext(context.Background(), locals)
}

// RenderContext is Render with cancellation.
func (t *Template) RenderContext(ctx context.Context, locals map[string]any) (string, error) {
	return t.program.RenderContext(ctx, t.locals(locals))
}

// Execute streams the output to w.
func (t *Template) Execute(ctx context.Context, w io.Writer, locals map[string]any) error {
	return t.program.Execute(ctx, w, t.locals(locals))
}

// locals adds the theme unless the caller supplies one.
func (t *Template) locals(locals map[string]any) map[string]any {
	if t.theme == nil {
		return locals
	}
	if _, ok := locals[ThemeLocal]; ok {
		return locals
	}
	out := make(map[string]any, len(locals)+1)
	for key, value := range locals {
		out[key] = value
	}
	out[ThemeLocal] = t.theme
	return out
}
