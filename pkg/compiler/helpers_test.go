package compiler

import (
	"testing"

	"github.com/goliatone/go-jade/pkg/ast"
	"github.com/goliatone/go-jade/pkg/program"
)

func mustTree(t *testing.T, doc string) *ast.Block {
	t.Helper()
	tree, err := ast.Decode([]byte(doc), "")
	if err != nil {
		t.Fatalf("decode tree: %v", err)
	}
	return tree
}

func mustCompile(t *testing.T, doc string, options ...Option) *program.Program {
	t.Helper()
	prog, err := Compile(mustTree(t, doc), options...)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return prog
}

func mustRender(t *testing.T, doc string, locals map[string]any, options ...Option) string {
	t.Helper()
	out, err := mustCompile(t, doc, options...).Render(locals)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}
