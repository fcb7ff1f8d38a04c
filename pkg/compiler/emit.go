package compiler

import (
	"strings"

	"github.com/goliatone/go-jade/pkg/expr"
	"github.com/goliatone/go-jade/pkg/program"
	"github.com/goliatone/go-jade/pkg/runtime"
)

// interpolate buffers text, turning `#{expr}` into an escaped expression
// and `!{expr}` into a raw one. A backslash before the marker keeps it as
// literal text.
func (s *state) interpolate(text string) error {
	for {
		at := interpolationMarker(text)
		if at < 0 {
			s.buf.Literal(text)
			return nil
		}
		rest := text[at+2:]
		if at > 0 && text[at-1] == '\\' {
			s.buf.Literal(text[:at-1])
			s.buf.Literal(text[at : at+2])
			text = rest
			continue
		}
		s.buf.Literal(text[:at])

		found, err := expr.ParseMax(rest)
		if err != nil {
			return err
		}
		node, err := expr.Parse(found.Src)
		if err != nil {
			return err
		}
		s.expression(program.Part{Src: found.Src, Expr: node, Escape: text[at] == '#', Interp: true})
		text = rest[found.End+1:]
	}
}

func interpolationMarker(text string) int {
	for i := 0; i+1 < len(text); i++ {
		if (text[i] == '#' || text[i] == '!') && text[i+1] == '{' {
			return i
		}
	}
	return -1
}

// expression buffers a dynamic part, folding it into literal text when the
// expression is constant.
func (s *state) expression(part program.Part) {
	if expr.IsConstantNode(part.Expr) {
		if value, err := expr.Eval(part.Expr, expr.NewScope(nil)); err == nil {
			text := runtime.Interp(value)
			if part.Escape {
				text = runtime.EscapeString(text)
			}
			s.buf.Literal(text)
			return
		}
	}
	s.buf.Expression(part)
}

// parsedExpression parses src and buffers it.
func (s *state) parsedExpression(src string, escape, interp bool) error {
	node, err := expr.Parse(src)
	if err != nil {
		return err
	}
	s.expression(program.Part{Src: src, Expr: node, Escape: escape, Interp: interp})
	return nil
}

// prettyIndent buffers the indentation of the current depth plus offset.
// Inside mixin bodies the call-site indentation is applied at run time.
func (s *state) prettyIndent(offset int, newline bool) {
	text := strings.Repeat("  ", max(s.indents+offset-1, 0))
	if newline {
		text = "\n" + text
	}
	s.buf.Literal(text)
	if s.parentIndents > 0 {
		s.buf.Push(&program.IndentApply{})
	}
}
