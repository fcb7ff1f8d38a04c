package compiler

import "github.com/goliatone/go-jade/pkg/ast"

func (s *state) visitText(n ast.Node, k func(error)) {
	k(s.interpolate(n.(*ast.Text).Value))
}

func (s *state) visitLiteral(n ast.Node, k func(error)) {
	s.buf.Literal(n.(*ast.Literal).Value)
	k(nil)
}

func (s *state) visitComment(n ast.Node, k func(error)) {
	comment := n.(*ast.Comment)
	if comment.Buffer {
		if s.cfg.pretty {
			s.prettyIndent(1, true)
		}
		s.buf.Literal("<!--" + comment.Value + "-->")
	}
	k(nil)
}

func (s *state) visitBlockComment(n ast.Node, k func(error)) {
	comment := n.(*ast.BlockComment)
	if !comment.Buffer {
		k(nil)
		return
	}
	if s.cfg.pretty {
		s.prettyIndent(1, true)
	}
	s.buf.Literal("<!--" + comment.Value)
	s.visitChild(comment.Block, func(err error) {
		if err != nil {
			k(err)
			return
		}
		if s.cfg.pretty {
			s.prettyIndent(1, true)
		}
		s.buf.Literal("-->")
		k(nil)
	})
}
