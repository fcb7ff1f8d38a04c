package compiler

import (
	"github.com/goliatone/go-jade/pkg/ast"
)

// isSelfClosing reports whether the tag skips its body and closing tag. In
// xml mode every tag is closed explicitly.
func (s *state) isSelfClosing(tag *ast.Tag) bool {
	if s.xml {
		return false
	}
	if tag.SelfClosing {
		return true
	}
	if tag.Buffer {
		return false
	}
	_, ok := s.cfg.selfClosing[tag.Name]
	return ok
}

func (s *state) bufferName(tag *ast.Tag) error {
	if tag.Buffer {
		return s.parsedExpression(tag.Name, false, false)
	}
	s.buf.Literal(tag.Name)
	return nil
}

func (s *state) openTag(tag *ast.Tag) error {
	s.buf.Literal("<")
	if err := s.bufferName(tag); err != nil {
		return err
	}
	if len(tag.Attrs) > 0 {
		return s.processAttributes(tag.Attrs)
	}
	return nil
}

func (s *state) visitTag(n ast.Node, k func(error)) {
	tag := n.(*ast.Tag)
	s.indents++

	if !s.hasCompiledTag {
		if !s.hasCompiledDoctype && tag.Name == "html" && !tag.Buffer {
			s.processDoctype("")
		}
		s.hasCompiledTag = true
	}

	if s.cfg.pretty && !tag.IsInline() {
		s.prettyIndent(0, true)
	}

	if err := s.openTag(tag); err != nil {
		k(err)
		return
	}
	if s.isSelfClosing(tag) {
		if s.terse {
			s.buf.Literal(">")
		} else {
			s.buf.Literal("/>")
		}
		s.indents--
		k(nil)
		return
	}
	s.buf.Literal(">")

	body := func(err error) {
		if err != nil {
			k(err)
			return
		}
		pre := s.pre
		s.pre = tag.Name == "pre"
		s.visitChild(tag.Block, func(err error) {
			s.pre = pre
			if err != nil {
				k(err)
				return
			}
			if s.cfg.pretty && !tag.IsInline() && tag.Name != "pre" && !tag.CanInline() {
				s.prettyIndent(0, true)
			}
			s.buf.Literal("</")
			if err := s.bufferName(tag); err != nil {
				k(err)
				return
			}
			s.buf.Literal(">")
			s.indents--
			k(nil)
		})
	}

	if tag.Code != nil {
		s.visit(tag.Code, body)
		return
	}
	body(nil)
}
