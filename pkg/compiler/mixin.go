package compiler

import (
	"strings"

	"github.com/goliatone/go-jade/pkg/ast"
	"github.com/goliatone/go-jade/pkg/expr"
	"github.com/goliatone/go-jade/pkg/program"
)

func (s *state) visitMixin(n ast.Node, k func(error)) {
	mixin := n.(*ast.Mixin)
	if strings.TrimSpace(mixin.Name) == "" {
		k(structuralf("mixin name is required"))
		return
	}
	if mixin.Call {
		s.callMixin(mixin, k)
		return
	}
	s.defineMixin(mixin, k)
}

// defineMixin lowers a mixin body at depth zero; call sites splice in their
// indentation at run time.
func (s *state) defineMixin(mixin *ast.Mixin, k func(error)) {
	params, rest, err := expr.ParseParams(mixin.Args)
	if err != nil {
		k(err)
		return
	}
	s.buf.Push(&program.MixinDef{Name: mixin.Name, Params: params, Rest: rest})

	indents, inMixin := s.indents, s.inMixin
	s.indents = 0
	s.parentIndents++
	s.inMixin = true
	s.visitChild(mixin.Block, func(err error) {
		s.indents, s.inMixin = indents, inMixin
		s.parentIndents--
		if err != nil {
			k(err)
			return
		}
		s.buf.Push(&program.Close{})
		k(nil)
	})
}

func (s *state) callMixin(mixin *ast.Mixin, k func(error)) {
	args, err := expr.ParseList(mixin.Args)
	if err != nil {
		k(err)
		return
	}
	call := &program.MixinCall{Name: mixin.Name, ArgsSrc: strings.TrimSpace(mixin.Args), Args: args}
	if len(mixin.Attrs) > 0 {
		if err := mixinAttributes(call, mixin.Attrs); err != nil {
			k(err)
			return
		}
	}

	if s.cfg.pretty {
		s.buf.Push(&program.IndentPush{Text: strings.Repeat("  ", s.indents)})
	}
	finish := func() {
		if s.cfg.pretty {
			s.buf.Push(&program.IndentPop{})
		}
		k(nil)
	}

	if mixin.Block == nil {
		s.buf.Push(call)
		finish()
		return
	}

	call.Block = true
	s.buf.Push(call)
	indents := s.indents
	s.indents = 0
	s.parentIndents++
	s.visit(mixin.Block, func(err error) {
		s.indents = indents
		s.parentIndents--
		if err != nil {
			k(err)
			return
		}
		s.buf.Push(&program.Close{})
		finish()
	})
}

func (s *state) visitMixinBlock(_ ast.Node, k func(error)) {
	if !s.inMixin {
		k(structuralf("anonymous blocks are not allowed outside a mixin"))
		return
	}
	if s.cfg.pretty {
		s.buf.Push(&program.IndentPush{Text: strings.Repeat("  ", s.indents)})
	}
	s.buf.Push(&program.Yield{})
	if s.cfg.pretty {
		s.buf.Push(&program.IndentPop{})
	}
	k(nil)
}
