package compiler

import (
	"strings"

	"github.com/goliatone/go-jade/pkg/ast"
	"github.com/goliatone/go-jade/pkg/expr"
	"github.com/goliatone/go-jade/pkg/program"
)

// defaultEachKey binds the position or property name when an each loop does
// not name one.
const defaultEachKey = "$index"

func (s *state) visitCode(n ast.Node, k func(error)) {
	code := n.(*ast.Code)

	if code.Buffer {
		src := strings.TrimLeft(code.Value, " \t")
		if err := s.parsedExpression(src, code.Escape, true); err != nil {
			k(err)
			return
		}
		s.visitChild(code.Block, k)
		return
	}

	stmt, err := expr.ParseStatement(code.Value)
	if err != nil {
		k(err)
		return
	}
	s.buf.Push(&program.Code{Src: code.Value, Stmt: stmt})
	if code.Block == nil {
		if expr.IsHeader(stmt) {
			k(structuralf("%q requires a block", code.Value))
			return
		}
		k(nil)
		return
	}
	if !expr.IsHeader(stmt) {
		s.visit(code.Block, k)
		return
	}

	s.buf.Push(&program.Open{})
	s.visit(code.Block, func(err error) {
		if err != nil {
			k(err)
			return
		}
		s.buf.Push(&program.Close{})
		k(nil)
	})
}

// visitEach lowers both iteration paths; the program picks one at run time
// from the shape of the iterated value.
func (s *state) visitEach(n ast.Node, k func(error)) {
	each := n.(*ast.Each)
	obj, err := expr.Parse(each.Obj)
	if err != nil {
		k(err)
		return
	}
	key := each.Key
	if key == "" {
		key = defaultEachKey
	}
	if each.Val == "" {
		k(structuralf("each over %q needs a value name", each.Obj))
		return
	}

	alternative := func(next func(error)) func(error) {
		return func(err error) {
			if err != nil || each.Alternative == nil {
				next(err)
				return
			}
			s.buf.Push(&program.EachElse{})
			s.visit(each.Alternative, next)
		}
	}

	s.buf.Push(&program.Each{Src: each.Obj, Obj: obj, Key: key, Val: each.Val})
	s.visitChild(each.Block, alternative(func(err error) {
		if err != nil {
			k(err)
			return
		}
		s.buf.Push(&program.EachKeyed{Key: key, Val: each.Val})
		s.visitChild(each.Block, alternative(func(err error) {
			if err != nil {
				k(err)
				return
			}
			s.buf.Push(&program.Close{})
			k(nil)
		}))
	}))
}

func (s *state) visitCase(n ast.Node, k func(error)) {
	node := n.(*ast.Case)
	subject, err := expr.Parse(node.Expr)
	if err != nil {
		k(err)
		return
	}

	within := s.withinCase
	s.withinCase = true
	s.buf.Push(&program.Switch{Src: node.Expr, Expr: subject})
	s.visitChild(node.Block, func(err error) {
		s.withinCase = within
		if err != nil {
			k(err)
			return
		}
		s.buf.Push(&program.Close{})
		k(nil)
	})
}

// visitWhen lowers one branch. A branch without a body has no break and
// falls through to the next one.
func (s *state) visitWhen(n ast.Node, k func(error)) {
	when := n.(*ast.When)
	if !s.withinCase {
		k(structuralf("when %q outside of a case", when.Expr))
		return
	}
	if when.Expr == ast.DefaultExpr {
		s.buf.Push(&program.Default{})
	} else {
		match, err := expr.Parse(when.Expr)
		if err != nil {
			k(err)
			return
		}
		s.buf.Push(&program.Case{Src: when.Expr, Expr: match})
	}
	if when.Block == nil {
		k(nil)
		return
	}

	within := s.withinCase
	s.withinCase = false
	s.visit(when.Block, func(err error) {
		s.withinCase = within
		if err != nil {
			k(err)
			return
		}
		s.buf.Push(&program.Break{})
		k(nil)
	})
}
