package compiler

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-jade/pkg/ast"
	"github.com/goliatone/go-jade/pkg/program"
)

type handler func(s *state, n ast.Node, k func(error))

var handlers [ast.NumKinds]handler

func init() {
	handlers = [ast.NumKinds]handler{
		ast.KindBlock:        (*state).visitBlock,
		ast.KindText:         (*state).visitText,
		ast.KindLiteral:      (*state).visitLiteral,
		ast.KindCode:         (*state).visitCode,
		ast.KindTag:          (*state).visitTag,
		ast.KindAttributes:   (*state).visitAttributes,
		ast.KindEach:         (*state).visitEach,
		ast.KindCase:         (*state).visitCase,
		ast.KindWhen:         (*state).visitWhen,
		ast.KindMixin:        (*state).visitMixin,
		ast.KindMixinBlock:   (*state).visitMixinBlock,
		ast.KindComment:      (*state).visitComment,
		ast.KindBlockComment: (*state).visitBlockComment,
		ast.KindDoctype:      (*state).visitDoctype,
		ast.KindFilter:       (*state).visitFilter,
	}
	if kind, ok := missingHandler(); ok {
		panic(fmt.Sprintf("compiler: no handler for node kind %s", kind))
	}
}

func missingHandler() (ast.Kind, bool) {
	for kind, h := range handlers {
		if h == nil {
			return ast.Kind(kind), true
		}
	}
	return 0, false
}

// visit lowers n and calls k exactly once. With debug enabled the node is
// bracketed by DebugPush/DebugPop; untracked nodes drop their own push and
// the instruction before it, so they share the record of what precedes them.
func (s *state) visit(n ast.Node, k func(error)) {
	fired := false
	once := func(err error) {
		if fired {
			panic("compiler: continuation called twice")
		}
		fired = true
		k(err)
	}

	kind := n.Kind()
	if kind < 0 || kind >= ast.NumKinds {
		once(structuralf("unknown node kind %s", kind))
		return
	}

	debug := s.cfg.debug != DebugOff
	pos := n.Pos()
	if pos.Filename == "" {
		pos.Filename = s.cfg.filename
	}
	if debug {
		s.buf.Push(&program.DebugPush{Line: pos.Line, Filename: pos.Filename})
		if !n.Tracked() {
			if err := s.buf.Discard(2); err != nil {
				once(annotate(structuralf("%s: %v", kind, err), pos))
				return
			}
		}
	}

	handlers[kind](s, n, func(err error) {
		if err != nil {
			once(annotate(err, pos))
			return
		}
		if debug {
			s.buf.Push(&program.DebugPop{})
		}
		once(nil)
	})
}

// visitChild visits an optional child block.
func (s *state) visitChild(block *ast.Block, k func(error)) {
	if block == nil {
		k(nil)
		return
	}
	s.visit(block, k)
}

// visitBlock visits children in order. Children that complete synchronously
// are driven by the loop rather than by nested continuations; after a
// suspension the loop restarts from the resumed continuation.
func (s *state) visitBlock(n ast.Node, k func(error)) {
	block := n.(*ast.Block)
	nodes := block.Nodes
	if s.cfg.pretty && len(nodes) > 1 && !s.pre && ast.IsText(nodes[0]) && ast.IsText(nodes[1]) {
		s.prettyIndent(1, true)
	}

	i := 0
	inLoop, completed := false, false
	var loop func()
	step := func(err error) {
		if err != nil {
			k(err)
			return
		}
		if i < len(nodes) && ast.IsText(nodes[i-1]) && ast.IsText(nodes[i]) {
			s.buf.Literal("\n")
		}
		if inLoop {
			completed = true
			return
		}
		loop()
	}
	loop = func() {
		for i < len(nodes) {
			if s.cfg.pretty && i > 0 && !s.pre && ast.IsText(nodes[i]) && ast.IsText(nodes[i-1]) {
				s.prettyIndent(1, false)
			}
			child := nodes[i]
			i++
			inLoop, completed = true, false
			s.visit(child, step)
			inLoop = false
			if !completed {
				return
			}
		}
		k(nil)
	}
	loop()
}

func annotate(err error, pos ast.Loc) error {
	var located *Error
	if errors.As(err, &located) || errors.Is(err, ErrAsyncDependencies) {
		return err
	}
	return &Error{Filename: pos.Filename, Line: pos.Line, Err: err}
}
