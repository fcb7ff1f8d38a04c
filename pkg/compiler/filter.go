package compiler

import (
	"errors"
	"strings"

	"github.com/goliatone/go-jade/pkg/ast"
	"github.com/goliatone/go-jade/pkg/filters"
)

// visitFilter runs a filter over the text of its block and buffers the
// result with interpolation. This is the only handler that may suspend, and
// only while waiting; a synchronous compilation never starts an
// asynchronous implementation.
func (s *state) visitFilter(n ast.Node, k func(error)) {
	filter := n.(*ast.Filter)
	text, err := filterText(filter)
	if err != nil {
		k(err)
		return
	}
	options := make(map[string]any, len(filter.Attrs)+1)
	for key, value := range filter.Attrs {
		options[key] = value
	}
	options["filename"] = s.cfg.filename

	finish := func(out string, err error) {
		if err != nil {
			if errors.Is(err, filters.ErrUnknownFilter) {
				err = &UnknownFilterError{Name: filter.Name, Err: err}
			}
			k(err)
			return
		}
		k(s.interpolate(out))
	}

	if !s.wait {
		out, err := s.cfg.filters.Render(filter.Name, text, options)
		if errors.Is(err, filters.ErrAsyncOnly) {
			s.log("filter needs an asynchronous compile", "filter", filter.Name)
			k(ErrAsyncDependencies)
			return
		}
		finish(out, err)
		return
	}

	call := s.cfg.filters.Start(s.ctx, filter.Name, text, options)
	if call.Ready() {
		finish(call.Result())
		return
	}
	s.log("filter suspended", "filter", filter.Name)
	s.suspend(filter.Name, call, finish)
}

func filterText(filter *ast.Filter) (string, error) {
	if filter.Block == nil {
		return "", nil
	}
	lines := make([]string, 0, len(filter.Block.Nodes))
	for _, child := range filter.Block.Nodes {
		switch typed := child.(type) {
		case *ast.Text:
			lines = append(lines, typed.Value)
		case *ast.Literal:
			lines = append(lines, typed.Value)
		default:
			return "", structuralf("filter :%s may only contain text, got %s", filter.Name, child.Kind())
		}
	}
	return strings.Join(lines, "\n"), nil
}
