package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goliatone/go-jade/pkg/ast"
	"github.com/goliatone/go-jade/pkg/filters"
	"github.com/goliatone/go-jade/pkg/program"
)

// Compiler turns one node tree into render programs. A Compiler is
// immutable; every compile call owns a fresh state, so concurrent calls
// only share the read-only tree.
type Compiler struct {
	root *ast.Block
	cfg  config
}

// New creates a compiler for root.
func New(root *ast.Block, options ...Option) *Compiler {
	return &Compiler{root: root, cfg: newConfig(options...)}
}

// Compile compiles root synchronously. See Compiler.Compile.
func Compile(root *ast.Block, options ...Option) (*program.Program, error) {
	return New(root, options...).Compile()
}

// Compile lowers the tree without waiting on asynchronous filters. Filters
// run through their synchronous implementation; a filter that only has an
// asynchronous one fails the compilation with ErrAsyncDependencies.
func (c *Compiler) Compile() (*program.Program, error) {
	return c.compile(context.Background(), false)
}

// CompileContext lowers the tree, waiting on asynchronous filters until ctx
// is done.
func (c *Compiler) CompileContext(ctx context.Context) (*program.Program, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.compile(ctx, true)
}

// CompileAsync runs CompileContext on a new goroutine and reports the
// result through done.
func (c *Compiler) CompileAsync(ctx context.Context, done func(*program.Program, error)) {
	go func() {
		done(c.CompileContext(ctx))
	}()
}

func (c *Compiler) compile(ctx context.Context, wait bool) (*program.Program, error) {
	if c.root == nil {
		return nil, errors.New("compiler: root block is required")
	}
	started := time.Now()
	s := newState(ctx, c.root, c.cfg, wait)
	if err := s.run(); err != nil {
		return nil, err
	}

	meta := program.Meta{
		Filename: c.cfg.filename,
		Document: c.cfg.document,
		Debug:    c.cfg.debug != DebugOff,
	}
	if c.cfg.debug == DebugSource {
		meta.Source = c.cfg.source
	}
	prog, err := program.Build(s.buf.Instructions(), meta)
	if err != nil {
		return nil, fmt.Errorf("compiler: link program: %w", err)
	}
	s.log("compiled", "instructions", len(s.buf.Instructions()), "elapsed", time.Since(started))
	return prog, nil
}

type pendingTask struct {
	filter string
	call   *filters.Call
	resume func(string, error)
}

// state is the CompilerState of one compile invocation.
type state struct {
	ctx  context.Context
	root *ast.Block
	cfg  config
	buf  program.Buffer

	indents       int
	parentIndents int

	doctype            string
	doctypeLocked      bool
	terse              bool
	xml                bool
	hasCompiledDoctype bool
	hasCompiledTag     bool

	withinCase bool
	inMixin    bool
	// pre suppresses pretty printing of text inside <pre>.
	pre bool

	// wait selects asynchronous filter implementations.
	wait    bool
	pending *pendingTask
}

func newState(ctx context.Context, root *ast.Block, cfg config, wait bool) *state {
	s := &state{ctx: ctx, root: root, cfg: cfg, wait: wait}
	if cfg.doctype != "" {
		s.setDoctype(cfg.doctype)
	}
	return s
}

// run drives the traversal. Suspended filters are awaited on the calling
// goroutine; only waiting compilations start them.
func (s *state) run() error {
	finished := false
	var result error
	s.visit(s.root, func(err error) {
		finished = true
		result = err
	})

	for !finished {
		task := s.pending
		if task == nil {
			return errors.New("compiler: traversal stopped without a pending operation")
		}
		s.pending = nil
		s.log("waiting on filter", "filter", task.filter)
		out, err := task.call.Wait(s.ctx)
		s.log("resuming", "filter", task.filter)
		task.resume(out, err)
	}
	return result
}

// suspend parks the traversal until call completes.
func (s *state) suspend(name string, call *filters.Call, resume func(string, error)) {
	s.pending = &pendingTask{filter: name, call: call, resume: resume}
}

func (s *state) log(msg string, args ...any) {
	if s.cfg.logger == nil {
		return
	}
	s.cfg.logger.LogAttrs(s.ctx, slog.LevelDebug, "compiler: "+msg, slog.String("filename", s.cfg.filename), slog.Group("details", args...))
}
