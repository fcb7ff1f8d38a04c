package program

import (
	"context"
	"strings"

	"github.com/goliatone/go-jade/pkg/expr"
)

// Names bound by the interpreter rather than by render locals.
const (
	IntrinsicName  = "jade"
	BlockName      = "block"
	AttributesName = "attributes"
	EscapedName    = "escaped"
)

// Meta describes the template a program was compiled from.
type Meta struct {
	Filename string
	// Source is embedded for richer runtime diagnostics; when empty the
	// file is read on demand.
	Source string
	// Document is the node tree document the program was decoded from. It
	// is never read as template source.
	Document string
	// Debug enables line tracking and error enrichment.
	Debug bool
}

// Program is an executable render program. It is immutable and safe for
// concurrent use: every execution owns its own state.
type Program struct {
	instructions []Instruction
	root         []node
	meta         Meta
}

// Build links an instruction stream into a program.
func Build(instructions []Instruction, meta Meta) (*Program, error) {
	root, err := link(instructions)
	if err != nil {
		return nil, err
	}
	return &Program{instructions: instructions, root: root, meta: meta}, nil
}

// Instructions returns the flat instruction stream.
func (p *Program) Instructions() []Instruction {
	return p.instructions
}

// Meta returns the program metadata.
func (p *Program) Meta() Meta {
	return p.meta
}

// Render executes the program against locals and returns the output.
func (p *Program) Render(locals map[string]any) (string, error) {
	return p.RenderContext(context.Background(), locals)
}

// RenderContext is Render with cancellation.
func (p *Program) RenderContext(ctx context.Context, locals map[string]any) (string, error) {
	var b strings.Builder
	if err := p.Execute(ctx, &b, locals); err != nil {
		return "", err
	}
	return b.String(), nil
}

// String returns a JavaScript-like listing of the instruction stream.
func (p *Program) String() string {
	var b strings.Builder
	depth := 0
	write := func(line string) {
		b.WriteString(strings.Repeat("  ", max(depth, 0)))
		b.WriteString(line)
		b.WriteByte('\n')
	}

	for i := 0; i < len(p.instructions); i++ {
		in := p.instructions[i]
		switch typed := in.(type) {
		case *Code:
			if i+1 < len(p.instructions) {
				if _, ok := p.instructions[i+1].(*Open); ok {
					write(typed.Src + " {")
					depth++
					i++
					continue
				}
			}
			write(strings.TrimRight(typed.Src, "; ") + ";")
		case *Close:
			depth--
			write("}")
		case *EachElse, *EachKeyed:
			depth--
			write(in.String())
			depth++
		case *Open, *Switch, *Each, *MixinDef:
			write(in.String())
			depth++
		case *MixinCall:
			write(in.String())
			if typed.Block {
				depth++
			}
		default:
			write(in.String())
		}
	}
	return b.String()
}

// Globals lists the free identifiers the program reads from its locals, in
// first-use order. Names declared anywhere in the program and interpreter
// intrinsics are excluded.
func (p *Program) Globals() []string {
	declared := map[string]bool{
		IntrinsicName:  true,
		BlockName:      true,
		AttributesName: true,
		EscapedName:    true,
	}
	var refs []string
	seen := make(map[string]bool)
	use := func(names ...string) {
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				refs = append(refs, name)
			}
		}
	}
	useNode := func(n expr.Node) {
		if n != nil {
			use(expr.Names(n)...)
		}
	}

	for _, in := range p.instructions {
		switch typed := in.(type) {
		case *Emit:
			for _, part := range typed.Parts {
				useNode(part.Expr)
			}
		case *Code:
			stmtRefs, decls := expr.StmtNames(typed.Stmt)
			use(stmtRefs...)
			for _, name := range decls {
				declared[name] = true
			}
		case *Switch:
			useNode(typed.Expr)
		case *Case:
			useNode(typed.Expr)
		case *Each:
			useNode(typed.Obj)
			declared[typed.Key] = true
			declared[typed.Val] = true
		case *MixinDef:
			for _, name := range typed.Params {
				declared[name] = true
			}
			if typed.Rest != "" {
				declared[typed.Rest] = true
			}
		case *MixinCall:
			for _, arg := range typed.Args {
				useNode(arg)
			}
			useNode(typed.Attributes)
			useNode(typed.Escaped)
		}
	}

	globals := make([]string, 0, len(refs))
	for _, name := range refs {
		if !declared[name] {
			globals = append(globals, name)
		}
	}
	return globals
}
