package program

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-jade/pkg/expr"
)

// LinkError reports an instruction stream whose regions do not nest, such
// as an Open without a header or an else that follows no if.
type LinkError struct {
	Index int
	Msg   string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("program: instruction %d: %s", e.Index, e.Msg)
}

type node interface{}

type (
	emitNode struct{ parts []Part }
	stmtNode struct{ stmt expr.Stmt }

	ifBranch struct {
		cond expr.Node
		body []node
	}
	ifNode struct {
		branches []ifBranch
		closed   bool
	}
	whileNode struct {
		cond expr.Node
		body []node
	}
	forNode struct {
		header *expr.ForStmt
		body   []node
	}
	switchNode struct {
		expr expr.Node
		body []node
	}
	caseLabel    struct{ expr expr.Node }
	defaultLabel struct{}
	breakNode    struct{}

	eachNode struct {
		obj       expr.Node
		key, val  string
		seq       []node
		seqElse   []node
		keyed     []node
		keyedElse []node
	}
	mixinDefNode struct {
		name   string
		params []string
		rest   string
		body   []node
	}
	mixinCallNode struct {
		name       string
		args       []expr.Node
		attributes expr.Node
		escaped    expr.Node
		block      []node
		hasBlock   bool
	}
	yieldNode       struct{}
	indentPushNode  struct{ text string }
	indentPopNode   struct{}
	indentApplyNode struct{}
	debugPushNode   struct {
		line     int
		filename string
	}
	debugPopNode struct{}
)

type linker struct {
	instructions []Instruction
	pos          int
	switchDepth  int
}

func link(instructions []Instruction) ([]node, error) {
	l := &linker{instructions: instructions}
	nodes, _, err := l.sequence()
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func (l *linker) errorf(format string, args ...any) error {
	return &LinkError{Index: l.pos - 1, Msg: fmt.Sprintf(format, args...)}
}

// sequence links instructions until one of the terminators (which is
// consumed and returned) or, with no terminators, the end of the stream.
func (l *linker) sequence(terminators ...Instruction) ([]node, Instruction, error) {
	var nodes []node
	for l.pos < len(l.instructions) {
		in := l.instructions[l.pos]
		l.pos++

		for _, term := range terminators {
			if sameKind(in, term) {
				return nodes, in, nil
			}
		}

		switch typed := in.(type) {
		case *Emit:
			nodes = append(nodes, &emitNode{parts: typed.Parts})
		case *Code:
			linked, err := l.code(typed, nodes)
			if err != nil {
				return nil, nil, err
			}
			if linked != nil {
				nodes = append(nodes, linked)
			}
		case *Switch:
			l.switchDepth++
			body, _, err := l.sequence(&Close{})
			l.switchDepth--
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, &switchNode{expr: typed.Expr, body: body})
		case *Case:
			if l.switchDepth == 0 {
				return nil, nil, l.errorf("case outside of a switch")
			}
			nodes = append(nodes, &caseLabel{expr: typed.Expr})
		case *Default:
			if l.switchDepth == 0 {
				return nil, nil, l.errorf("default outside of a switch")
			}
			nodes = append(nodes, &defaultLabel{})
		case *Break:
			if l.switchDepth == 0 {
				return nil, nil, l.errorf("break outside of a switch")
			}
			nodes = append(nodes, &breakNode{})
		case *Each:
			each, err := l.each(typed)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, each)
		case *MixinDef:
			depth := l.switchDepth
			l.switchDepth = 0
			body, _, err := l.sequence(&Close{})
			l.switchDepth = depth
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, &mixinDefNode{name: typed.Name, params: typed.Params, rest: typed.Rest, body: body})
		case *MixinCall:
			call := &mixinCallNode{
				name:       typed.Name,
				args:       typed.Args,
				attributes: typed.Attributes,
				escaped:    typed.Escaped,
				hasBlock:   typed.Block,
			}
			if typed.Block {
				depth := l.switchDepth
				l.switchDepth = 0
				body, _, err := l.sequence(&Close{})
				l.switchDepth = depth
				if err != nil {
					return nil, nil, err
				}
				call.block = body
			}
			nodes = append(nodes, call)
		case *Yield:
			nodes = append(nodes, &yieldNode{})
		case *IndentPush:
			nodes = append(nodes, &indentPushNode{text: typed.Text})
		case *IndentPop:
			nodes = append(nodes, &indentPopNode{})
		case *IndentApply:
			nodes = append(nodes, &indentApplyNode{})
		case *DebugPush:
			nodes = append(nodes, &debugPushNode{line: typed.Line, filename: typed.Filename})
		case *DebugPop:
			nodes = append(nodes, &debugPopNode{})
		case *Open:
			return nil, nil, l.errorf("block without a statement header")
		default:
			return nil, nil, l.errorf("unexpected %q", in.String())
		}
	}
	if len(terminators) > 0 {
		return nil, nil, &LinkError{Index: l.pos, Msg: fmt.Sprintf("unexpected end of program, expected %q", terminators[0].String())}
	}
	return nodes, nil, nil
}

// code links a statement. Else headers extend the if chain that ends prev
// and return nil.
func (l *linker) code(code *Code, prev []node) (node, error) {
	if !expr.IsHeader(code.Stmt) {
		if l.pos < len(l.instructions) {
			if _, ok := l.instructions[l.pos].(*Open); ok {
				return nil, l.errorf("%q cannot take a block", code.Src)
			}
		}
		return &stmtNode{stmt: code.Stmt}, nil
	}

	if l.pos >= len(l.instructions) {
		return nil, l.errorf("%q requires a block", code.Src)
	}
	if _, ok := l.instructions[l.pos].(*Open); !ok {
		return nil, l.errorf("%q requires a block", code.Src)
	}
	l.pos++
	body, _, err := l.sequence(&Close{})
	if err != nil {
		return nil, err
	}

	switch stmt := code.Stmt.(type) {
	case *expr.IfStmt:
		return &ifNode{branches: []ifBranch{{cond: stmt.Cond, body: body}}}, nil
	case *expr.ElseStmt:
		var chain *ifNode
		if len(prev) > 0 {
			chain, _ = prev[len(prev)-1].(*ifNode)
		}
		if chain == nil || chain.closed {
			return nil, l.errorf("%q does not follow an if", code.Src)
		}
		branch := ifBranch{body: body}
		if stmt.If != nil {
			branch.cond = stmt.If.Cond
		} else {
			chain.closed = true
		}
		chain.branches = append(chain.branches, branch)
		return nil, nil
	case *expr.WhileStmt:
		return &whileNode{cond: stmt.Cond, body: body}, nil
	case *expr.ForStmt:
		return &forNode{header: stmt, body: body}, nil
	}
	return nil, l.errorf("unsupported statement %q", code.Src)
}

func (l *linker) each(each *Each) (node, error) {
	linked := &eachNode{obj: each.Obj, key: each.Key, val: each.Val}

	seq, term, err := l.sequence(&EachElse{}, &EachKeyed{})
	if err != nil {
		return nil, err
	}
	linked.seq = seq
	if _, ok := term.(*EachElse); ok {
		alt, _, err := l.sequence(&EachKeyed{})
		if err != nil {
			return nil, err
		}
		linked.seqElse = nonNil(alt)
	}

	keyed, term, err := l.sequence(&EachElse{}, &Close{})
	if err != nil {
		return nil, err
	}
	linked.keyed = keyed
	if _, ok := term.(*EachElse); ok {
		alt, _, err := l.sequence(&Close{})
		if err != nil {
			return nil, err
		}
		linked.keyedElse = nonNil(alt)
	}
	return linked, nil
}

func nonNil(nodes []node) []node {
	if nodes == nil {
		return []node{}
	}
	return nodes
}

func sameKind(a, b Instruction) bool {
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}
