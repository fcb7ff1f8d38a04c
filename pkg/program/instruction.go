package program

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-jade/pkg/expr"
)

// Instruction is one entry of a render program's flat instruction stream.
type Instruction interface {
	// String renders the instruction as one line of the program listing.
	String() string
}

// Part is a fragment of an Emit: literal text when Expr is nil, otherwise an
// expression whose value is stringified (nil renders as ""), optionally
// escaped.
type Part struct {
	Text   string
	Src    string
	Expr   expr.Node
	Escape bool
	// Interp marks interpolated values (`#{}`/`!{}` and buffered code).
	Interp bool
}

// IsLiteral reports whether the part is static text.
func (p Part) IsLiteral() bool { return p.Expr == nil }

func (p Part) String() string {
	if p.IsLiteral() {
		return strconv.Quote(p.Text)
	}
	src := "(" + p.Src + ")"
	if p.Interp {
		src = `(null == (jade_interp = ` + p.Src + `) ? "" : jade_interp)`
	}
	if p.Escape {
		return "jade.escape" + src
	}
	return src
}

// Emit appends its parts to the output.
type Emit struct {
	Parts []Part
}

func (e *Emit) String() string {
	parts := make([]string, len(e.Parts))
	for i, part := range e.Parts {
		parts[i] = part.String()
	}
	return "buf.push(" + strings.Join(parts, " + ") + ");"
}

// Code runs a statement. Header statements (if/else/while/for) must be
// followed by an Open region.
type Code struct {
	Src  string
	Stmt expr.Stmt
}

func (c *Code) String() string { return c.Src }

// Open starts the block of the preceding Code header.
type Open struct{}

func (*Open) String() string { return "{" }

// Close ends the innermost open region.
type Close struct{}

func (*Close) String() string { return "}" }

// Switch starts a dispatch region closed by Close.
type Switch struct {
	Src  string
	Expr expr.Node
}

func (s *Switch) String() string { return "switch (" + s.Src + "){" }

// Case labels a branch of the enclosing Switch.
type Case struct {
	Src  string
	Expr expr.Node
}

func (c *Case) String() string { return "case " + c.Src + ":" }

// Default labels the fallback branch of the enclosing Switch.
type Default struct{}

func (*Default) String() string { return "default:" }

// Break leaves the enclosing Switch.
type Break struct{}

func (*Break) String() string { return "break;" }

// Each starts an iteration region laid out as:
//
//	Each  seq-body  [EachElse alt]  EachKeyed  keyed-body  [EachElse alt]  Close
//
// The sequence path runs for slices, arrays and strings, the keyed path for
// everything else.
type Each struct {
	Src string
	Obj expr.Node
	Key string
	Val string
}

func (e *Each) String() string {
	return fmt.Sprintf("for (var %s = 0, %s; %s < $$obj.length; %s++) { // iterate %s", e.Key, e.Val, e.Key, e.Key, e.Src)
}

// EachElse starts the block rendered when the current path iterated zero
// times.
type EachElse struct{}

func (*EachElse) String() string { return "} if ($$l === 0) {" }

// EachKeyed starts the keyed path of the enclosing Each.
type EachKeyed struct {
	Key string
	Val string
}

func (e *EachKeyed) String() string {
	return fmt.Sprintf("} for (var %s in $$obj) { var %s = $$obj[%s];", e.Key, e.Val, e.Key)
}

// MixinDef defines a mixin; its body runs until the matching Close.
type MixinDef struct {
	Name   string
	Params []string
	Rest   string
}

func (m *MixinDef) String() string {
	params := append([]string(nil), m.Params...)
	if m.Rest != "" {
		params = append(params, "..."+m.Rest)
	}
	return fmt.Sprintf("jade_mixins[%s] = function(%s){", strconv.Quote(m.Name), strings.Join(params, ", "))
}

// MixinCall invokes a mixin. When Block is set the caller-supplied block
// follows as a region closed by Close.
type MixinCall struct {
	Name       string
	ArgsSrc    string
	Args       []expr.Node
	Block      bool
	AttrsSrc   string
	Attributes expr.Node
	EscapedSrc string
	Escaped    expr.Node
}

func (m *MixinCall) String() string {
	var fields []string
	if m.Attributes != nil {
		fields = append(fields, "attributes: "+m.AttrsSrc, "escaped: "+m.EscapedSrc)
	}
	args := ""
	if m.ArgsSrc != "" {
		args = ", " + m.ArgsSrc
	}
	callee := "jade_mixins[" + strconv.Quote(m.Name) + "]"
	if m.Block {
		fields = append(fields, "block: function(){")
		line := callee + ".call({" + strings.Join(fields, ", ")
		if m.ArgsSrc != "" {
			line += " // args: " + m.ArgsSrc
		}
		return line
	}
	if len(fields) > 0 {
		return callee + ".call({" + strings.Join(fields, ", ") + "}" + args + ");"
	}
	return callee + "(" + m.ArgsSrc + ");"
}

// Yield renders the caller-supplied block of the current mixin, if any.
type Yield struct{}

func (*Yield) String() string { return "block && block();" }

// IndentPush pushes call-site indentation for pretty printing mixin bodies.
type IndentPush struct {
	Text string
}

func (i *IndentPush) String() string { return "jade_indent.push(" + strconv.Quote(i.Text) + ");" }

// IndentPop pops the last IndentPush.
type IndentPop struct{}

func (*IndentPop) String() string { return "jade_indent.pop();" }

// IndentApply writes the accumulated call-site indentation.
type IndentApply struct{}

func (*IndentApply) String() string { return "buf.push.apply(buf, jade_indent);" }

// DebugPush records the template position about to execute.
type DebugPush struct {
	Line     int
	Filename string
}

func (d *DebugPush) String() string {
	filename := "undefined"
	if d.Filename != "" {
		filename = strconv.Quote(d.Filename)
	}
	return fmt.Sprintf("jade_debug.unshift({ lineno: %d, filename: %s });", d.Line, filename)
}

// DebugPop drops the most recent position record.
type DebugPop struct{}

func (*DebugPop) String() string { return "jade_debug.shift();" }

func isDebug(in Instruction) bool {
	switch in.(type) {
	case *DebugPush, *DebugPop:
		return true
	}
	return false
}
