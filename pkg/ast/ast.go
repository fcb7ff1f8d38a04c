package ast

import "fmt"

// Kind identifies a node variant. The set is closed: the compiler keeps one
// lowering routine per Kind.
type Kind int

const (
	KindBlock Kind = iota
	KindText
	KindLiteral
	KindCode
	KindTag
	KindAttributes
	KindEach
	KindCase
	KindWhen
	KindMixin
	KindMixinBlock
	KindComment
	KindBlockComment
	KindDoctype
	KindFilter

	// NumKinds is the number of node kinds. Keep it last.
	NumKinds
)

var kindNames = [NumKinds]string{
	KindBlock:        "Block",
	KindText:         "Text",
	KindLiteral:      "Literal",
	KindCode:         "Code",
	KindTag:          "Tag",
	KindAttributes:   "Attributes",
	KindEach:         "Each",
	KindCase:         "Case",
	KindWhen:         "When",
	KindMixin:        "Mixin",
	KindMixinBlock:   "MixinBlock",
	KindComment:      "Comment",
	KindBlockComment: "BlockComment",
	KindDoctype:      "Doctype",
	KindFilter:       "Filter",
}

func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// KindFromString resolves a variant name (as used by tree documents).
func KindFromString(name string) (Kind, bool) {
	for i, candidate := range kindNames {
		if candidate == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Node is implemented by every variant. Nodes are produced once by a parser
// (or decoded from a tree document) and never mutated by the compiler.
type Node interface {
	Kind() Kind
	Pos() Loc
	// Tracked reports whether the node gets its own line-attribution record
	// when compiling with debug enabled.
	Tracked() bool
}

// Loc carries the diagnostic position of a node.
type Loc struct {
	Line     int
	Filename string
	// NoDebug marks synthetic continuations (else branches) that do not
	// correspond to a real source position.
	NoDebug bool
}

func (l Loc) Pos() Loc { return l }

func (l Loc) Tracked() bool { return !l.NoDebug }

// Block is an ordered child list. Order is document order.
type Block struct {
	Loc
	Nodes []Node
}

func (*Block) Kind() Kind { return KindBlock }

// Len returns the number of children, tolerating a nil block.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Nodes)
}

// Text is interpolatable content (`#{}` / `!{}`).
type Text struct {
	Loc
	Value string
}

func (*Text) Kind() Kind { return KindText }

// Literal is raw content emitted verbatim.
type Literal struct {
	Loc
	Value string
}

func (*Literal) Kind() Kind { return KindLiteral }

// Code is an embedded expression (Buffer) or statement. A Block turns an
// unbuffered statement into a control-flow wrapper.
type Code struct {
	Loc
	Value  string
	Buffer bool
	Escape bool
	Block  *Block
}

func (*Code) Kind() Kind { return KindCode }

// Attribute is a single name/value assignment. Value is expression source.
// The reserved name "attributes" spreads the inherited attribute object.
type Attribute struct {
	Name    string
	Value   string
	Escaped bool
}

// InheritName is the reserved attribute name that spreads inherited
// attributes into a tag or mixin call.
const InheritName = "attributes"

// Tag is an element. When Buffer is set the Name is an expression.
type Tag struct {
	Loc
	Name        string
	Buffer      bool
	Attrs       []Attribute
	SelfClosing bool
	Block       *Block
	Code        *Code
}

func (*Tag) Kind() Kind { return KindTag }

// Attributes spreads an attribute list at the current output position.
type Attributes struct {
	Loc
	Attrs []Attribute
}

func (*Attributes) Kind() Kind { return KindAttributes }

// Each iterates Obj, binding Key and Val. Alternative renders when the
// iteration is empty.
type Each struct {
	Loc
	Obj         string
	Key         string
	Val         string
	Block       *Block
	Alternative *Block
}

func (*Each) Kind() Kind { return KindEach }

// Case dispatches over Expr; its Block holds When nodes.
type Case struct {
	Loc
	Expr  string
	Block *Block
}

func (*Case) Kind() Kind { return KindCase }

// DefaultExpr marks the fallback When branch.
const DefaultExpr = "default"

// When is one branch of a Case. A nil Block falls through to the next
// branch.
type When struct {
	Loc
	Expr  string
	Block *Block
}

func (*When) Kind() Kind { return KindWhen }

// Tracked is always false: branches are sugar inside a dispatch construct and
// share the Case line record.
func (*When) Tracked() bool { return false }

// Mixin is either a definition (Call == false) or a call site.
type Mixin struct {
	Loc
	Name  string
	Args  string
	Attrs []Attribute
	Call  bool
	Block *Block
}

func (*Mixin) Kind() Kind { return KindMixin }

// MixinBlock is the caller-supplied content placeholder inside a mixin body.
type MixinBlock struct {
	Loc
}

func (*MixinBlock) Kind() Kind { return KindMixinBlock }

// Comment is a single-line comment, compiled away unless Buffer is set.
type Comment struct {
	Loc
	Value  string
	Buffer bool
}

func (*Comment) Kind() Kind { return KindComment }

// BlockComment wraps a block in a comment.
type BlockComment struct {
	Loc
	Value  string
	Buffer bool
	Block  *Block
}

func (*BlockComment) Kind() Kind { return KindBlockComment }

// Doctype declares the document type. An empty Value reuses the active
// doctype or declares the default one.
type Doctype struct {
	Loc
	Value string
}

func (*Doctype) Kind() Kind { return KindDoctype }

// Filter pipes the raw text of its Block through a named filter.
type Filter struct {
	Loc
	Name  string
	Block *Block
	Attrs map[string]any
}

func (*Filter) Kind() Kind { return KindFilter }

// IsText reports whether n is a Text node.
func IsText(n Node) bool {
	_, ok := n.(*Text)
	return ok
}
