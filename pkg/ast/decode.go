package ast

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode reads a node tree document (YAML or JSON) and returns its root
// block. The document is either a sequence of nodes or a Block mapping.
// Nodes without a filename inherit the one of their parent, falling back to
// the supplied filename.
//
//	type: Block
//	nodes:
//	  - {type: Doctype, value: html}
//	  - type: Tag
//	    name: p
//	    block: [{type: Text, value: "Hello #{name}"}]
func Decode(data []byte, filename string) (*Block, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("ast: tree document is empty")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ast: parse tree document: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	var raw rawBlock
	if err := raw.UnmarshalYAML(root); err != nil {
		return nil, fmt.Errorf("ast: decode tree document: %w", err)
	}
	return raw.build(Loc{Line: 1, Filename: filename})
}

// DecodeFile reads and decodes a tree document from disk.
func DecodeFile(path string) (*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ast: read %s: %w", path, err)
	}
	return Decode(data, path)
}

type rawBlock struct {
	Line     int
	Filename string
	Nodes    []rawNode
}

func (b *rawBlock) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		return value.Decode(&b.Nodes)
	case yaml.MappingNode:
		var aux struct {
			Type     string    `yaml:"type"`
			Line     int       `yaml:"line"`
			Filename string    `yaml:"filename"`
			Nodes    []rawNode `yaml:"nodes"`
		}
		if err := value.Decode(&aux); err != nil {
			return err
		}
		if aux.Type != "" && aux.Type != KindBlock.String() {
			return fmt.Errorf("line %d: expected a Block, got %q", value.Line, aux.Type)
		}
		b.Line = aux.Line
		b.Filename = aux.Filename
		b.Nodes = aux.Nodes
		return nil
	default:
		return fmt.Errorf("line %d: a block must be a sequence or a mapping", value.Line)
	}
}

func (b *rawBlock) build(parent Loc) (*Block, error) {
	loc := inherit(parent, b.Line, b.Filename, false)
	block := &Block{Loc: loc, Nodes: make([]Node, 0, len(b.Nodes))}
	for i := range b.Nodes {
		node, err := b.Nodes[i].build(loc)
		if err != nil {
			return nil, err
		}
		block.Nodes = append(block.Nodes, node)
	}
	return block, nil
}

type rawAttr struct {
	Name    string `yaml:"name"`
	Value   string `yaml:"value"`
	Escaped *bool  `yaml:"escaped"`
}

type rawNode struct {
	Type        string    `yaml:"type"`
	Line        int       `yaml:"line"`
	Filename    string    `yaml:"filename"`
	NoDebug     bool      `yaml:"noDebug"`
	Name        string    `yaml:"name"`
	Value       string    `yaml:"value"`
	Expr        string    `yaml:"expr"`
	Obj         string    `yaml:"obj"`
	Key         string    `yaml:"key"`
	Val         string    `yaml:"val"`
	Args        string    `yaml:"args"`
	Buffer      *bool     `yaml:"buffer"`
	Escape      *bool     `yaml:"escape"`
	Call        bool      `yaml:"call"`
	SelfClosing bool      `yaml:"selfClosing"`
	Attrs       yaml.Node `yaml:"attrs"`
	Block       *rawBlock `yaml:"block"`
	Alternative *rawBlock `yaml:"alternative"`
	Code        *rawNode  `yaml:"code"`
	Nodes       []rawNode `yaml:"nodes"`
}

func (r *rawNode) build(parent Loc) (Node, error) {
	kind, ok := KindFromString(r.Type)
	if !ok {
		return nil, fmt.Errorf("ast: line %d: unknown node type %q", r.Line, r.Type)
	}
	loc := inherit(parent, r.Line, r.Filename, r.NoDebug)

	block, err := r.block(r.Block, loc)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindBlock:
		nested := &rawBlock{Line: r.Line, Filename: r.Filename, Nodes: r.Nodes}
		return nested.build(parent)
	case KindText:
		return &Text{Loc: loc, Value: r.Value}, nil
	case KindLiteral:
		return &Literal{Loc: loc, Value: r.Value}, nil
	case KindCode:
		return r.code(loc, block), nil
	case KindTag:
		attrs, err := r.attributeList()
		if err != nil {
			return nil, err
		}
		tag := &Tag{
			Loc:         loc,
			Name:        r.Name,
			Buffer:      boolOr(r.Buffer, false),
			Attrs:       attrs,
			SelfClosing: r.SelfClosing,
			Block:       orEmpty(block, loc),
		}
		if r.Code != nil {
			codeLoc := inherit(loc, r.Code.Line, r.Code.Filename, r.Code.NoDebug)
			codeBlock, err := r.block(r.Code.Block, codeLoc)
			if err != nil {
				return nil, err
			}
			tag.Code = r.Code.code(codeLoc, codeBlock)
		}
		return tag, nil
	case KindAttributes:
		attrs, err := r.attributeList()
		if err != nil {
			return nil, err
		}
		return &Attributes{Loc: loc, Attrs: attrs}, nil
	case KindEach:
		alt, err := r.block(r.Alternative, loc)
		if err != nil {
			return nil, err
		}
		return &Each{Loc: loc, Obj: r.Obj, Key: r.Key, Val: r.Val, Block: orEmpty(block, loc), Alternative: alt}, nil
	case KindCase:
		return &Case{Loc: loc, Expr: r.Expr, Block: orEmpty(block, loc)}, nil
	case KindWhen:
		return &When{Loc: loc, Expr: r.Expr, Block: block}, nil
	case KindMixin:
		attrs, err := r.attributeList()
		if err != nil {
			return nil, err
		}
		mixin := &Mixin{Loc: loc, Name: r.Name, Args: r.Args, Attrs: attrs, Call: r.Call, Block: block}
		if !mixin.Call {
			mixin.Block = orEmpty(block, loc)
		}
		return mixin, nil
	case KindMixinBlock:
		return &MixinBlock{Loc: loc}, nil
	case KindComment:
		return &Comment{Loc: loc, Value: r.Value, Buffer: boolOr(r.Buffer, true)}, nil
	case KindBlockComment:
		return &BlockComment{Loc: loc, Value: r.Value, Buffer: boolOr(r.Buffer, true), Block: orEmpty(block, loc)}, nil
	case KindDoctype:
		return &Doctype{Loc: loc, Value: r.Value}, nil
	case KindFilter:
		options, err := r.filterOptions()
		if err != nil {
			return nil, err
		}
		return &Filter{Loc: loc, Name: r.Name, Block: orEmpty(block, loc), Attrs: options}, nil
	}
	return nil, fmt.Errorf("ast: line %d: unsupported node type %q", r.Line, r.Type)
}

func (r *rawNode) code(loc Loc, block *Block) *Code {
	buffer := boolOr(r.Buffer, false)
	return &Code{
		Loc:    loc,
		Value:  r.Value,
		Buffer: buffer,
		Escape: boolOr(r.Escape, buffer),
		Block:  block,
	}
}

func (r *rawNode) block(raw *rawBlock, loc Loc) (*Block, error) {
	if raw == nil {
		return nil, nil
	}
	return raw.build(loc)
}

func (r *rawNode) attributeList() ([]Attribute, error) {
	if r.Attrs.Kind == 0 {
		return nil, nil
	}
	var raw []rawAttr
	if err := r.Attrs.Decode(&raw); err != nil {
		return nil, fmt.Errorf("ast: line %d: attrs must be a list of {name, value, escaped}: %w", r.Line, err)
	}
	attrs := make([]Attribute, 0, len(raw))
	for _, attr := range raw {
		name := strings.TrimSpace(attr.Name)
		if name == "" {
			return nil, fmt.Errorf("ast: line %d: attribute name is required", r.Line)
		}
		attrs = append(attrs, Attribute{Name: name, Value: attr.Value, Escaped: boolOr(attr.Escaped, true)})
	}
	return attrs, nil
}

func (r *rawNode) filterOptions() (map[string]any, error) {
	if r.Attrs.Kind == 0 {
		return nil, nil
	}
	var options map[string]any
	if err := r.Attrs.Decode(&options); err != nil {
		return nil, fmt.Errorf("ast: line %d: filter attrs must be a mapping: %w", r.Line, err)
	}
	return options, nil
}

func inherit(parent Loc, line int, filename string, noDebug bool) Loc {
	loc := Loc{Line: line, Filename: filename, NoDebug: noDebug}
	if loc.Line == 0 {
		loc.Line = parent.Line
	}
	if loc.Filename == "" {
		loc.Filename = parent.Filename
	}
	return loc
}

func orEmpty(block *Block, loc Loc) *Block {
	if block != nil {
		return block
	}
	return &Block{Loc: loc}
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
