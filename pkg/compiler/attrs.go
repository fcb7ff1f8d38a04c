package compiler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-jade/pkg/ast"
	"github.com/goliatone/go-jade/pkg/expr"
	"github.com/goliatone/go-jade/pkg/program"
	"github.com/goliatone/go-jade/pkg/runtime"
)

// assembly is an attribute list lowered to object-literal sources.
type assembly struct {
	// pairs is the body of the attribute object literal.
	pairs   string
	escaped *expr.Object
	// inherits is set by the reserved "attributes" name.
	inherits bool
	constant bool
}

func (a assembly) object() string { return "{" + a.pairs + "}" }

func (a assembly) escapedSource() (string, error) {
	data, err := json.Marshal(a.escaped)
	if err != nil {
		return "", fmt.Errorf("encode escape map: %w", err)
	}
	return string(data), nil
}

// assemble lowers attrs. Class values accumulate into one array. terse adds
// the serialization flag read by the attrs runtime helper.
func assemble(attrs []ast.Attribute, terse bool) (assembly, error) {
	out := assembly{escaped: expr.NewObject(), constant: true}
	var pairs, classes []string
	if terse {
		pairs = append(pairs, strconv.Quote(runtime.TerseKey)+": true")
	}

	for _, attr := range attrs {
		if attr.Name == ast.InheritName {
			out.inherits = true
			continue
		}
		node, err := expr.Parse(attr.Value)
		if err != nil {
			return assembly{}, fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		if !expr.IsConstantNode(node) {
			out.constant = false
		}
		out.escaped.Set(attr.Name, attr.Escaped)
		if attr.Name == "class" {
			classes = append(classes, "("+attr.Value+")")
			continue
		}
		pairs = append(pairs, strconv.Quote(attr.Name)+": ("+attr.Value+")")
	}
	if len(classes) > 0 {
		pairs = append(pairs, `"class": [`+strings.Join(classes, ", ")+"]")
	}
	out.pairs = strings.Join(pairs, ", ")
	return out, nil
}

// processAttributes buffers the serialized attributes of a tag.
func (s *state) processAttributes(attrs []ast.Attribute) error {
	a, err := assemble(attrs, s.terse)
	if err != nil {
		return err
	}
	escaped, err := a.escapedSource()
	if err != nil {
		return err
	}

	switch {
	case a.inherits:
		src := "jade.attrs(jade.merge(attributes, " + a.object() + "), jade.merge(escaped, " + escaped + ", true))"
		return s.parsedExpression(src, false, false)
	case a.constant:
		obj, err := expr.ToConstant(a.object())
		if err != nil {
			return err
		}
		s.buf.Literal(runtime.Attrs(obj, a.escaped))
		return nil
	default:
		return s.parsedExpression("jade.attrs("+a.object()+", "+escaped+")", false, false)
	}
}

// mixinAttributes fills the attribute and escape map arguments of a mixin
// call.
func mixinAttributes(call *program.MixinCall, attrs []ast.Attribute) error {
	a, err := assemble(attrs, false)
	if err != nil {
		return err
	}
	escaped, err := a.escapedSource()
	if err != nil {
		return err
	}
	call.AttrsSrc, call.EscapedSrc = a.object(), escaped
	if a.inherits {
		call.AttrsSrc = "jade.merge(attributes, " + a.object() + ")"
		call.EscapedSrc = "jade.merge(escaped, " + escaped + ", true)"
	}
	if call.Attributes, err = expr.Parse(call.AttrsSrc); err != nil {
		return err
	}
	if call.Escaped, err = expr.Parse(call.EscapedSrc); err != nil {
		return err
	}
	return nil
}

func (s *state) visitAttributes(n ast.Node, k func(error)) {
	k(s.processAttributes(n.(*ast.Attributes).Attrs))
}
