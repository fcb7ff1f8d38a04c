package expr

import (
	"fmt"
	"math"
	"strings"
)

// Eval evaluates n in scope. Unknown identifiers evaluate to nil.
func Eval(n Node, scope *Scope) (any, error) {
	switch node := n.(type) {
	case *Literal:
		return node.Value, nil
	case *Ident:
		value, _ := scope.Get(node.Name)
		return value, nil
	case *ArrayLit:
		out := make([]any, 0, len(node.Elems))
		for _, elem := range node.Elems {
			value, err := Eval(elem, scope)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case *ObjectLit:
		obj := NewObject()
		for _, prop := range node.Props {
			value, err := Eval(prop.Value, scope)
			if err != nil {
				return nil, err
			}
			obj.Set(prop.Key, value)
		}
		return obj, nil
	case *Member:
		obj, key, err := evalMemberParts(node, scope)
		if err != nil {
			return nil, err
		}
		return GetMember(obj, key)
	case *Call:
		return evalCall(node, scope)
	case *Unary:
		x, err := Eval(node.X, scope)
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case "!":
			return !Truthy(x), nil
		case "-":
			return -ToNumber(x), nil
		case "+":
			return ToNumber(x), nil
		case "typeof":
			return TypeOf(x), nil
		}
	case *Update:
		return evalUpdate(node, scope)
	case *Binary:
		left, err := Eval(node.Left, scope)
		if err != nil {
			return nil, err
		}
		right, err := Eval(node.Right, scope)
		if err != nil {
			return nil, err
		}
		return binaryOp(node.Op, left, right)
	case *Logical:
		left, err := Eval(node.Left, scope)
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case "&&":
			if !Truthy(left) {
				return left, nil
			}
		case "||":
			if Truthy(left) {
				return left, nil
			}
		case "??":
			if left != nil {
				return left, nil
			}
		}
		return Eval(node.Right, scope)
	case *Conditional:
		test, err := Eval(node.Test, scope)
		if err != nil {
			return nil, err
		}
		if Truthy(test) {
			return Eval(node.Then, scope)
		}
		return Eval(node.Else, scope)
	case *Assign:
		return evalAssign(node, scope)
	}
	return nil, fmt.Errorf("expr: cannot evaluate %T", n)
}

func evalMemberParts(node *Member, scope *Scope) (any, any, error) {
	obj, err := Eval(node.Object, scope)
	if err != nil {
		return nil, nil, err
	}
	if node.Index == nil {
		return obj, node.Name, nil
	}
	key, err := Eval(node.Index, scope)
	if err != nil {
		return nil, nil, err
	}
	return obj, key, nil
}

func evalCall(node *Call, scope *Scope) (any, error) {
	fn, err := Eval(node.Callee, scope)
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(node.Args))
	for _, argNode := range node.Args {
		value, err := Eval(argNode, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}
	if fn == nil {
		return nil, fmt.Errorf("expr: %s is not a function", describe(node.Callee))
	}
	return CallValue(fn, args)
}

func describe(n Node) string {
	switch node := n.(type) {
	case *Ident:
		return node.Name
	case *Member:
		if node.Index == nil {
			return describe(node.Object) + "." + node.Name
		}
		return describe(node.Object) + "[...]"
	}
	return "expression"
}

// reference resolves an assignable node to read and write closures.
func reference(target Node, scope *Scope) (func() (any, error), func(any) error, error) {
	switch node := target.(type) {
	case *Ident:
		get := func() (any, error) {
			value, _ := scope.Get(node.Name)
			return value, nil
		}
		set := func(value any) error {
			scope.Set(node.Name, value)
			return nil
		}
		return get, set, nil
	case *Member:
		obj, key, err := evalMemberParts(node, scope)
		if err != nil {
			return nil, nil, err
		}
		get := func() (any, error) { return GetMember(obj, key) }
		set := func(value any) error { return SetMember(obj, key, value) }
		return get, set, nil
	}
	return nil, nil, fmt.Errorf("expr: invalid assignment target")
}

func evalAssign(node *Assign, scope *Scope) (any, error) {
	get, set, err := reference(node.Target, scope)
	if err != nil {
		return nil, err
	}
	value, err := Eval(node.Value, scope)
	if err != nil {
		return nil, err
	}
	if node.Op != "=" {
		current, err := get()
		if err != nil {
			return nil, err
		}
		value, err = binaryOp(strings.TrimSuffix(node.Op, "="), current, value)
		if err != nil {
			return nil, err
		}
	}
	if err := set(value); err != nil {
		return nil, err
	}
	return value, nil
}

func evalUpdate(node *Update, scope *Scope) (any, error) {
	get, set, err := reference(node.Target, scope)
	if err != nil {
		return nil, err
	}
	current, err := get()
	if err != nil {
		return nil, err
	}
	old := ToNumber(current)
	updated := old + 1
	if node.Op == "--" {
		updated = old - 1
	}
	if err := set(updated); err != nil {
		return nil, err
	}
	if node.Prefix {
		return updated, nil
	}
	return old, nil
}

func binaryOp(op string, left, right any) (any, error) {
	switch op {
	case "+":
		lp, rp := toPrimitive(left), toPrimitive(right)
		_, ls := lp.(string)
		_, rs := rp.(string)
		if ls || rs {
			return ToString(lp) + ToString(rp), nil
		}
		return ToNumber(lp) + ToNumber(rp), nil
	case "-":
		return ToNumber(left) - ToNumber(right), nil
	case "*":
		return ToNumber(left) * ToNumber(right), nil
	case "/":
		return ToNumber(left) / ToNumber(right), nil
	case "%":
		return math.Mod(ToNumber(left), ToNumber(right)), nil
	case "==":
		return LooseEqual(left, right), nil
	case "!=":
		return !LooseEqual(left, right), nil
	case "===":
		return StrictEqual(left, right), nil
	case "!==":
		return !StrictEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return compare(op, toPrimitive(left), toPrimitive(right)), nil
	}
	return nil, fmt.Errorf("expr: unknown operator %q", op)
}

// toPrimitive turns reference values into their string form, leaving
// primitives untouched.
func toPrimitive(v any) any {
	switch v.(type) {
	case nil, string, bool:
		return v
	}
	if f, ok := asNumber(v); ok {
		return f
	}
	return ToString(v)
}

func compare(op string, left, right any) bool {
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		switch op {
		case "<":
			return ls < rs
		case "<=":
			return ls <= rs
		case ">":
			return ls > rs
		default:
			return ls >= rs
		}
	}
	l, r := ToNumber(left), ToNumber(right)
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	default:
		return l >= r
	}
}
