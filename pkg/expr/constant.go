package expr

import "fmt"

// IsConstant reports whether src is an expression whose value is fixed at
// compile time: it references no variables and assigns nothing.
func IsConstant(src string) bool {
	node, err := Parse(src)
	if err != nil {
		return false
	}
	return IsConstantNode(node)
}

// IsConstantNode is IsConstant for a parsed expression.
func IsConstantNode(n Node) bool {
	return len(Names(n)) == 0 && !hasAssignment(n)
}

// ToConstant evaluates a constant expression.
func ToConstant(src string) (any, error) {
	node, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if !IsConstantNode(node) {
		return nil, fmt.Errorf("expr: %q is not constant", src)
	}
	return Eval(node, NewScope(nil))
}
