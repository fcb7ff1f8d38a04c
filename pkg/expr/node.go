package expr

// Node is a parsed expression.
type Node interface {
	exprNode()
}

// Literal is a constant value: number (float64), string, bool or nil.
type Literal struct {
	Value any
}

// Ident references a variable.
type Ident struct {
	Name string
}

// ArrayLit builds a []any.
type ArrayLit struct {
	Elems []Node
}

// Property is one key/value pair of an object literal.
type Property struct {
	Key   string
	Value Node
}

// ObjectLit builds an ordered *Object.
type ObjectLit struct {
	Props []Property
}

// Member reads a property. Index is set for computed access (`a[b]`),
// otherwise Name holds the property name (`a.b`).
type Member struct {
	Object Node
	Name   string
	Index  Node
}

// Call invokes Callee with Args.
type Call struct {
	Callee Node
	Args   []Node
}

// Unary is a prefix operator: ! - + typeof.
type Unary struct {
	Op string
	X  Node
}

// Update is ++ or -- on an assignable target.
type Update struct {
	Op     string
	Prefix bool
	Target Node
}

// Binary is an arithmetic, comparison or equality operator.
type Binary struct {
	Op          string
	Left, Right Node
}

// Logical is a short-circuit operator: && || ??.
type Logical struct {
	Op          string
	Left, Right Node
}

// Conditional is `Test ? Then : Else`.
type Conditional struct {
	Test, Then, Else Node
}

// Assign is `Target Op Value` where Op is = or a compound assignment.
type Assign struct {
	Op     string
	Target Node
	Value  Node
}

func (*Literal) exprNode()     {}
func (*Ident) exprNode()       {}
func (*ArrayLit) exprNode()    {}
func (*ObjectLit) exprNode()   {}
func (*Member) exprNode()      {}
func (*Call) exprNode()        {}
func (*Unary) exprNode()       {}
func (*Update) exprNode()      {}
func (*Binary) exprNode()      {}
func (*Logical) exprNode()     {}
func (*Conditional) exprNode() {}
func (*Assign) exprNode()      {}

// Names returns the identifiers referenced by n in first-use order.
func Names(n Node) []string {
	var names nameSet
	names.walk(n)
	return names.list
}

type nameSet struct {
	seen map[string]struct{}
	list []string
}

func (s *nameSet) add(name string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.list = append(s.list, name)
}

func (s *nameSet) walk(n Node) {
	switch node := n.(type) {
	case nil, *Literal:
	case *Ident:
		s.add(node.Name)
	case *ArrayLit:
		for _, elem := range node.Elems {
			s.walk(elem)
		}
	case *ObjectLit:
		for _, prop := range node.Props {
			s.walk(prop.Value)
		}
	case *Member:
		s.walk(node.Object)
		s.walk(node.Index)
	case *Call:
		s.walk(node.Callee)
		for _, arg := range node.Args {
			s.walk(arg)
		}
	case *Unary:
		s.walk(node.X)
	case *Update:
		s.walk(node.Target)
	case *Binary:
		s.walk(node.Left)
		s.walk(node.Right)
	case *Logical:
		s.walk(node.Left)
		s.walk(node.Right)
	case *Conditional:
		s.walk(node.Test)
		s.walk(node.Then)
		s.walk(node.Else)
	case *Assign:
		s.walk(node.Target)
		s.walk(node.Value)
	}
}

func hasAssignment(n Node) bool {
	found := false
	var visit func(Node)
	visit = func(n Node) {
		if found {
			return
		}
		switch node := n.(type) {
		case *Assign, *Update:
			found = true
		case *ArrayLit:
			for _, elem := range node.Elems {
				visit(elem)
			}
		case *ObjectLit:
			for _, prop := range node.Props {
				visit(prop.Value)
			}
		case *Member:
			visit(node.Object)
			if node.Index != nil {
				visit(node.Index)
			}
		case *Call:
			visit(node.Callee)
			for _, arg := range node.Args {
				visit(arg)
			}
		case *Unary:
			visit(node.X)
		case *Binary:
			visit(node.Left)
			visit(node.Right)
		case *Logical:
			visit(node.Left)
			visit(node.Right)
		case *Conditional:
			visit(node.Test)
			visit(node.Then)
			visit(node.Else)
		}
	}
	visit(n)
	return found
}
