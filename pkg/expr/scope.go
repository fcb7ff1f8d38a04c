package expr

// Scope is a variable environment. The outermost scope holds the render
// locals; assignments to undeclared names land there.
type Scope struct {
	parent *Scope
	vars   map[string]any
}

// NewScope returns a root scope seeded with a copy of locals.
func NewScope(locals map[string]any) *Scope {
	vars := make(map[string]any, len(locals))
	for name, value := range locals {
		vars[name] = value
	}
	return &Scope{vars: vars}
}

// Child returns a nested scope.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, vars: make(map[string]any)}
}

// Get resolves name through the scope chain.
func (s *Scope) Get(name string) (any, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if value, ok := scope.vars[name]; ok {
			return value, true
		}
	}
	return nil, false
}

// Declare binds name in this scope.
func (s *Scope) Declare(name string, value any) {
	s.vars[name] = value
}

// Set assigns to the nearest scope declaring name, or the root scope.
func (s *Scope) Set(name string, value any) {
	scope := s
	for ; scope != nil; scope = scope.parent {
		if _, ok := scope.vars[name]; ok {
			scope.vars[name] = value
			return
		}
		if scope.parent == nil {
			break
		}
	}
	scope.vars[name] = value
}
