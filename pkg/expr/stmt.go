package expr

import "fmt"

// Stmt is a parsed statement. Control-flow headers (IfStmt, ElseStmt,
// WhileStmt, ForStmt) carry no body: the body is the block that follows them.
type Stmt interface {
	stmtNode()
}

// ExprStmt evaluates X for its side effects.
type ExprStmt struct {
	X Node
}

// VarDecl declares Names in the current scope. Inits entries may be nil.
type VarDecl struct {
	Keyword string
	Names   []string
	Inits   []Node
}

// IfStmt is an `if (Cond)` header.
type IfStmt struct {
	Cond Node
}

// ElseStmt is an `else` header; If is set for `else if`.
type ElseStmt struct {
	If *IfStmt
}

// WhileStmt is a `while (Cond)` header.
type WhileStmt struct {
	Cond Node
}

// ForStmt is a `for (Init; Test; Update)` header. Any part may be nil.
type ForStmt struct {
	Init   Stmt
	Test   Node
	Update Node
}

// StmtList is a `;`-separated sequence of simple statements.
type StmtList []Stmt

func (*ExprStmt) stmtNode()  {}
func (*VarDecl) stmtNode()   {}
func (*IfStmt) stmtNode()    {}
func (*ElseStmt) stmtNode()  {}
func (*WhileStmt) stmtNode() {}
func (*ForStmt) stmtNode()   {}
func (StmtList) stmtNode()   {}

// IsHeader reports whether s needs a following block.
func IsHeader(s Stmt) bool {
	switch s.(type) {
	case *IfStmt, *ElseStmt, *WhileStmt, *ForStmt:
		return true
	}
	return false
}

// ParseStatement parses the source of an unbuffered code line.
func ParseStatement(src string) (Stmt, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	switch {
	case tok.isWord("if"):
		stmt, err := p.parseIfHeader()
		if err != nil {
			return nil, err
		}
		return p.finishHeader(stmt)
	case tok.isWord("else"):
		p.next()
		stmt := &ElseStmt{}
		if p.peek().isWord("if") {
			ifStmt, err := p.parseIfHeader()
			if err != nil {
				return nil, err
			}
			stmt.If = ifStmt
		}
		return p.finishHeader(stmt)
	case tok.isWord("while"):
		p.next()
		cond, err := p.parseParenthesized()
		if err != nil {
			return nil, err
		}
		return p.finishHeader(&WhileStmt{Cond: cond})
	case tok.isWord("for"):
		stmt, err := p.parseForHeader()
		if err != nil {
			return nil, err
		}
		return p.finishHeader(stmt)
	}

	var list StmtList
	for p.peek().kind != tokenEOF {
		if p.peek().is(";") {
			p.next()
			continue
		}
		stmt, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		list = append(list, stmt)
		if next := p.peek(); next.kind != tokenEOF && !next.is(";") {
			return nil, p.unexpected(next, "expected \";\"")
		}
	}
	if len(list) == 1 {
		return list[0], nil
	}
	return list, nil
}

func (p *parser) finishHeader(stmt Stmt) (Stmt, error) {
	for p.peek().is(";") {
		p.next()
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseIfHeader() (*IfStmt, error) {
	p.next()
	cond, err := p.parseParenthesized()
	if err != nil {
		return nil, err
	}
	return &IfStmt{Cond: cond}, nil
}

func (p *parser) parseParenthesized() (Node, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *parser) parseForHeader() (*ForStmt, error) {
	p.next()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	stmt := &ForStmt{}
	if !p.peek().is(";") {
		init, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	if !p.peek().is(";") {
		test, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		stmt.Test = test
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	if !p.peek().is(")") {
		update, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		stmt.Update = update
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseSimpleStatement() (Stmt, error) {
	tok := p.peek()
	if tok.isWord("var") || tok.isWord("let") || tok.isWord("const") {
		p.next()
		decl := &VarDecl{Keyword: tok.raw}
		for {
			name := p.next()
			if name.kind != tokenIdentifier || isReserved(name.raw) {
				return nil, p.unexpected(name, "expected variable name")
			}
			var init Node
			if p.peek().is("=") {
				p.next()
				value, err := p.parseAssignment()
				if err != nil {
					return nil, err
				}
				init = value
			}
			decl.Names = append(decl.Names, name.raw)
			decl.Inits = append(decl.Inits, init)
			if !p.peek().is(",") {
				return decl, nil
			}
			p.next()
		}
	}
	if isReserved(tok.raw) && tok.kind == tokenIdentifier && !tok.isWord("typeof") {
		return nil, p.unexpected(tok, "statement requires a block")
	}
	x, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{X: x}, nil
}

// Exec runs a simple statement. Headers are executed by the caller that owns
// the following block.
func Exec(s Stmt, scope *Scope) error {
	switch stmt := s.(type) {
	case nil:
		return nil
	case *ExprStmt:
		_, err := Eval(stmt.X, scope)
		return err
	case *VarDecl:
		for i, name := range stmt.Names {
			var value any
			if init := stmt.Inits[i]; init != nil {
				v, err := Eval(init, scope)
				if err != nil {
					return err
				}
				value = v
			}
			scope.Declare(name, value)
		}
		return nil
	case StmtList:
		for _, child := range stmt {
			if err := Exec(child, scope); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("expr: %T requires a block", s)
}

// StmtNames returns the identifiers a statement references and the names it
// declares.
func StmtNames(s Stmt) (refs []string, decls []string) {
	var names nameSet
	switch stmt := s.(type) {
	case *ExprStmt:
		names.walk(stmt.X)
	case *VarDecl:
		decls = append(decls, stmt.Names...)
		for _, init := range stmt.Inits {
			names.walk(init)
		}
	case *IfStmt:
		names.walk(stmt.Cond)
	case *ElseStmt:
		if stmt.If != nil {
			names.walk(stmt.If.Cond)
		}
	case *WhileStmt:
		names.walk(stmt.Cond)
	case *ForStmt:
		initRefs, initDecls := StmtNames(stmt.Init)
		for _, name := range initRefs {
			names.add(name)
		}
		decls = append(decls, initDecls...)
		names.walk(stmt.Test)
		names.walk(stmt.Update)
	case StmtList:
		for _, child := range stmt {
			childRefs, childDecls := StmtNames(child)
			for _, name := range childRefs {
				names.add(name)
			}
			decls = append(decls, childDecls...)
		}
	}
	return names.list, decls
}
