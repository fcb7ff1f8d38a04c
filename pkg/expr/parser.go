package expr

import "math"

// Parse parses a single expression.
func Parse(src string) (Node, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	node, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return node, nil
}

// ParseList parses a comma-separated expression list, as found in call
// arguments. Empty source yields an empty list.
func ParseList(src string) ([]Node, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokenEOF {
		return nil, nil
	}
	var nodes []Node
	for {
		node, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		if !p.peek().is(",") {
			break
		}
		p.next()
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ParseParams parses a parameter list such as `a, b, ...rest`. The rest
// parameter, when present, is returned separately.
func ParseParams(src string) (params []string, rest string, err error) {
	p, err := newParser(src)
	if err != nil {
		return nil, "", err
	}
	if p.peek().kind == tokenEOF {
		return nil, "", nil
	}
	for {
		tok := p.next()
		if tok.is("...") {
			name := p.next()
			if name.kind != tokenIdentifier {
				return nil, "", syntaxErrorf(src, name.pos, "expected rest parameter name")
			}
			rest = name.raw
			if err := p.expectEOF(); err != nil {
				return nil, "", err
			}
			return params, rest, nil
		}
		if tok.kind != tokenIdentifier || isReserved(tok.raw) {
			return nil, "", syntaxErrorf(src, tok.pos, "expected parameter name")
		}
		params = append(params, tok.raw)
		if !p.peek().is(",") {
			break
		}
		p.next()
	}
	if err := p.expectEOF(); err != nil {
		return nil, "", err
	}
	return params, "", nil
}

type parser struct {
	src    string
	tokens []token
	pos    int
}

func newParser(src string) (*parser, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, tokens: tokens}, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(punct string) error {
	tok := p.next()
	if !tok.is(punct) {
		return p.unexpected(tok, "expected %q", punct)
	}
	return nil
}

func (p *parser) expectEOF() error {
	if tok := p.peek(); tok.kind != tokenEOF {
		return p.unexpected(tok, "expected end of input")
	}
	return nil
}

func (p *parser) unexpected(tok token, format string, args ...any) error {
	if tok.kind == tokenEOF {
		return syntaxErrorf(p.src, tok.pos, "unexpected end of input, "+format, args...)
	}
	return syntaxErrorf(p.src, tok.pos, "unexpected token %q, "+format, append([]any{tok.raw}, args...)...)
}

var assignOps = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true}

func (p *parser) parseAssignment() (Node, error) {
	start := p.peek()
	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if tok.kind == tokenPunct && assignOps[tok.raw] {
		if !assignable(left) {
			return nil, syntaxErrorf(p.src, start.pos, "invalid assignment target")
		}
		p.next()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &Assign{Op: tok.raw, Target: left, Value: value}, nil
	}
	return left, nil
}

func (p *parser) parseConditional() (Node, error) {
	test, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.peek().is("?") {
		return test, nil
	}
	p.next()
	then, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	otherwise, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &Conditional{Test: test, Then: then, Else: otherwise}, nil
}

func binaryPrecedence(tok token) int {
	if tok.kind != tokenPunct {
		return 0
	}
	switch tok.raw {
	case "??":
		return 1
	case "||":
		return 2
	case "&&":
		return 3
	case "==", "!=", "===", "!==":
		return 4
	case "<", "<=", ">", ">=":
		return 5
	case "+", "-":
		return 6
	case "*", "/", "%":
		return 7
	}
	return 0
}

func (p *parser) parseBinary(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		prec := binaryPrecedence(tok)
		if prec == 0 || prec <= minPrec {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(prec)
		if err != nil {
			return nil, err
		}
		switch tok.raw {
		case "&&", "||", "??":
			left = &Logical{Op: tok.raw, Left: left, Right: right}
		default:
			left = &Binary{Op: tok.raw, Left: left, Right: right}
		}
	}
}

func (p *parser) parseUnary() (Node, error) {
	tok := p.peek()
	switch {
	case tok.is("!"), tok.is("-"), tok.is("+"), tok.isWord("typeof"):
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: tok.raw, X: x}, nil
	case tok.is("++"), tok.is("--"):
		p.next()
		target, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if !assignable(target) {
			return nil, syntaxErrorf(p.src, tok.pos, "invalid %s operand", tok.raw)
		}
		return &Update{Op: tok.raw, Prefix: true, Target: target}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Node, error) {
	x, err := p.parseCallMember()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.is("++") || tok.is("--") {
		if !assignable(x) {
			return nil, syntaxErrorf(p.src, tok.pos, "invalid %s operand", tok.raw)
		}
		p.next()
		return &Update{Op: tok.raw, Target: x}, nil
	}
	return x, nil
}

func (p *parser) parseCallMember() (Node, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch {
		case tok.is("."):
			p.next()
			name := p.next()
			if name.kind != tokenIdentifier {
				return nil, p.unexpected(name, "expected property name")
			}
			x = &Member{Object: x, Name: name.raw}
		case tok.is("["):
			p.next()
			index, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			x = &Member{Object: x, Index: index}
		case tok.is("("):
			p.next()
			args, err := p.parseArguments(")")
			if err != nil {
				return nil, err
			}
			x = &Call{Callee: x, Args: args}
		default:
			return x, nil
		}
	}
}

func (p *parser) parseArguments(closing string) ([]Node, error) {
	var args []Node
	for !p.peek().is(closing) {
		arg, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.peek().is(",") {
			break
		}
		p.next()
	}
	if err := p.expect(closing); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		return &Literal{Value: tok.num}, nil
	case tokenString:
		return &Literal{Value: tok.str}, nil
	case tokenIdentifier:
		switch tok.raw {
		case "true":
			return &Literal{Value: true}, nil
		case "false":
			return &Literal{Value: false}, nil
		case "null", "undefined":
			return &Literal{Value: nil}, nil
		case "NaN":
			return &Literal{Value: math.NaN()}, nil
		case "Infinity":
			return &Literal{Value: math.Inf(1)}, nil
		}
		if isReserved(tok.raw) {
			return nil, p.unexpected(tok, "expected expression")
		}
		return &Ident{Name: tok.raw}, nil
	case tokenPunct:
		switch tok.raw {
		case "(":
			x, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return x, nil
		case "[":
			elems, err := p.parseArguments("]")
			if err != nil {
				return nil, err
			}
			return &ArrayLit{Elems: elems}, nil
		case "{":
			return p.parseObject()
		}
	}
	return nil, p.unexpected(tok, "expected expression")
}

func (p *parser) parseObject() (Node, error) {
	obj := &ObjectLit{}
	for !p.peek().is("}") {
		keyTok := p.next()
		var key string
		switch keyTok.kind {
		case tokenIdentifier, tokenString:
			key = keyTok.raw
			if keyTok.kind == tokenString {
				key = keyTok.str
			}
		case tokenNumber:
			key = FormatNumber(keyTok.num)
		default:
			return nil, p.unexpected(keyTok, "expected property key")
		}
		if keyTok.kind == tokenIdentifier && (p.peek().is(",") || p.peek().is("}")) {
			obj.Props = append(obj.Props, Property{Key: key, Value: &Ident{Name: key}})
		} else {
			if err := p.expect(":"); err != nil {
				return nil, err
			}
			value, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			obj.Props = append(obj.Props, Property{Key: key, Value: value})
		}
		if !p.peek().is(",") {
			break
		}
		p.next()
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return obj, nil
}

func assignable(n Node) bool {
	switch n.(type) {
	case *Ident, *Member:
		return true
	}
	return false
}

var reserved = map[string]bool{
	"var": true, "let": true, "const": true, "if": true, "else": true, "while": true,
	"for": true, "typeof": true, "function": true, "return": true, "new": true,
}

func isReserved(word string) bool { return reserved[word] }
