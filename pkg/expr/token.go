package expr

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenString
	tokenIdentifier
	tokenPunct
)

type token struct {
	kind tokenKind
	raw  string
	num  float64
	str  string
	pos  int
}

func (t token) is(punct string) bool {
	return t.kind == tokenPunct && t.raw == punct
}

func (t token) isWord(word string) bool {
	return t.kind == tokenIdentifier && t.raw == word
}

// punctuators are matched longest first.
var punctuators = []string{
	"===", "!==", "...",
	"==", "!=", "<=", ">=", "&&", "||", "??", "++", "--", "+=", "-=", "*=", "/=", "%=",
	"+", "-", "*", "/", "%", "<", ">", "!", "=", "?", ":", ".", ",", ";", "(", ")", "[", "]", "{", "}",
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		ch := src[i]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v' {
			i++
			continue
		}

		switch {
		case ch == '"' || ch == '\'':
			value, end, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: src[i:end], str: value, pos: i})
			i = end
			continue
		case isDigit(ch) || (ch == '.' && i+1 < len(src) && isDigit(src[i+1])):
			value, end, err := scanNumber(src, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenNumber, raw: src[i:end], num: value, pos: i})
			i = end
			continue
		}

		r, size := utf8.DecodeRuneInString(src[i:])
		if isIdentStart(r) {
			start := i
			i += size
			for i < len(src) {
				r, size = utf8.DecodeRuneInString(src[i:])
				if !isIdentPart(r) {
					break
				}
				i += size
			}
			tokens = append(tokens, token{kind: tokenIdentifier, raw: src[start:i], pos: start})
			continue
		}

		matched := false
		for _, punct := range punctuators {
			if strings.HasPrefix(src[i:], punct) {
				tokens = append(tokens, token{kind: tokenPunct, raw: punct, pos: i})
				i += len(punct)
				matched = true
				break
			}
		}
		if !matched {
			return nil, syntaxErrorf(src, i, "unexpected character %q", r)
		}
	}
	tokens = append(tokens, token{kind: tokenEOF, pos: len(src)})
	return tokens, nil
}

func scanString(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == quote:
			return b.String(), i + 1, nil
		case ch == '\n':
			return "", 0, syntaxErrorf(src, i, "unterminated string literal")
		case ch == '\\':
			if i+1 >= len(src) {
				return "", 0, syntaxErrorf(src, i, "unterminated string literal")
			}
			esc := src[i+1]
			i += 2
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'v':
				b.WriteByte('\v')
			case '0':
				b.WriteByte(0)
			case '\n':
				// line continuation
			case 'x', 'u':
				width := 2
				if esc == 'u' {
					width = 4
				}
				if i+width > len(src) {
					return "", 0, syntaxErrorf(src, i, "invalid escape sequence")
				}
				code, err := strconv.ParseUint(src[i:i+width], 16, 32)
				if err != nil {
					return "", 0, syntaxErrorf(src, i, "invalid escape sequence")
				}
				b.WriteRune(rune(code))
				i += width
			default:
				b.WriteByte(esc)
			}
		default:
			b.WriteByte(ch)
			i++
		}
	}
	return "", 0, syntaxErrorf(src, start, "unterminated string literal")
}

func scanNumber(src string, start int) (float64, int, error) {
	i := start
	if src[i] == '0' && i+1 < len(src) && (src[i+1] == 'x' || src[i+1] == 'X') {
		i += 2
		for i < len(src) && isHexDigit(src[i]) {
			i++
		}
		value, err := strconv.ParseUint(src[start+2:i], 16, 64)
		if err != nil {
			return 0, 0, syntaxErrorf(src, start, "invalid hex literal")
		}
		return float64(value), i, nil
	}
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			i = j
			for i < len(src) && isDigit(src[i]) {
				i++
			}
		}
	}
	value, err := strconv.ParseFloat(src[start:i], 64)
	if err != nil {
		return 0, 0, syntaxErrorf(src, start, "invalid number literal")
	}
	return value, i, nil
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
