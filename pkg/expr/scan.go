package expr

// Max is the result of ParseMax: Src is the expression text and End the
// offset of the closing delimiter.
type Max struct {
	Src string
	End int
}

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// ParseMax scans src for the first '}' not nested inside brackets or string
// literals. It is used to delimit the expression of an interpolation such as
// `#{user.name}`.
func ParseMax(src string) (Max, error) {
	var stack []byte
	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch ch {
		case '"', '\'', '`':
			end, ok := skipQuoted(src, i)
			if !ok {
				return Max{}, syntaxErrorf(src, i, "unterminated string literal")
			}
			i = end
		case '(', '[', '{':
			stack = append(stack, closers[ch])
		case ')', ']', '}':
			if len(stack) == 0 {
				if ch == '}' {
					return Max{Src: src[:i], End: i}, nil
				}
				return Max{}, syntaxErrorf(src, i, "mismatched %q", ch)
			}
			if stack[len(stack)-1] != ch {
				return Max{}, syntaxErrorf(src, i, "mismatched %q", ch)
			}
			stack = stack[:len(stack)-1]
		}
	}
	return Max{}, syntaxErrorf(src, len(src), "unexpected end of input, expected \"}\"")
}

func skipQuoted(src string, start int) (int, bool) {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i, true
		}
	}
	return 0, false
}
