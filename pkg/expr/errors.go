package expr

import "fmt"

// SyntaxError reports malformed expression or statement source.
type SyntaxError struct {
	Src    string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: %s at offset %d in %q", e.Msg, e.Offset, e.Src)
}

func syntaxErrorf(src string, offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Src: src, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
