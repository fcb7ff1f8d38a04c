package runtime

import (
	"strings"

	"github.com/goliatone/go-jade/pkg/expr"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape converts v to a string and escapes the HTML special characters.
func Escape(v any) string {
	return EscapeString(expr.ToString(v))
}

// EscapeString escapes & < > and ".
func EscapeString(s string) string {
	if !strings.ContainsAny(s, `&<>"`) {
		return s
	}
	return htmlEscaper.Replace(s)
}

// Interp renders an interpolated value: nil becomes the empty string.
func Interp(v any) string {
	if v == nil {
		return ""
	}
	return expr.ToString(v)
}
