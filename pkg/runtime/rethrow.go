package runtime

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// contextLines is the number of source lines shown on each side of the
// failing line.
const contextLines = 3

// RuntimeError is an error raised while executing a render program, enriched
// with the template position that was active when it happened.
type RuntimeError struct {
	Filename string
	Line     int
	// Context is the source excerpt around Line, empty when the source was
	// not available.
	Context string
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s on line %d", e.Err.Error(), e.Line)
	}
	name := e.Filename
	if name == "" {
		name = "Jade"
	}
	return fmt.Sprintf("%s:%d\n%s\n\n%s", name, e.Line, e.Context, e.Err.Error())
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// ReadSource loads template source from filename for error context. It
// returns an empty string when the file cannot be read.
func ReadSource(filename string) string {
	if filename == "" {
		return ""
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return ""
	}
	return string(data)
}

// Rethrow enriches err with the template position. Without src only the
// line number is attached. Errors that already carry a position are
// returned unchanged.
func Rethrow(err error, filename string, line int, src string) error {
	if err == nil {
		return nil
	}
	var existing *RuntimeError
	if errors.As(err, &existing) {
		return err
	}

	if src == "" {
		return &RuntimeError{Filename: filename, Line: line, Err: err}
	}
	return &RuntimeError{
		Filename: filename,
		Line:     line,
		Context:  sourceContext(src, line),
		Err:      err,
	}
}

func sourceContext(src string, line int) string {
	lines := strings.Split(src, "\n")
	start := max(line-contextLines, 0)
	end := min(len(lines), line+contextLines)

	var b strings.Builder
	for i := start; i < end; i++ {
		current := i + 1
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if current == line {
			b.WriteString("  > ")
		} else {
			b.WriteString("    ")
		}
		fmt.Fprintf(&b, "%d| %s", current, lines[i])
	}
	return b.String()
}
