package compiler

import (
	"errors"
	"fmt"
)

// ErrAsyncDependencies is returned by Compile when a filter has no
// synchronous implementation. Use CompileContext or CompileAsync for such
// trees.
var ErrAsyncDependencies = errors.New("compiler: compiler has outstanding asynchronous dependencies, use asynchronous compilation")

// Error attributes a compile failure to the node that caused it.
type Error struct {
	Filename string
	Line     int
	Err      error
}

func (e *Error) Error() string {
	name := e.Filename
	if name == "" {
		name = "jade"
	}
	return fmt.Sprintf("%s:%d: %v", name, e.Line, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StructuralError reports a tree that cannot be lowered, such as a mixin
// block placeholder outside a mixin definition.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string { return "compiler: " + e.Msg }

func structuralf(format string, args ...any) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// UnknownFilterError reports a filter name missing from the registry.
type UnknownFilterError struct {
	Name string
	Err  error
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("compiler: unknown filter \":%s\"", e.Name)
}

func (e *UnknownFilterError) Unwrap() error { return e.Err }
