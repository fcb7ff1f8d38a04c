// Package expr implements the expression language embedded in templates: a
// JavaScript subset covering literals, member access, calls, arithmetic,
// comparison, logical and conditional operators, assignment, and the simple
// statements used by code lines (var/let/const declarations and the
// if/else/while/for headers whose bodies come from the template block).
//
// Values are plain Go values. Numbers are float64, object literals evaluate
// to *Object (insertion ordered) and array literals to []any. Go maps, slices,
// structs and functions supplied through render locals are read through
// reflection.
package expr
