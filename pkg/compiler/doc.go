// Package compiler lowers a template node tree into a render program.
//
// Traversal is continuation-passing: every node handler receives a
// continuation and calls it exactly once, either before returning or after
// the one asynchronous operation it waits on (a filter) completes. Compile
// runs every filter synchronously and fails with ErrAsyncDependencies when a
// filter has no synchronous form; CompileContext and CompileAsync start the
// asynchronous form, wait for it and resume the traversal.
package compiler
