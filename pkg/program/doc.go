// Package program defines render programs: a flat instruction stream built
// through a coalescing Buffer, linked into a tree and executed by an
// interpreter against render locals.
//
// Instructions mirror the statements a JavaScript template function would
// contain (buffer pushes, if/else headers with blocks, switch labels, loops,
// mixin definitions and calls, debug bookkeeping), which keeps the listing
// printed by Program.String readable.
package program
