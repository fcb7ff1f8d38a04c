// Package ast defines the node tree consumed by the compiler. The variant set
// is closed (see Kind) and nodes are immutable once built. Trees normally come
// from a template parser; Decode also reads them from YAML or JSON documents so
// tools and tests can describe templates without a parser.
package ast
