// Package runtime holds the helpers a compiled render program calls while it
// executes: HTML escaping, attribute serialization, attribute object merging
// and error enrichment with template line context.
package runtime
