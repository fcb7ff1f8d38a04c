// Package filters provides the named text transforms applied to `:name`
// blocks of a template. A filter has a synchronous implementation, an
// asynchronous one, or both; Registry.Start prefers the asynchronous form
// and reports completion through a Call.
package filters
