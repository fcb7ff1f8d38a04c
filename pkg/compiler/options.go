package compiler

import (
	"log/slog"

	"github.com/goliatone/go-jade/pkg/filters"
)

// DebugMode controls the diagnostics embedded in a program.
type DebugMode int

const (
	// DebugLines records template positions so runtime errors carry the
	// failing line. It is the default.
	DebugLines DebugMode = iota
	// DebugOff strips line tracking.
	DebugOff
	// DebugSource also embeds the template source for error context.
	DebugSource
)

func (m DebugMode) String() string {
	switch m {
	case DebugOff:
		return "off"
	case DebugSource:
		return "source"
	default:
		return "lines"
	}
}

// ParseDebugMode resolves "off", "lines" or "source".
func ParseDebugMode(name string) (DebugMode, bool) {
	switch name {
	case "off", "false":
		return DebugOff, true
	case "lines", "true", "":
		return DebugLines, true
	case "source":
		return DebugSource, true
	}
	return DebugLines, false
}

var defaultSelfClosing = []string{"meta", "img", "link", "input", "source", "area", "base", "col", "br", "hr"}

type config struct {
	pretty      bool
	debug       DebugMode
	doctype     string
	filename    string
	document    string
	source      string
	filters     *filters.Registry
	selfClosing map[string]struct{}
	logger      *slog.Logger
}

func newConfig(options ...Option) config {
	cfg := config{}
	cfg.selfClosing = nameSet(defaultSelfClosing)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.filters == nil {
		cfg.filters = filters.Default()
	}
	return cfg
}

// Option customises a compilation.
type Option func(*config)

// WithPretty enables indentation of the rendered markup.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

// WithCompileDebug selects the diagnostics embedded in the program.
func WithCompileDebug(mode DebugMode) Option {
	return func(c *config) {
		c.debug = mode
	}
}

// WithDoctype seeds the doctype before any tag is seen.
func WithDoctype(name string) Option {
	return func(c *config) {
		c.doctype = name
	}
}

// WithFilename sets the template filename used in diagnostics and passed to
// filters.
func WithFilename(filename string) Option {
	return func(c *config) {
		c.filename = filename
	}
}

// WithDocument names the node tree document the tree was decoded from.
// Runtime errors never read it as template source.
func WithDocument(path string) Option {
	return func(c *config) {
		c.document = path
	}
}

// WithSource supplies the template source embedded by DebugSource.
func WithSource(source string) Option {
	return func(c *config) {
		c.source = source
	}
}

// WithFilters replaces the default filter registry.
func WithFilters(registry *filters.Registry) Option {
	return func(c *config) {
		c.filters = registry
	}
}

// WithSelfClosing replaces the set of tag names rendered without a closing
// tag.
func WithSelfClosing(names ...string) Option {
	return func(c *config) {
		c.selfClosing = nameSet(names)
	}
}

// WithLogger enables debug traces of the traversal.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
