package jade

import (
	"log/slog"

	"github.com/goliatone/go-jade/pkg/compiler"
	"github.com/goliatone/go-jade/pkg/filters"
	theme "github.com/goliatone/go-theme"
)

// DebugMode aliases compiler.DebugMode so callers need a single import.
type DebugMode = compiler.DebugMode

const (
	DebugLines  = compiler.DebugLines
	DebugOff    = compiler.DebugOff
	DebugSource = compiler.DebugSource
)

type settings struct {
	compiler []compiler.Option
	filename string
	cache    bool
	logger   *slog.Logger

	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
}

func newSettings(options ...Option) settings {
	s := settings{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&s)
	}
	return s
}

func (s settings) compilerOptions() []compiler.Option {
	out := make([]compiler.Option, 0, len(s.compiler)+2)
	out = append(out, s.compiler...)
	if s.filename != "" {
		out = append(out, compiler.WithFilename(s.filename))
	}
	if s.logger != nil {
		out = append(out, compiler.WithLogger(s.logger))
	}
	return out
}

// Option configures compilation and rendering.
type Option func(*settings)

// WithCompilerOptions forwards raw compiler options.
func WithCompilerOptions(options ...compiler.Option) Option {
	return func(s *settings) {
		s.compiler = append(s.compiler, options...)
	}
}

// WithPretty enables indented output.
func WithPretty(pretty bool) Option {
	return WithCompilerOptions(compiler.WithPretty(pretty))
}

// WithCompileDebug selects the diagnostics embedded in compiled programs.
func WithCompileDebug(mode DebugMode) Option {
	return WithCompilerOptions(compiler.WithCompileDebug(mode))
}

// WithDoctype seeds the doctype.
func WithDoctype(name string) Option {
	return WithCompilerOptions(compiler.WithDoctype(name))
}

// WithSource supplies the template source embedded by DebugSource.
func WithSource(source string) Option {
	return WithCompilerOptions(compiler.WithSource(source))
}

// WithFilters replaces the default filter registry.
func WithFilters(registry *filters.Registry) Option {
	return WithCompilerOptions(compiler.WithFilters(registry))
}

// WithSelfClosing replaces the self-closing tag set.
func WithSelfClosing(names ...string) Option {
	return WithCompilerOptions(compiler.WithSelfClosing(names...))
}

// WithFilename names the template. It is used in diagnostics, passed to
// filters and keys the cache.
func WithFilename(filename string) Option {
	return func(s *settings) {
		s.filename = filename
	}
}

// WithCache reuses the compiled template registered under the filename.
// It requires WithFilename.
func WithCache(enabled bool) Option {
	return func(s *settings) {
		s.cache = enabled
	}
}

// WithLogger enables debug traces of compilation.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithThemeSelector resolves a go-theme selection at compile time and
// exposes it to templates as the "theme" local.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(s *settings) {
		s.selector = selector
		s.themeName = name
		s.themeVariant = variant
	}
}
