package filters

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFilter is returned for names that are not registered.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrAsyncOnly is returned by Render for filters without a synchronous
	// implementation.
	ErrAsyncOnly = errors.New("filter is asynchronous only")
)

// Func transforms text synchronously. Options carry the filter attributes
// of the template node plus the template filename under "filename".
type Func func(text string, options map[string]any) (string, error)

// AsyncFunc transforms text and reports the result through done, which must
// be called exactly once. It may call done before returning.
type AsyncFunc func(ctx context.Context, text string, options map[string]any, done func(string, error))

// Format declares what a filter produces so the registry can wrap it.
type Format string

const (
	FormatText Format = ""
	FormatHTML Format = "html"
	// FormatJS output is wrapped in a script element.
	FormatJS Format = "js"
	// FormatCSS output is wrapped in a style element.
	FormatCSS Format = "css"
	// FormatXML output gets its single quotes escaped.
	FormatXML Format = "xml"
)

// Filter is a registered transform.
type Filter struct {
	Name   string
	Sync   Func
	Async  AsyncFunc
	Format Format
}

func (f Filter) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("filters: filter name is required")
	}
	if f.Sync == nil && f.Async == nil {
		return fmt.Errorf("filters: filter %q needs a sync or async implementation", f.Name)
	}
	return nil
}

func (f Filter) wrap(out string) string {
	switch f.Format {
	case FormatJS:
		return "<script type=\"text/javascript\">\n" + out + "</script>"
	case FormatCSS:
		return "<style type=\"text/css\">" + out + "</style>"
	case FormatXML:
		return strings.ReplaceAll(out, "'", "&#39;")
	}
	return out
}

func unknownFilter(name string) error {
	return fmt.Errorf("filters: %w \":%s\"", ErrUnknownFilter, name)
}

// WithDefaults returns a copy of f whose options start from defaults.
// Options passed at render time override them.
func (f Filter) WithDefaults(defaults map[string]any) Filter {
	if len(defaults) == 0 {
		return f
	}
	merge := func(options map[string]any) map[string]any {
		out := make(map[string]any, len(defaults)+len(options))
		for key, value := range defaults {
			out[key] = value
		}
		for key, value := range options {
			out[key] = value
		}
		return out
	}
	if sync := f.Sync; sync != nil {
		f.Sync = func(text string, options map[string]any) (string, error) {
			return sync(text, merge(options))
		}
	}
	if async := f.Async; async != nil {
		f.Async = func(ctx context.Context, text string, options map[string]any, done func(string, error)) {
			async(ctx, text, merge(options), done)
		}
	}
	return f
}
