package filters

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry stores filters by name. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	filters map[string]Filter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{filters: make(map[string]Filter)}
}

// Default returns a new registry holding the built-in filters.
func Default() *Registry {
	r := NewRegistry()
	for _, f := range Builtins() {
		r.MustRegister(f)
	}
	return r
}

// Register adds a filter. Duplicate names return an error.
func (r *Registry) Register(f Filter) error {
	if err := f.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.filters[f.Name]; exists {
		return fmt.Errorf("filters: filter %q already registered", f.Name)
	}
	r.filters[f.Name] = f
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(f Filter) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Replace registers f, overriding any filter with the same name.
func (r *Registry) Replace(f Filter) error {
	if err := f.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[f.Name] = f
	return nil
}

// Get retrieves a filter by name.
func (r *Registry) Get(name string) (Filter, error) {
	if r == nil {
		return Filter{}, unknownFilter(name)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.filters[name]
	if !ok {
		return Filter{}, unknownFilter(name)
	}
	return f, nil
}

// Has reports whether a filter is registered.
func (r *Registry) Has(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// List returns the sorted filter names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render runs a filter synchronously.
func (r *Registry) Render(name, text string, options map[string]any) (string, error) {
	f, err := r.Get(name)
	if err != nil {
		return "", err
	}
	if f.Sync == nil {
		return "", fmt.Errorf("filters: %q: %w", name, ErrAsyncOnly)
	}
	out, err := f.Sync(text, options)
	if err != nil {
		return "", fmt.Errorf("filters: %q: %w", name, err)
	}
	return f.wrap(out), nil
}

// Start runs a filter, preferring its asynchronous implementation. The
// returned call is already complete for synchronous filters, for unknown
// names and for asynchronous filters that finish before returning.
func (r *Registry) Start(ctx context.Context, name, text string, options map[string]any) *Call {
	f, err := r.Get(name)
	if err != nil {
		return completed("", err)
	}
	if f.Async == nil {
		out, err := r.Render(name, text, options)
		return completed(out, err)
	}

	call := newCall()
	f.Async(ctx, text, options, func(out string, err error) {
		if err != nil {
			call.resolve("", fmt.Errorf("filters: %q: %w", name, err))
			return
		}
		call.resolve(f.wrap(out), nil)
	})
	return call
}
