package jade

import "sync"

type cache struct {
	mu      sync.RWMutex
	entries map[string]*Template
}

var templates = &cache{entries: make(map[string]*Template)}

func (c *cache) get(filename string) (*Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tmpl, ok := c.entries[filename]
	return tmpl, ok
}

func (c *cache) put(filename string, tmpl *Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[filename] = tmpl
}

// Cached reports whether a compiled template is cached under filename.
func Cached(filename string) bool {
	_, ok := templates.get(filename)
	return ok
}

// ClearCache drops every cached template.
func ClearCache() {
	templates.mu.Lock()
	defer templates.mu.Unlock()
	clear(templates.entries)
}
