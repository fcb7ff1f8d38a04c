// Package config loads the jadec project file (.jaderc.yaml).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	jade "github.com/goliatone/go-jade"
	"github.com/goliatone/go-jade/pkg/compiler"
	"github.com/goliatone/go-jade/pkg/filters"
)

// FileName is the project file looked up by Load.
const FileName = ".jaderc.yaml"

// Config is the decoded project file.
type Config struct {
	Pretty       bool   `yaml:"pretty"`
	CompileDebug string `yaml:"compileDebug"`
	Doctype      string `yaml:"doctype"`
	// SelfClosing replaces the default self-closing tag set when not empty.
	SelfClosing []string `yaml:"selfClosing"`
	// Filters holds default options per filter name. Options set on a
	// filter node win.
	Filters map[string]map[string]any `yaml:"filters"`
	Watch   WatchConfig               `yaml:"watch"`
}

// WatchConfig configures `jadec watch`.
type WatchConfig struct {
	Extensions []string      `yaml:"extensions"`
	Debounce   time.Duration `yaml:"debounce"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	return &Config{
		CompileDebug: compiler.DebugLines.String(),
		Watch: WatchConfig{
			Extensions: []string{".yaml", ".yml", ".json"},
			Debounce:   100 * time.Millisecond,
		},
	}
}

// Load reads FileName from dir. A missing file yields Default.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads the project file at path. A missing file yields Default.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a project file and applies defaults to the fields it
// leaves empty.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	defaults := Default()
	if c.CompileDebug == "" {
		c.CompileDebug = defaults.CompileDebug
	}
	if _, ok := compiler.ParseDebugMode(c.CompileDebug); !ok {
		return fmt.Errorf("config: unknown compileDebug %q (want off, lines or source)", c.CompileDebug)
	}
	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = defaults.Watch.Extensions
	}
	for i, ext := range c.Watch.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Watch.Extensions[i] = ext
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = defaults.Watch.Debounce
	}
	return nil
}

// DebugMode returns the parsed compileDebug setting.
func (c *Config) DebugMode() compiler.DebugMode {
	mode, _ := compiler.ParseDebugMode(c.CompileDebug)
	return mode
}

// Registry returns the default filter registry with the configured option
// defaults applied.
func (c *Config) Registry() (*filters.Registry, error) {
	registry := filters.Default()
	for name, defaults := range c.Filters {
		filter, err := registry.Get(name)
		if err != nil {
			return nil, fmt.Errorf("config: filters: %w", err)
		}
		if err := registry.Replace(filter.WithDefaults(defaults)); err != nil {
			return nil, fmt.Errorf("config: filters: %w", err)
		}
	}
	return registry, nil
}

// Options translates the configuration into compile options.
func (c *Config) Options() ([]jade.Option, error) {
	registry, err := c.Registry()
	if err != nil {
		return nil, err
	}
	options := []jade.Option{
		jade.WithPretty(c.Pretty),
		jade.WithCompileDebug(c.DebugMode()),
		jade.WithFilters(registry),
	}
	if c.Doctype != "" {
		options = append(options, jade.WithDoctype(c.Doctype))
	}
	if len(c.SelfClosing) > 0 {
		options = append(options, jade.WithSelfClosing(c.SelfClosing...))
	}
	return options, nil
}

// Watches reports whether path has one of the watched extensions.
func (c *Config) Watches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range c.Watch.Extensions {
		if candidate == ext {
			return true
		}
	}
	return false
}
