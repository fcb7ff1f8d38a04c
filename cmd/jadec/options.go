package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	jade "github.com/goliatone/go-jade"
	"github.com/goliatone/go-jade/internal/config"
	"github.com/goliatone/go-jade/pkg/compiler"
	"github.com/goliatone/go-jade/pkg/expr"
)

// compileFlags are shared by every command that compiles trees. Flags the
// user set override the project file.
type compileFlags struct {
	pretty  bool
	doctype string
	debug   string
	async   bool
}

func (f *compileFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "indent the rendered markup")
	cmd.Flags().StringVar(&f.doctype, "doctype", "", "doctype to assume (html, xml, transitional, ...)")
	cmd.Flags().StringVar(&f.debug, "debug", "", "debug records: off, lines or source")
	cmd.Flags().BoolVar(&f.async, "async", false, "wait for asynchronous filters")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(".")
}

func (f *compileFlags) options(cmd *cobra.Command, cfg *config.Config) ([]jade.Option, error) {
	options, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("pretty") {
		options = append(options, jade.WithPretty(f.pretty))
	}
	if f.doctype != "" {
		options = append(options, jade.WithDoctype(f.doctype))
	}
	if f.debug != "" {
		mode, ok := compiler.ParseDebugMode(f.debug)
		if !ok {
			return nil, fmt.Errorf("unknown --debug value %q (want off, lines or source)", f.debug)
		}
		options = append(options, jade.WithCompileDebug(mode))
	}
	return options, nil
}

func (f *compileFlags) compile(cmd *cobra.Command, cfg *config.Config, path string) (*jade.Template, error) {
	options, err := f.options(cmd, cfg)
	if err != nil {
		return nil, err
	}

	if f.async {
		return jade.CompileFileContext(cmd.Context(), path, options...)
	}
	tmpl, err := jade.CompileFile(path, options...)
	if errors.Is(err, compiler.ErrAsyncDependencies) {
		return nil, fmt.Errorf("%w (rerun with --async)", err)
	}
	return tmpl, err
}

func loadLocals(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locals: %w", err)
	}
	locals, err := expr.DecodeLocals(data)
	if err != nil {
		return nil, fmt.Errorf("decode locals %s: %w", path, err)
	}
	return locals, nil
}
