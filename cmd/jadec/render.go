package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-jade/internal/prompt"
)

func newRenderCommand(configPath *string) *cobra.Command {
	var flags compileFlags
	var localsPath, output string
	var ask bool

	cmd := &cobra.Command{
		Use:   "render <tree>",
		Short: "Render a node tree to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			tmpl, err := flags.compile(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			locals, err := loadLocals(localsPath)
			if err != nil {
				return err
			}
			if ask {
				globals := tmpl.Program().Globals()
				if err := prompt.Missing(cmd.Context(), prompt.NewSurveyDriver(), globals, locals); err != nil {
					return err
				}
			}

			html, err := tmpl.RenderContext(cmd.Context(), locals)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), html)
				return nil
			}
			if err := os.WriteFile(output, []byte(html), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render("✓ rendered "+output))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&localsPath, "locals", "l", "", "YAML or JSON file with render locals")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&ask, "prompt", false, "ask for referenced locals that are missing")
	return cmd
}

func newProgramCommand(configPath *string) *cobra.Command {
	var flags compileFlags

	cmd := &cobra.Command{
		Use:   "program <tree>",
		Short: "Print the compiled render program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			tmpl, err := flags.compile(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			prog := tmpl.Program()
			fmt.Fprint(cmd.OutOrStdout(), prog.String())
			if globals := prog.Globals(); len(globals) > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(fmt.Sprintf("// locals: %v", globals)))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
