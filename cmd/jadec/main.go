package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "jadec",
		Short: "Compile and render jade node trees",
		Long: `jadec compiles template node trees (YAML or JSON documents) into render
programs, renders them against YAML locals and watches directories of trees
for changes. Project defaults are read from .jaderc.yaml.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "project file (default ./.jaderc.yaml)")

	rootCmd.AddCommand(newRenderCommand(&configPath))
	rootCmd.AddCommand(newProgramCommand(&configPath))
	rootCmd.AddCommand(newWatchCommand(&configPath))
	return rootCmd
}
