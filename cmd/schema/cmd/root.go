// Package cmd holds the cobra subcommands (fmt, check, trace) that need
// richer flag sets than main's bare flag dispatch gives them.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "schema",
	Short: "SchemA tooling subcommands",
	Long: `schema fmt/check/trace operate on JSON-encoded SchemA programs
(package ast's bridge for the external AST ingestion contract).`,
}

// Execute runs the cobra command tree against args (everything after the
// subcommand name main already consumed from os.Args).
func Execute(args []string) {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
