// Package main provides the socialdash server and CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"social-dashboard-backend/internal/config"
)

var version = "0.1.0"

func main() {
	config.LoadDotEnv()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the socialdash CLI.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "socialdash",
		Short:   "Social media engagement dashboard backend",
		Long:    "Socialdash loads post engagement data from CSV, serves dashboard views over HTTP and proxies the assistant chat.",
		Version: version,
		// Runs the server when invoked without a subcommand.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	rootCmd.SetVersionTemplate("socialdash version {{.Version}}\n")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSeedDemoCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newGenerateCmd())

	return rootCmd
}
