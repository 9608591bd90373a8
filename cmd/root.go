package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the stevedore application.
var rootCmd = &cobra.Command{
	Use:   "stevedore",
	Short: "MCP tool server for Docker and Kubernetes operations",
	Long: `stevedore exposes Docker image operations (build, tag, push, remove)
and Kubernetes manifest application as MCP tools for AI assistants.

Concurrent operations on the same logical resource are serialized
through per-key locks, and resource application is idempotent:
existing resources are updated instead of failing on re-creation.`,
	// SilenceUsage prevents cobra from printing the usage message on
	// errors the application already reports.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from main
// to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command. Called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "stevedore version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
