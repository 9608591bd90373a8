package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"stevedore/internal/app"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveConfigPath overrides the default configuration directory.
var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stevedore MCP server",
	Long: `Starts the MCP server over the configured transport (stdio by
default) and serves the Docker and Kubernetes tools until interrupted.

Configuration:
  stevedore reads config.yaml from ~/.config/stevedore (or the
  directory given with --config-path) and applies environment
  overrides: STEVEDORE_LOCK_TIMEOUT, STEVEDORE_BUILD_LOCK_TIMEOUT,
  STEVEDORE_MONITORING_ENABLED, STEVEDORE_NAMESPACE and KUBECONFIG.
  Lock timeouts are hot-reloaded when the config file changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveConfigPath, rootCmd.Version)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Configuration directory (default: ~/.config/stevedore)")
}
