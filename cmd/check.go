package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"stevedore/internal/config"
	"stevedore/internal/docker"
	"stevedore/internal/kubernetes"
	"stevedore/pkg/logging"
)

var checkConfigPath string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the local environment for Docker and Kubernetes access",
	Long: `Verifies the prerequisites the server needs at runtime: the docker
binary, the Docker daemon, the configuration file, and the Kubernetes
cluster connection. Prints one row per check.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

type checkResult struct {
	name    string
	ok      bool
	details string
}

func runCheck(cmd *cobra.Command, args []string) error {
	// Checks report through the table, not the log.
	logging.Init(logging.LevelError, os.Stderr)

	results := []checkResult{
		checkDockerBinary(),
		checkDockerDaemon(cmd.Context()),
	}
	results = append(results, checkConfiguration()...)

	failed := 0
	for _, result := range results {
		if !result.ok {
			failed++
		}
	}

	renderChecks(cmd, results)

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

func checkDockerBinary() checkResult {
	path, err := exec.LookPath("docker")
	if err != nil {
		return checkResult{name: "docker binary", details: "not found in PATH"}
	}
	return checkResult{name: "docker binary", ok: true, details: path}
}

func checkDockerDaemon(ctx context.Context) checkResult {
	client, err := docker.NewClient()
	if err != nil {
		return checkResult{name: "docker daemon", details: err.Error()}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return checkResult{name: "docker daemon", details: err.Error()}
	}
	return checkResult{name: "docker daemon", ok: true, details: "reachable"}
}

// checkConfiguration loads the config and contacts the cluster it
// points at. Config failures short-circuit the cluster check.
func checkConfiguration() []checkResult {
	configPath := checkConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return []checkResult{{name: "configuration", details: err.Error()}}
		}
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return []checkResult{{name: "configuration", details: err.Error()}}
	}

	results := []checkResult{{
		name:    "configuration",
		ok:      true,
		details: fmt.Sprintf("transport %s, lock timeout %s", loaded.Server.Transport, loaded.Locking.DefaultTimeout.Std()),
	}}

	results = append(results, checkCluster(loaded.Kubernetes.Kubeconfig))
	return results
}

func checkCluster(kubeconfig string) checkResult {
	clients, err := kubernetes.NewClients(kubeconfig)
	if err != nil {
		return checkResult{name: "kubernetes cluster", details: err.Error()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	version, err := kubernetes.NewApplier(clients).ServerVersion(ctx)
	if err != nil {
		return checkResult{name: "kubernetes cluster", details: err.Error()}
	}
	return checkResult{name: "kubernetes cluster", ok: true, details: "server version " + version}
}

func renderChecks(cmd *cobra.Command, results []checkResult) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"CHECK", "STATUS", "DETAILS"})

	for _, result := range results {
		status := text.FgGreen.Sprint("OK")
		if !result.ok {
			status = text.FgRed.Sprint("FAILED")
		}
		t.AppendRow(table.Row{result.name, status, result.details})
	}

	t.Render()
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkConfigPath, "config-path", "", "Configuration directory (default: ~/.config/stevedore)")
}
