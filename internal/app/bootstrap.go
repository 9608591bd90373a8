package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stevedore/internal/api"
	"stevedore/internal/config"
	"stevedore/internal/docker"
	"stevedore/internal/kubernetes"
	"stevedore/internal/locking"
	"stevedore/internal/server"
	"stevedore/internal/tools"
	"stevedore/pkg/logging"
)

const bootstrapSubsystem = "Bootstrap"

// Application bundles the running pieces of the server.
type Application struct {
	config     *Config
	configPath string
	store      *config.Store
	server     *server.Server
}

// NewApplication performs the bootstrap sequence: logging, config,
// backend clients, providers, server. A missing Docker daemon is
// fatal; an unreachable cluster only disables the Kubernetes tools so
// the image workflow keeps working outside a cluster context.
func NewApplication(cfg *Config) (*Application, error) {
	logLevel := logging.LevelInfo
	if cfg.Debug {
		logLevel = logging.LevelDebug
	}
	// Logs go to stderr: with the stdio transport, stdout carries the
	// MCP protocol stream.
	logging.Init(logLevel, os.Stderr)

	configPath := cfg.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store := config.NewStore(loaded)
	locks := locking.NewRegistry()

	dockerClient, err := docker.NewClient()
	if err != nil {
		return nil, fmt.Errorf("docker is required: %w", err)
	}

	var applier *kubernetes.Applier
	clients, err := kubernetes.NewClients(loaded.Kubernetes.Kubeconfig)
	if err != nil {
		logging.Warn(bootstrapSubsystem, "Kubernetes tools disabled: %v", err)
	} else {
		applier = kubernetes.NewApplier(clients)
	}

	providers := buildProviders(dockerClient, applier, locks, store, loaded)

	return &Application{
		config:     cfg,
		configPath: configPath,
		store:      store,
		server:     server.New(loaded.Server, cfg.Version, providers...),
	}, nil
}

// buildProviders assembles the tool providers around one shared lock
// registry. A nil applier skips the Kubernetes provider; the status
// provider is only registered when monitoring is enabled.
func buildProviders(dockerClient tools.ImageClient, applier *kubernetes.Applier, locks *locking.Registry, timeouts tools.TimeoutSource, loaded config.Config) []api.ToolProvider {
	providers := []api.ToolProvider{
		tools.NewDockerProvider(dockerClient, locks, timeouts),
	}

	if applier != nil {
		providers = append(providers, tools.NewKubernetesProvider(applier, locks, timeouts, loaded.Kubernetes.DefaultNamespace))
	}

	if loaded.Monitoring.Enabled {
		providers = append(providers, tools.NewStatusProvider(locks))
	}

	return providers
}

// Run starts the server and the config watcher, then blocks until the
// context is cancelled or an interrupt signal arrives.
func (a *Application) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := config.NewWatcher(a.configPath, a.store)
	if err := watcher.Start(runCtx); err != nil {
		logging.Warn(bootstrapSubsystem, "Config hot reload disabled: %v", err)
	}

	if err := a.server.Start(runCtx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-runCtx.Done():
	case sig := <-sigChan:
		logging.Info(bootstrapSubsystem, "Received signal %s, shutting down", sig)
	}

	return a.server.Stop(context.Background())
}
