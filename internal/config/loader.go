package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"stevedore/pkg/logging"
)

const (
	userConfigDir  = ".config/stevedore"
	configFileName = "config.yaml"
)

// GetDefaultConfigPath returns the directory where stevedore looks for
// config.yaml when no explicit path is given.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// Load loads the configuration in priority order: environment
// variables over the config file over built-in defaults. A missing
// config file is not an error.
func Load(configPath string) (Config, error) {
	config := GetDefaultConfig()

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	if err := applyEnvOverrides(&config); err != nil {
		return Config{}, err
	}
	if err := validate(config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// applyEnvOverrides layers environment variables over the loaded
// configuration. Environment always wins over the file.
func applyEnvOverrides(config *Config) error {
	if raw := os.Getenv("STEVEDORE_LOCK_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid STEVEDORE_LOCK_TIMEOUT %q: %w", raw, err)
		}
		config.Locking.DefaultTimeout = Duration(parsed)
	}

	if raw := os.Getenv("STEVEDORE_BUILD_LOCK_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid STEVEDORE_BUILD_LOCK_TIMEOUT %q: %w", raw, err)
		}
		config.Locking.BuildTimeout = Duration(parsed)
	}

	if raw := os.Getenv("STEVEDORE_MONITORING_ENABLED"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid STEVEDORE_MONITORING_ENABLED %q: %w", raw, err)
		}
		config.Monitoring.Enabled = parsed
	}

	if namespace := os.Getenv("STEVEDORE_NAMESPACE"); namespace != "" {
		config.Kubernetes.DefaultNamespace = namespace
	}

	// KUBECONFIG is the conventional fallback; an explicit path in the
	// config file wins.
	if config.Kubernetes.Kubeconfig == "" {
		config.Kubernetes.Kubeconfig = os.Getenv("KUBECONFIG")
	}

	return nil
}

func validate(config Config) error {
	switch config.Server.Transport {
	case TransportStdio, TransportSSE, TransportStreamableHTTP:
	default:
		return fmt.Errorf("unknown transport %q (expected %s, %s or %s)",
			config.Server.Transport, TransportStdio, TransportSSE, TransportStreamableHTTP)
	}
	if config.Locking.DefaultTimeout <= 0 {
		return fmt.Errorf("locking.defaultTimeout must be positive, got %s", config.Locking.DefaultTimeout.Std())
	}
	if config.Locking.BuildTimeout <= 0 {
		return fmt.Errorf("locking.buildTimeout must be positive, got %s", config.Locking.BuildTimeout.Std())
	}
	return nil
}
