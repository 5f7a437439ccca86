// Package config implements application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns a Config populated with default values for every section.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                     DefaultServerPort,
			ReadTimeoutSeconds:       DefaultServerReadTimeoutSeconds,
			WriteTimeoutSeconds:      DefaultServerWriteTimeoutSeconds,
			IdleTimeoutSeconds:       DefaultServerIdleTimeoutSeconds,
			ReadHeaderTimeoutSeconds: DefaultServerReadHeaderTimeoutSeconds,
		},
		Logger: LoggerConfig{
			Level:   DefaultLoggerLevel,
			Format:  DefaultLoggerFormat,
			Backend: DefaultLoggerBackend,
		},
		ETHClient: ETHClientConfig{
			Provider:             DefaultEthProvider,
			ClientTimeoutSeconds: DefaultEthClientTimeoutSeconds,
			RequestsPerSecond:    DefaultEthRequestsPerSecond,
			Burst:                DefaultEthBurst,
		},
		Explorer: ExplorerConfig{
			WindowSize:          DefaultExplorerWindowSize,
			FetchTimeoutSeconds: DefaultExplorerFetchTimeoutSeconds,
			CacheSize:           DefaultExplorerCacheSize,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}

// LoadConfig loads the configuration from a YAML file, applies environment overrides and validates the result.
// A missing file at the default location is not an error; defaults are used instead.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	loadPath := filePath
	if loadPath == "" {
		loadPath = DefaultConfigFilePath
	}

	fileBytes, err := os.ReadFile(loadPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(fileBytes, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", loadPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && (filePath == "" || filePath == DefaultConfigFilePath):
	default:
		return nil, fmt.Errorf("failed to read config file '%s': %w", loadPath, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides credentials and endpoint from the environment.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvAPIKey); ok && v != "" {
		cfg.ETHClient.APIKey = v
	}
	if v, ok := os.LookupEnv(EnvNodeURL); ok && v != "" {
		cfg.ETHClient.NodeURL = v
	}
}

// applyDefaults restores defaults for keys the file set to their zero value.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = DefaultLoggerLevel
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = DefaultLoggerFormat
	}
	if cfg.Logger.Backend == "" {
		cfg.Logger.Backend = DefaultLoggerBackend
	}
	if cfg.ETHClient.Provider == "" {
		cfg.ETHClient.Provider = DefaultEthProvider
	}
	if cfg.ETHClient.ClientTimeoutSeconds <= 0 {
		cfg.ETHClient.ClientTimeoutSeconds = DefaultEthClientTimeoutSeconds
	}
	if cfg.Explorer.WindowSize <= 0 {
		cfg.Explorer.WindowSize = DefaultExplorerWindowSize
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}
