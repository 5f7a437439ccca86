package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Default config values.
const (
	DefaultConfigFilePath                 = "config/config.yml"
	DefaultServerPort                     = ":8080"
	DefaultServerReadTimeoutSeconds       = 30
	DefaultServerWriteTimeoutSeconds      = 30
	DefaultServerIdleTimeoutSeconds       = 60
	DefaultServerReadHeaderTimeoutSeconds = 10
	DefaultLoggerLevel                    = LogLevelInfo
	DefaultLoggerFormat                   = LogFormatJSON
	DefaultLoggerBackend                  = LogBackendSlog
	DefaultEthNodeURL                     = "https://cloudflare-eth.com"
	DefaultEthProvider                    = ProviderJSONRPC
	DefaultEthClientTimeoutSeconds        = 20
	DefaultEthRequestsPerSecond           = 10
	DefaultEthBurst                       = 20
	DefaultExplorerWindowSize             = 10
	DefaultExplorerFetchTimeoutSeconds    = 15
	DefaultExplorerCacheSize              = 256
	DefaultMetricsPath                    = "/metrics"
)

// Environment variables that override file values.
const (
	EnvAPIKey  = "BLOCKEXPLORER_API_KEY"
	EnvNodeURL = "BLOCKEXPLORER_NODE_URL"
)

// alchemyURLTemplate builds a node URL from a network selector when no node_url is configured.
const alchemyURLTemplate = "https://eth-%s.g.alchemy.com/v2"

// LogLevel defines the type for logger levels.
type LogLevel string

// LogFormat defines the type for logger output formats.
type LogFormat string

// LogBackend selects the logging library behind logger.AppLogger.
type LogBackend string

// ProviderKind selects the Ethereum client implementation.
type ProviderKind string

// Defines the supported logger levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Defines the supported logger output formats.
const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// Defines the supported logger backends.
const (
	LogBackendSlog LogBackend = "slog"
	LogBackendZap  LogBackend = "zap"
)

// Defines the supported Ethereum client implementations.
const (
	ProviderJSONRPC ProviderKind = "jsonrpc"
	ProviderGeth    ProviderKind = "geth"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    LoggerConfig    `yaml:"logger"`
	ETHClient ETHClientConfig `yaml:"eth_client"`
	Explorer  ExplorerConfig  `yaml:"explorer"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds all configuration related to the HTTP server.
type ServerConfig struct {
	Port                     string `yaml:"port"`
	ReadTimeoutSeconds       int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds      int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds       int    `yaml:"idle_timeout_seconds"`
	ReadHeaderTimeoutSeconds int    `yaml:"read_header_timeout_seconds"`
}

// LoggerConfig holds all configuration related to logging.
type LoggerConfig struct {
	Level   LogLevel   `yaml:"level"`
	Format  LogFormat  `yaml:"format"`
	Backend LogBackend `yaml:"backend"`
}

// ETHClientConfig holds all configuration related to the Ethereum client.
type ETHClientConfig struct {
	Provider             ProviderKind `yaml:"provider"`
	NodeURL              string       `yaml:"node_url"`
	Network              string       `yaml:"network"`
	APIKey               string       `yaml:"api_key"`
	ClientTimeoutSeconds int          `yaml:"client_timeout_seconds"`
	RequestsPerSecond    float64      `yaml:"requests_per_second"`
	Burst                int          `yaml:"burst"`
}

// ExplorerConfig holds configuration for the block selection controller.
type ExplorerConfig struct {
	WindowSize          int    `yaml:"window_size"`
	FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds"`
	MinBlockNumber      *int64 `yaml:"min_block_number"`
	CacheSize           int    `yaml:"cache_size"`
}

// MetricsConfig holds configuration for the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Endpoint returns the URL handed to the Ethereum client.
// node_url wins over network; with neither set the public default node is used.
// The API key, when set, is appended as the last path segment.
func (c ETHClientConfig) Endpoint() string {
	base := c.NodeURL
	switch {
	case base != "":
	case c.Network != "":
		base = fmt.Sprintf(alchemyURLTemplate, strings.ToLower(c.Network))
	default:
		base = DefaultEthNodeURL
	}
	if c.APIKey == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + c.APIKey
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" || (strings.HasPrefix(c.Server.Port, ":") && len(c.Server.Port) == 1) {
		return errors.New("server port (config key: server.port) cannot be empty or just ':'")
	}
	if c.Server.ReadTimeoutSeconds < 0 {
		return errors.New("server read timeout seconds (config key: server.read_timeout_seconds) cannot be negative")
	}
	if c.Server.WriteTimeoutSeconds < 0 {
		return errors.New("server write timeout seconds (config key: server.write_timeout_seconds) cannot be negative")
	}
	if c.Server.IdleTimeoutSeconds < 0 {
		return errors.New("server idle timeout seconds (config key: server.idle_timeout_seconds) cannot be negative")
	}
	if c.Server.ReadHeaderTimeoutSeconds < 0 {
		return errors.New(
			"server read header timeout seconds (config key: server.read_header_timeout_seconds) cannot be negative",
		)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(string(c.Logger.Level))] {
		return fmt.Errorf(
			"invalid logger level (config key: logger.level): '%s', must be one of: debug, info, warn, error",
			c.Logger.Level,
		)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(string(c.Logger.Format))] {
		return fmt.Errorf(
			"invalid logger format (config key: logger.format): '%s', must be one of: json, text",
			c.Logger.Format,
		)
	}
	switch c.Logger.Backend {
	case LogBackendSlog, LogBackendZap:
	default:
		return fmt.Errorf("invalid logger backend (config key: logger.backend): '%s', must be one of: slog, zap", c.Logger.Backend)
	}

	switch c.ETHClient.Provider {
	case ProviderJSONRPC, ProviderGeth:
	default:
		return fmt.Errorf(
			"invalid ethereum provider (config key: eth_client.provider): '%s', must be one of: jsonrpc, geth",
			c.ETHClient.Provider,
		)
	}
	endpoint := c.ETHClient.Endpoint()
	if u, err := url.Parse(endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ethereum node URL (config key: eth_client.node_url) is not an absolute URL: '%s'", endpoint)
	}
	if c.ETHClient.ClientTimeoutSeconds <= 0 {
		return errors.New("ethereum client timeout seconds (config key: eth_client.client_timeout_seconds) must be greater than 0")
	}
	if c.ETHClient.RequestsPerSecond < 0 {
		return errors.New("requests per second (config key: eth_client.requests_per_second) cannot be negative")
	}
	if c.ETHClient.RequestsPerSecond > 0 && c.ETHClient.Burst <= 0 {
		return errors.New("burst (config key: eth_client.burst) must be greater than 0 when rate limiting is enabled")
	}

	if c.Explorer.WindowSize <= 0 {
		return errors.New("window size (config key: explorer.window_size) must be greater than 0")
	}
	if c.Explorer.FetchTimeoutSeconds < 0 {
		return errors.New("fetch timeout seconds (config key: explorer.fetch_timeout_seconds) cannot be negative")
	}
	if c.Explorer.CacheSize < 0 {
		return errors.New("cache size (config key: explorer.cache_size) cannot be negative")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path (config key: metrics.path) must start with '/': '%s'", c.Metrics.Path)
	}

	return nil
}
