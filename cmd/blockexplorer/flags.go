package main

import (
	"github.com/spf13/pflag"

	"eth_block_explorer/internal/config"
)

// Flag names overriding configuration file values.
const (
	nodeURLFlag    = "node-url"
	providerFlag   = "provider"
	logLevelFlag   = "log-level"
	windowSizeFlag = "window-size"
	portFlag       = "port"
)

// overrides holds values set on the command line.
type overrides struct {
	nodeURL    string
	provider   string
	logLevel   string
	windowSize int
	port       string
}

func registerOverrideFlags(fs *pflag.FlagSet, o *overrides) {
	fs.StringVar(&o.nodeURL, nodeURLFlag, "", "Ethereum node URL (overrides eth_client.node_url)")
	fs.StringVar(&o.provider, providerFlag, "", "Ethereum client: jsonrpc or geth (overrides eth_client.provider)")
	fs.StringVar(&o.logLevel, logLevelFlag, "", "Log level: debug, info, warn or error (overrides logger.level)")
	fs.IntVar(&o.windowSize, windowSizeFlag, 0, "Number of candidate blocks (overrides explorer.window_size)")
	fs.StringVar(&o.port, portFlag, "", "HTTP listen address, e.g. :8080 (overrides server.port)")
}

// applyOverrides copies every flag the user changed into cfg.
func applyOverrides(fs *pflag.FlagSet, o *overrides, cfg *config.Config) {
	if fs.Changed(nodeURLFlag) {
		cfg.ETHClient.NodeURL = o.nodeURL
	}
	if fs.Changed(providerFlag) {
		cfg.ETHClient.Provider = config.ProviderKind(o.provider)
	}
	if fs.Changed(logLevelFlag) {
		cfg.Logger.Level = config.LogLevel(o.logLevel)
	}
	if fs.Changed(windowSizeFlag) {
		cfg.Explorer.WindowSize = o.windowSize
	}
	if fs.Changed(portFlag) {
		cfg.Server.Port = o.port
	}
}
