package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"eth_block_explorer/internal/adapters/gethclient"
	"eth_block_explorer/internal/adapters/rpc"
	"eth_block_explorer/internal/adapters/storage/memory/block"
	"eth_block_explorer/internal/adapters/storage/memory/receipt"
	"eth_block_explorer/internal/adapters/throttle"
	"eth_block_explorer/internal/config"
	"eth_block_explorer/internal/core/application"
	"eth_block_explorer/internal/core/domain/client"
	"eth_block_explorer/internal/logger"
	"eth_block_explorer/internal/metrics"
)

// runtime holds the wired application components of one command invocation.
type runtime struct {
	cfg      *config.Config
	logger   logger.AppLogger
	registry *prometheus.Registry
	recorder *metrics.Recorder
	explorer *application.ExplorerServiceImpl
	closers  []func()
}

// buildRuntime wires the Ethereum client stack and the explorer service from cfg.
// Logs are written to logOut.
func buildRuntime(ctx context.Context, cfg *config.Config, logOut io.Writer) (*runtime, error) {
	appLogger, err := logger.NewAppLogger(cfg.Logger, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: appLogger}
	if cfg.Metrics.Enabled {
		rt.registry = prometheus.NewRegistry()
		rt.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rt.recorder = metrics.NewRecorder(rt.registry)
	}

	ethClient, err := rt.buildClient(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	appCfg := application.Config{
		WindowSize:     cfg.Explorer.WindowSize,
		FetchTimeout:   time.Duration(cfg.Explorer.FetchTimeoutSeconds) * time.Second,
		MinBlockNumber: cfg.Explorer.MinBlockNumber,
	}
	if rt.recorder != nil {
		appCfg.FetchMetrics = rt.recorder
		appCfg.SubscriberMetrics = rt.recorder
	}

	explorer, err := application.NewExplorerService(ethClient, appLogger, appCfg)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create explorer service: %w", err)
	}
	rt.explorer = explorer
	rt.closers = append(rt.closers, explorer.Close)

	appLogger.Info("Explorer wired",
		"provider", cfg.ETHClient.Provider,
		"windowSize", cfg.Explorer.WindowSize,
		"cacheSize", cfg.Explorer.CacheSize,
		"requestsPerSecond", cfg.ETHClient.RequestsPerSecond,
		"metricsEnabled", cfg.Metrics.Enabled,
	)
	return rt, nil
}

// buildClient creates the node adapter and wraps it with rate limiting and caching when configured.
func (rt *runtime) buildClient(ctx context.Context) (client.EthereumClient, error) {
	ethCfg := rt.cfg.ETHClient
	timeout := time.Duration(ethCfg.ClientTimeoutSeconds) * time.Second

	var ethClient client.EthereumClient
	switch ethCfg.Provider {
	case config.ProviderGeth:
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		adapter, err := gethclient.Dial(dialCtx, ethCfg.Endpoint(), rt.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to dial ethereum node: %w", err)
		}
		rt.closers = append(rt.closers, adapter.Close)
		ethClient = adapter
	default:
		httpClient := &http.Client{Timeout: timeout}
		ethClient = rpc.NewEthereumNodeAdapter(ethCfg.Endpoint(), httpClient, rt.logger)
	}

	if ethCfg.RequestsPerSecond > 0 {
		ethClient = throttle.NewThrottledClient(ethClient, ethCfg.RequestsPerSecond, ethCfg.Burst)
	}

	if size := rt.cfg.Explorer.CacheSize; size > 0 {
		blocks, err := block.NewInMemoryBlockRepo(size)
		if err != nil {
			return nil, fmt.Errorf("failed to create block cache: %w", err)
		}
		receipts, err := receipt.NewInMemoryReceiptRepo(size)
		if err != nil {
			return nil, fmt.Errorf("failed to create receipt cache: %w", err)
		}

		var cacheMetrics application.CacheMetrics
		if rt.recorder != nil {
			cacheMetrics = rt.recorder
		}
		caching, err := application.NewCachingClient(ethClient, blocks, receipts, cacheMetrics, rt.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create caching client: %w", err)
		}
		ethClient = caching
	}

	return ethClient, nil
}

// Close releases the components in reverse creation order.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
