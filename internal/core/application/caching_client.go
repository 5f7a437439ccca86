package application

import (
	"context"
	"errors"

	"eth_block_explorer/internal/core/domain"
	"eth_block_explorer/internal/core/domain/client"
	"eth_block_explorer/internal/core/domain/repository"
	"eth_block_explorer/internal/logger"
)

// Cache names reported to CacheMetrics.
const (
	CacheBlocks   = "block"
	CacheReceipts = "receipt"
)

// CacheMetrics counts cache lookups.
type CacheMetrics interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

type noopCacheMetrics struct{}

func (noopCacheMetrics) CacheHit(string)  {}
func (noopCacheMetrics) CacheMiss(string) {}

// CachingClient serves blocks and receipts from repositories and falls back to the node.
// The latest block number is never cached.
type CachingClient struct {
	next     client.EthereumClient
	blocks   repository.BlockRepository
	receipts repository.ReceiptRepository
	metrics  CacheMetrics
	logger   logger.AppLogger
}

// Compile-time check to ensure CachingClient implements client.EthereumClient
var _ client.EthereumClient = (*CachingClient)(nil)

// NewCachingClient creates a caching decorator. A nil metrics disables cache accounting.
func NewCachingClient(
	next client.EthereumClient,
	blocks repository.BlockRepository,
	receipts repository.ReceiptRepository,
	metrics CacheMetrics,
	appLogger logger.AppLogger,
) (*CachingClient, error) {
	if appLogger == nil {
		return nil, errors.New("NewCachingClient: appLogger is nil")
	}
	if next == nil {
		appLogger.Error("NewCachingClient: next is nil")
		return nil, errors.New("NewCachingClient: next is nil")
	}
	if blocks == nil {
		appLogger.Error("NewCachingClient: blocks is nil")
		return nil, errors.New("NewCachingClient: blocks is nil")
	}
	if receipts == nil {
		appLogger.Error("NewCachingClient: receipts is nil")
		return nil, errors.New("NewCachingClient: receipts is nil")
	}
	if metrics == nil {
		metrics = noopCacheMetrics{}
	}
	return &CachingClient{
		next:     next,
		blocks:   blocks,
		receipts: receipts,
		metrics:  metrics,
		logger:   appLogger.With("component", "caching_client"),
	}, nil
}

// GetLatestBlockNumber always asks the node.
func (c *CachingClient) GetLatestBlockNumber(ctx context.Context) (domain.BlockNumber, error) {
	return c.next.GetLatestBlockNumber(ctx)
}

// GetBlockWithTransactions returns a stored block or fetches and stores it.
func (c *CachingClient) GetBlockWithTransactions(
	ctx context.Context,
	blockNumber domain.BlockNumber,
) (*domain.Block, error) {
	cached, err := c.blocks.FindByNumber(ctx, blockNumber)
	switch {
	case err == nil:
		c.metrics.CacheHit(CacheBlocks)
		return &cached, nil
	case !errors.Is(err, repository.ErrNotFound):
		c.logger.Warn("Block cache lookup failed", "blockNumber", blockNumber.Value(), "error", err)
	}
	c.metrics.CacheMiss(CacheBlocks)

	block, err := c.next.GetBlockWithTransactions(ctx, blockNumber)
	if err != nil {
		return nil, err
	}
	if block != nil {
		if errStore := c.blocks.Store(ctx, *block); errStore != nil {
			c.logger.Warn("Failed to cache block", "blockNumber", blockNumber.Value(), "error", errStore)
		}
	}
	return block, nil
}

// GetTransactionReceipt returns a stored receipt or fetches and stores it.
func (c *CachingClient) GetTransactionReceipt(
	ctx context.Context,
	hash domain.TransactionHash,
) (*domain.Receipt, error) {
	cached, err := c.receipts.FindByTransactionHash(ctx, hash)
	switch {
	case err == nil:
		c.metrics.CacheHit(CacheReceipts)
		return &cached, nil
	case !errors.Is(err, repository.ErrNotFound):
		c.logger.Warn("Receipt cache lookup failed", "txHash", hash.String(), "error", err)
	}
	c.metrics.CacheMiss(CacheReceipts)

	receipt, err := c.next.GetTransactionReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt != nil {
		if errStore := c.receipts.Store(ctx, *receipt); errStore != nil {
			c.logger.Warn("Failed to cache receipt", "txHash", hash.String(), "error", errStore)
		}
	}
	return receipt, nil
}
