// Package throttle rate-limits calls to an Ethereum node.
package throttle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"eth_block_explorer/internal/core/domain"
	"eth_block_explorer/internal/core/domain/client"
)

// ThrottledClient decorates a client.EthereumClient with a token bucket shared by all methods.
// Calls wait for a token; a canceled or expired context ends the wait with an error.
type ThrottledClient struct {
	next    client.EthereumClient
	limiter *rate.Limiter
}

// Compile-time check to ensure ThrottledClient implements client.EthereumClient
var _ client.EthereumClient = (*ThrottledClient)(nil)

// NewThrottledClient allows requestsPerSecond calls on average with bursts of up to burst calls.
func NewThrottledClient(next client.EthereumClient, requestsPerSecond float64, burst int) *ThrottledClient {
	return &ThrottledClient{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// GetLatestBlockNumber waits for a token and delegates.
func (c *ThrottledClient) GetLatestBlockNumber(ctx context.Context) (domain.BlockNumber, error) {
	if err := c.wait(ctx); err != nil {
		return domain.BlockNumber{}, err
	}
	return c.next.GetLatestBlockNumber(ctx)
}

// GetBlockWithTransactions waits for a token and delegates.
func (c *ThrottledClient) GetBlockWithTransactions(
	ctx context.Context,
	blockNumber domain.BlockNumber,
) (*domain.Block, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.next.GetBlockWithTransactions(ctx, blockNumber)
}

// GetTransactionReceipt waits for a token and delegates.
func (c *ThrottledClient) GetTransactionReceipt(
	ctx context.Context,
	hash domain.TransactionHash,
) (*domain.Receipt, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.next.GetTransactionReceipt(ctx, hash)
}

func (c *ThrottledClient) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}
