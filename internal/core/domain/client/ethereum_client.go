// Package client defines interfaces for external service clients, such as an Ethereum node client.
//
//go:generate mockery --name=EthereumClient --output=../../application/mocks/mock_client --outpkg=mock_client --with-expecter=false
package client

import (
	"context"

	"eth_block_explorer/internal/core/domain"
)

// EthereumClient defines the interface for reading chain data from an Ethereum node.
type EthereumClient interface {
	// GetLatestBlockNumber fetches the number of the most recent block in the blockchain.
	GetLatestBlockNumber(ctx context.Context) (domain.BlockNumber, error)

	// GetBlockWithTransactions fetches a block by its number, including all transaction details
	// in block order. It returns domain.ErrBlockNotFound when the node has no such block.
	GetBlockWithTransactions(ctx context.Context, blockNumber domain.BlockNumber) (*domain.Block, error)

	// GetTransactionReceipt fetches the receipt of a mined transaction.
	// It returns domain.ErrReceiptNotFound when the node has no receipt for hash.
	GetTransactionReceipt(ctx context.Context, hash domain.TransactionHash) (*domain.Receipt, error)
}
