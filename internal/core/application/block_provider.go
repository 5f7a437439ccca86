package application

import (
	"context"
	"fmt"

	"eth_block_explorer/internal/core/domain"
	"eth_block_explorer/internal/core/domain/client"
	"eth_block_explorer/internal/core/selection"
)

// blockController is the selection controller specialised to blocks and first-transaction receipts.
type blockController = selection.Controller[domain.Block, domain.TransactionHash, domain.Receipt]

// blockViewState is the controller snapshot specialised to blocks and receipts.
type blockViewState = selection.ViewState[domain.Block, domain.Receipt]

// blockProvider adapts a client.EthereumClient to the selection provider contract.
type blockProvider struct {
	ethClient client.EthereumClient
}

// Compile-time check to ensure blockProvider implements selection.Provider
var _ selection.Provider[domain.Block, domain.TransactionHash, domain.Receipt] = (*blockProvider)(nil)

// LatestIdentifier returns the chain head as a selection identifier.
func (p *blockProvider) LatestIdentifier(ctx context.Context) (selection.Identifier, error) {
	latest, err := p.ethClient.GetLatestBlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	return selection.Identifier(latest.Value()), nil
}

// PrimaryResource fetches the block with its transactions. Negative identifiers fail without a node call.
func (p *blockProvider) PrimaryResource(ctx context.Context, id selection.Identifier) (domain.Block, error) {
	number, err := domain.NewBlockNumber(int64(id))
	if err != nil {
		return domain.Block{}, err
	}
	block, err := p.ethClient.GetBlockWithTransactions(ctx, number)
	if err != nil {
		return domain.Block{}, err
	}
	if block == nil {
		return domain.Block{}, fmt.Errorf("%w: %d", domain.ErrBlockNotFound, number.Value())
	}
	return *block, nil
}

// DependentResource fetches the receipt of the referenced transaction.
func (p *blockProvider) DependentResource(ctx context.Context, hash domain.TransactionHash) (domain.Receipt, error) {
	receipt, err := p.ethClient.GetTransactionReceipt(ctx, hash)
	if err != nil {
		return domain.Receipt{}, err
	}
	if receipt == nil {
		return domain.Receipt{}, fmt.Errorf("%w: %s", domain.ErrReceiptNotFound, hash)
	}
	return *receipt, nil
}
