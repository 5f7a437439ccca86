//go:generate mockery --name=ReceiptRepository --output=../../application/mocks/mock_repository --outpkg=mock_repository --with-expecter=false
package repository

import (
	"context"

	"eth_block_explorer/internal/core/domain"
)

// ReceiptRepository stores transaction receipts that were already fetched from the node.
type ReceiptRepository interface {
	// Store saves a receipt keyed by its transaction hash.
	Store(ctx context.Context, receipt domain.Receipt) error

	// FindByTransactionHash returns the stored receipt or ErrNotFound.
	FindByTransactionHash(ctx context.Context, hash domain.TransactionHash) (domain.Receipt, error)
}
