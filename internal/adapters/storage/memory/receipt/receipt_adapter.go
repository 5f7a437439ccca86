// Package receipt provides an in-memory LRU implementation of the ReceiptRepository interface.
package receipt

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"eth_block_explorer/internal/core/domain"
	"eth_block_explorer/internal/core/domain/repository"
)

// InMemoryReceiptRepo keeps the most recently used receipts keyed by transaction hash.
type InMemoryReceiptRepo struct {
	cache *lru.Cache[domain.TransactionHash, domain.Receipt]
}

// Compile-time check to ensure InMemoryReceiptRepo implements repository.ReceiptRepository
var _ repository.ReceiptRepository = (*InMemoryReceiptRepo)(nil)

// NewInMemoryReceiptRepo creates a repository holding at most size receipts.
func NewInMemoryReceiptRepo(size int) (*InMemoryReceiptRepo, error) {
	cache, err := lru.New[domain.TransactionHash, domain.Receipt](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt cache of size %d: %w", size, err)
	}
	return &InMemoryReceiptRepo{cache: cache}, nil
}

// Store saves a receipt keyed by its transaction hash.
func (r *InMemoryReceiptRepo) Store(_ context.Context, receipt domain.Receipt) error {
	if receipt.TransactionHash.IsZero() {
		return fmt.Errorf("cannot store receipt without transaction hash")
	}
	r.cache.Add(receipt.TransactionHash, receipt)
	return nil
}

// FindByTransactionHash returns the stored receipt or repository.ErrNotFound.
func (r *InMemoryReceiptRepo) FindByTransactionHash(
	_ context.Context,
	hash domain.TransactionHash,
) (domain.Receipt, error) {
	receipt, ok := r.cache.Get(hash)
	if !ok {
		return domain.Receipt{}, fmt.Errorf("%w: receipt %s", repository.ErrNotFound, hash)
	}
	return receipt, nil
}
