// Package block provides an in-memory LRU implementation of the BlockRepository interface.
package block

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"eth_block_explorer/internal/core/domain"
	"eth_block_explorer/internal/core/domain/repository"
)

// InMemoryBlockRepo keeps the most recently used blocks keyed by block number.
type InMemoryBlockRepo struct {
	cache *lru.Cache[int64, domain.Block]
}

// Compile-time check to ensure InMemoryBlockRepo implements repository.BlockRepository
var _ repository.BlockRepository = (*InMemoryBlockRepo)(nil)

// NewInMemoryBlockRepo creates a repository holding at most size blocks.
func NewInMemoryBlockRepo(size int) (*InMemoryBlockRepo, error) {
	cache, err := lru.New[int64, domain.Block](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create block cache of size %d: %w", size, err)
	}
	return &InMemoryBlockRepo{cache: cache}, nil
}

// Store saves a block keyed by its number, evicting the least recently used entry when full.
func (r *InMemoryBlockRepo) Store(_ context.Context, block domain.Block) error {
	r.cache.Add(block.Number.Value(), copyBlock(block))
	return nil
}

// FindByNumber returns the stored block or repository.ErrNotFound.
func (r *InMemoryBlockRepo) FindByNumber(_ context.Context, number domain.BlockNumber) (domain.Block, error) {
	block, ok := r.cache.Get(number.Value())
	if !ok {
		return domain.Block{}, fmt.Errorf("%w: block %d", repository.ErrNotFound, number.Value())
	}
	return copyBlock(block), nil
}

// Len returns the number of stored blocks.
func (r *InMemoryBlockRepo) Len() int {
	return r.cache.Len()
}

func copyBlock(b domain.Block) domain.Block {
	if b.Transactions != nil {
		txs := make([]domain.Transaction, len(b.Transactions))
		copy(txs, b.Transactions)
		b.Transactions = txs
	}
	return b
}
