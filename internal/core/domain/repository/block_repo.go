// Package repository defines interfaces for data storage and retrieval operations.
//
//go:generate mockery --name=BlockRepository --output=../../application/mocks/mock_repository --outpkg=mock_repository --with-expecter=false
package repository

import (
	"context"
	"errors"

	"eth_block_explorer/internal/core/domain"
)

// ErrNotFound indicates that the repository holds no entry for the requested key.
var ErrNotFound = errors.New("entry not found in repository")

// BlockRepository stores blocks that were already fetched from the node.
// Mined blocks below the chain head are immutable, so entries never need invalidation.
type BlockRepository interface {
	// Store saves a block keyed by its number.
	Store(ctx context.Context, block domain.Block) error

	// FindByNumber returns the stored block or ErrNotFound.
	FindByNumber(ctx context.Context, number domain.BlockNumber) (domain.Block, error)
}
