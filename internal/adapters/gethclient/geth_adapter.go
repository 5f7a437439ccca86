// Package gethclient implements client.EthereumClient on top of go-ethereum's ethclient.
package gethclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"eth_block_explorer/internal/core/domain"
	"eth_block_explorer/internal/core/domain/client"
	"eth_block_explorer/internal/logger"
)

var errMissingStatus = errors.New("receipt has no status field")

// NodeClient is the subset of *ethclient.Client the adapter calls.
type NodeClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// GethAdapter maps go-ethereum types to the domain model.
type GethAdapter struct {
	node   NodeClient
	logger logger.AppLogger

	mu     sync.Mutex
	signer types.Signer
}

// Compile-time check to ensure GethAdapter implements client.EthereumClient
var _ client.EthereumClient = (*GethAdapter)(nil)

// Dial connects to the node at rawURL.
func Dial(ctx context.Context, rawURL string, appLogger logger.AppLogger) (*GethAdapter, error) {
	node, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum node: %w", err)
	}
	return New(node, appLogger), nil
}

// New wraps an already connected node client.
func New(node NodeClient, appLogger logger.AppLogger) *GethAdapter {
	if appLogger == nil {
		appLogger = logger.Nop()
	}
	return &GethAdapter{
		node:   node,
		logger: appLogger.With("component", "geth_adapter"),
	}
}

// Close releases the underlying connection.
func (a *GethAdapter) Close() {
	a.node.Close()
}

// GetLatestBlockNumber fetches the number of the most recent block.
func (a *GethAdapter) GetLatestBlockNumber(ctx context.Context) (domain.BlockNumber, error) {
	latest, err := a.node.BlockNumber(ctx)
	if err != nil {
		return domain.BlockNumber{}, fmt.Errorf("eth_blockNumber failed: %w", err)
	}
	if latest > uint64(1<<63-1) {
		return domain.BlockNumber{}, fmt.Errorf("block number %d overflows int64", latest)
	}
	return domain.NewBlockNumber(int64(latest))
}

// GetBlockWithTransactions fetches a block by its number and includes its transactions.
func (a *GethAdapter) GetBlockWithTransactions(
	ctx context.Context,
	blockNumber domain.BlockNumber,
) (*domain.Block, error) {
	signer, err := a.chainSigner(ctx)
	if err != nil {
		return nil, err
	}

	block, err := a.node.BlockByNumber(ctx, big.NewInt(blockNumber.Value()))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: %d", domain.ErrBlockNotFound, blockNumber.Value())
		}
		return nil, fmt.Errorf("eth_getBlockByNumber failed: %w", err)
	}

	mapped, err := mapGethBlock(block.Header(), block.Hash(), block.Size(), block.Transactions(), signer)
	if err != nil {
		return nil, fmt.Errorf("failed to map block %s: %w", blockNumber.Hex(), err)
	}
	return mapped, nil
}

// GetTransactionReceipt fetches the receipt of a mined transaction.
func (a *GethAdapter) GetTransactionReceipt(
	ctx context.Context,
	hash domain.TransactionHash,
) (*domain.Receipt, error) {
	receipt, err := a.node.TransactionReceipt(ctx, common.HexToHash(hash.String()))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrReceiptNotFound, hash)
		}
		return nil, fmt.Errorf("eth_getTransactionReceipt failed: %w", err)
	}

	mapped, err := mapGethReceipt(receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to map receipt %s: %w", hash, err)
	}
	return mapped, nil
}

// chainSigner resolves the signer for the node's chain once.
func (a *GethAdapter) chainSigner(ctx context.Context) (types.Signer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.signer != nil {
		return a.signer, nil
	}
	chainID, err := a.node.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("eth_chainId failed: %w", err)
	}
	a.signer = types.LatestSignerForChainID(chainID)
	a.logger.Info("Resolved chain signer", "chainId", chainID.String())
	return a.signer, nil
}

func mapGethBlock(
	header *types.Header,
	hash common.Hash,
	size uint64,
	txs types.Transactions,
	signer types.Signer,
) (*domain.Block, error) {
	if header.Number == nil || !header.Number.IsInt64() {
		return nil, fmt.Errorf("block header has no valid number")
	}
	number, err := domain.NewBlockNumber(header.Number.Int64())
	if err != nil {
		return nil, err
	}
	blockHash, err := domain.NewBlockHash(hash.Hex())
	if err != nil {
		return nil, err
	}
	parentHash, err := domain.NewBlockHash(header.ParentHash.Hex())
	if err != nil {
		return nil, err
	}
	miner, err := domain.NewAddress(header.Coinbase.Hex())
	if err != nil {
		return nil, err
	}

	domainTxs := make([]domain.Transaction, 0, len(txs))
	for i, tx := range txs {
		domainTx, err := mapGethTransaction(tx, uint64(i), number, header.Time, signer)
		if err != nil {
			return nil, fmt.Errorf("transaction index %d (hash: %s): %w", i, tx.Hash().Hex(), err)
		}
		domainTxs = append(domainTxs, domainTx)
	}

	block := domain.NewBlock(number, blockHash, header.Time, domainTxs)
	block.ParentHash = parentHash
	block.Miner = miner
	block.GasLimit = header.GasLimit
	block.GasUsed = header.GasUsed
	block.Size = size
	block.ExtraData = hexutil.Encode(header.Extra)
	if header.BaseFee != nil {
		baseFee := domain.NewWeiValueFromBig(header.BaseFee)
		block.BaseFeePerGas = &baseFee
	}
	return &block, nil
}

func mapGethTransaction(
	tx *types.Transaction,
	index uint64,
	blockNum domain.BlockNumber,
	blockTimestamp uint64,
	signer types.Signer,
) (domain.Transaction, error) {
	hash, err := domain.NewTransactionHash(tx.Hash().Hex())
	if err != nil {
		return domain.Transaction{}, err
	}

	sender, err := types.Sender(signer, tx)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to recover sender: %w", err)
	}
	from, err := domain.NewAddress(sender.Hex())
	if err != nil {
		return domain.Transaction{}, err
	}

	var to domain.Address
	if tx.To() != nil {
		if to, err = domain.NewAddress(tx.To().Hex()); err != nil {
			return domain.Transaction{}, err
		}
	}

	domainTx := domain.NewTransaction(hash, from, to, domain.NewWeiValueFromBig(tx.Value()), blockNum, blockTimestamp)
	domainTx.Nonce = tx.Nonce()
	domainTx.Gas = tx.Gas()
	domainTx.Type = uint64(tx.Type())
	domainTx.Index = index
	return domainTx, nil
}

func mapGethReceipt(r *types.Receipt) (*domain.Receipt, error) {
	if len(r.PostState) > 0 {
		return nil, errMissingStatus
	}
	hash, err := domain.NewTransactionHash(r.TxHash.Hex())
	if err != nil {
		return nil, err
	}
	blockHash, err := domain.NewBlockHash(r.BlockHash.Hex())
	if err != nil {
		return nil, err
	}
	if r.BlockNumber == nil || !r.BlockNumber.IsInt64() {
		return nil, fmt.Errorf("receipt has no valid block number")
	}
	blockNum, err := domain.NewBlockNumber(r.BlockNumber.Int64())
	if err != nil {
		return nil, err
	}

	var contract domain.Address
	if r.ContractAddress != (common.Address{}) {
		if contract, err = domain.NewAddress(r.ContractAddress.Hex()); err != nil {
			return nil, err
		}
	}

	receipt := &domain.Receipt{
		TransactionHash:   hash,
		TransactionIndex:  uint64(r.TransactionIndex),
		BlockHash:         blockHash,
		BlockNumber:       blockNum,
		ContractAddress:   contract,
		Status:            r.Status,
		Type:              uint64(r.Type),
		GasUsed:           r.GasUsed,
		CumulativeGasUsed: r.CumulativeGasUsed,
		LogsCount:         len(r.Logs),
	}
	if r.EffectiveGasPrice != nil {
		price := domain.NewWeiValueFromBig(r.EffectiveGasPrice)
		receipt.EffectiveGasPrice = &price
	}
	return receipt, nil
}
