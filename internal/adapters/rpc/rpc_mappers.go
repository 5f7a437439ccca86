package rpc

import (
	"errors"
	"fmt"

	"eth_block_explorer/internal/core/domain"
	"eth_block_explorer/internal/utils"
)

// errMissingStatus is returned for pre-Byzantium receipts, which carry a state root instead of a status.
var errMissingStatus = errors.New("receipt has no status field")

// mapRPCBlockToDomain converts the RPC DTO for a block to the domain model.
// A transaction that cannot be mapped fails the whole block so the transaction order stays intact.
func mapRPCBlockToDomain(rpcBlock *Block) (*domain.Block, error) {
	num, err := utils.HexToInt64(rpcBlock.Number)
	if err != nil {
		return nil, fmt.Errorf("invalid block number hex '%s': %w", rpcBlock.Number, err)
	}
	domainBlockNum, err := domain.NewBlockNumber(num)
	if err != nil {
		return nil, fmt.Errorf("failed creating domain block number: %w", err)
	}

	domainBlockHash, err := domain.NewBlockHash(rpcBlock.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed creating domain block hash: %w", err)
	}

	timestamp, err := utils.HexToUint64(rpcBlock.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid block timestamp hex '%s': %w", rpcBlock.Timestamp, err)
	}

	domainTxs := make([]domain.Transaction, 0, len(rpcBlock.Transactions))
	for i := range rpcBlock.Transactions {
		rpcTx := &rpcBlock.Transactions[i]
		domainTx, err := mapRPCTransactionToDomain(rpcTx, domainBlockNum, timestamp)
		if err != nil {
			return nil, fmt.Errorf("transaction index %d (hash: %s) in block %d: %w", i, rpcTx.Hash, num, err)
		}
		domainTxs = append(domainTxs, *domainTx)
	}

	domainBlock := domain.NewBlock(domainBlockNum, domainBlockHash, timestamp, domainTxs)

	if rpcBlock.ParentHash != "" {
		if domainBlock.ParentHash, err = domain.NewBlockHash(rpcBlock.ParentHash); err != nil {
			return nil, fmt.Errorf("invalid parent hash: %w", err)
		}
	}
	if rpcBlock.Miner != "" {
		if domainBlock.Miner, err = domain.NewAddress(rpcBlock.Miner); err != nil {
			return nil, fmt.Errorf("invalid miner address: %w", err)
		}
	}
	if domainBlock.GasLimit, err = utils.HexToUint64OrZero(rpcBlock.GasLimit); err != nil {
		return nil, fmt.Errorf("invalid gas limit hex '%s': %w", rpcBlock.GasLimit, err)
	}
	if domainBlock.GasUsed, err = utils.HexToUint64OrZero(rpcBlock.GasUsed); err != nil {
		return nil, fmt.Errorf("invalid gas used hex '%s': %w", rpcBlock.GasUsed, err)
	}
	if domainBlock.Size, err = utils.HexToUint64OrZero(rpcBlock.Size); err != nil {
		return nil, fmt.Errorf("invalid size hex '%s': %w", rpcBlock.Size, err)
	}
	if rpcBlock.BaseFeePerGas != nil {
		baseFee, err := domain.NewWeiValue(*rpcBlock.BaseFeePerGas)
		if err != nil {
			return nil, fmt.Errorf("invalid base fee '%s': %w", *rpcBlock.BaseFeePerGas, err)
		}
		domainBlock.BaseFeePerGas = &baseFee
	}
	domainBlock.ExtraData = rpcBlock.ExtraData

	return &domainBlock, nil
}

// mapRPCTransactionToDomain converts the RPC DTO for a transaction to the domain model.
func mapRPCTransactionToDomain(
	rpcTx *Transaction,
	blockNum domain.BlockNumber,
	blockTimestamp uint64,
) (*domain.Transaction, error) {
	hash, err := domain.NewTransactionHash(rpcTx.Hash)
	if err != nil {
		return nil, fmt.Errorf("invalid tx hash '%s': %w", rpcTx.Hash, err)
	}

	from, err := domain.NewAddress(rpcTx.From)
	if err != nil {
		return nil, fmt.Errorf("invalid tx from address '%s': %w", rpcTx.From, err)
	}

	to, err := domain.NewOptionalAddress(rpcTx.To)
	if err != nil {
		return nil, fmt.Errorf("invalid tx to address: %w", err)
	}

	value, err := domain.NewWeiValue(rpcTx.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid tx value '%s': %w", rpcTx.Value, err)
	}

	domainTx := domain.NewTransaction(hash, from, to, value, blockNum, blockTimestamp)

	if domainTx.Nonce, err = utils.HexToUint64OrZero(rpcTx.Nonce); err != nil {
		return nil, fmt.Errorf("invalid tx nonce '%s': %w", rpcTx.Nonce, err)
	}
	if domainTx.Gas, err = utils.HexToUint64OrZero(rpcTx.Gas); err != nil {
		return nil, fmt.Errorf("invalid tx gas '%s': %w", rpcTx.Gas, err)
	}
	if domainTx.Type, err = utils.HexToUint64OrZero(rpcTx.Type); err != nil {
		return nil, fmt.Errorf("invalid tx type '%s': %w", rpcTx.Type, err)
	}
	if rpcTx.TransactionIndex != nil {
		if domainTx.Index, err = utils.HexToUint64(*rpcTx.TransactionIndex); err != nil {
			return nil, fmt.Errorf("invalid tx index '%s': %w", *rpcTx.TransactionIndex, err)
		}
	}

	return &domainTx, nil
}

// mapRPCReceiptToDomain converts the RPC DTO for a receipt to the domain model.
func mapRPCReceiptToDomain(rpcReceipt *Receipt) (*domain.Receipt, error) {
	hash, err := domain.NewTransactionHash(rpcReceipt.TransactionHash)
	if err != nil {
		return nil, fmt.Errorf("invalid receipt tx hash '%s': %w", rpcReceipt.TransactionHash, err)
	}
	if rpcReceipt.Status == nil {
		return nil, fmt.Errorf("receipt %s: %w", hash, errMissingStatus)
	}
	status, err := utils.HexToUint64(*rpcReceipt.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid receipt status '%s': %w", *rpcReceipt.Status, err)
	}

	blockNum, err := utils.HexToInt64(rpcReceipt.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("invalid receipt block number hex '%s': %w", rpcReceipt.BlockNumber, err)
	}
	domainBlockNum, err := domain.NewBlockNumber(blockNum)
	if err != nil {
		return nil, fmt.Errorf("failed creating domain block number: %w", err)
	}
	blockHash, err := domain.NewBlockHash(rpcReceipt.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("failed creating domain block hash: %w", err)
	}

	from, err := domain.NewAddress(rpcReceipt.From)
	if err != nil {
		return nil, fmt.Errorf("invalid receipt from address '%s': %w", rpcReceipt.From, err)
	}
	to, err := domain.NewOptionalAddress(rpcReceipt.To)
	if err != nil {
		return nil, fmt.Errorf("invalid receipt to address: %w", err)
	}
	contract, err := domain.NewOptionalAddress(rpcReceipt.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid receipt contract address: %w", err)
	}

	receipt := domain.Receipt{
		TransactionHash: hash,
		BlockHash:       blockHash,
		BlockNumber:     domainBlockNum,
		From:            from,
		To:              to,
		ContractAddress: contract,
		Status:          status,
		LogsCount:       len(rpcReceipt.Logs),
	}
	if receipt.TransactionIndex, err = utils.HexToUint64(rpcReceipt.TransactionIndex); err != nil {
		return nil, fmt.Errorf("invalid receipt tx index '%s': %w", rpcReceipt.TransactionIndex, err)
	}
	if receipt.GasUsed, err = utils.HexToUint64(rpcReceipt.GasUsed); err != nil {
		return nil, fmt.Errorf("invalid receipt gas used '%s': %w", rpcReceipt.GasUsed, err)
	}
	if receipt.CumulativeGasUsed, err = utils.HexToUint64(rpcReceipt.CumulativeGasUsed); err != nil {
		return nil, fmt.Errorf("invalid receipt cumulative gas used '%s': %w", rpcReceipt.CumulativeGasUsed, err)
	}
	if receipt.Type, err = utils.HexToUint64OrZero(rpcReceipt.Type); err != nil {
		return nil, fmt.Errorf("invalid receipt type '%s': %w", rpcReceipt.Type, err)
	}
	if rpcReceipt.EffectiveGasPrice != nil {
		price, err := domain.NewWeiValue(*rpcReceipt.EffectiveGasPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid effective gas price '%s': %w", *rpcReceipt.EffectiveGasPrice, err)
		}
		receipt.EffectiveGasPrice = &price
	}

	return &receipt, nil
}
