package application

import (
	"fmt"

	"eth_block_explorer/internal/core/domain"
	"eth_block_explorer/internal/core/selection"
	"eth_block_explorer/pkg/blockexplorer"
)

// mapDomainToAPITransaction converts an internal domain Transaction to the public API Transaction DTO.
func mapDomainToAPITransaction(domainTx domain.Transaction) blockexplorer.Transaction {
	return blockexplorer.Transaction{
		Hash:        domainTx.Hash.String(),
		From:        domainTx.From.String(),
		To:          domainTx.To.String(),
		Value:       domainTx.Value.Decimal(),
		Nonce:       domainTx.Nonce,
		Gas:         domainTx.Gas,
		Index:       domainTx.Index,
		Type:        domainTx.Type,
		BlockNumber: domainTx.BlockNumber.Value(),
		Timestamp:   domainTx.Timestamp,
	}
}

// mapDomainToAPIBlock converts a domain Block to the public API Block DTO.
func mapDomainToAPIBlock(b domain.Block) blockexplorer.Block {
	txs := make([]blockexplorer.Transaction, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		txs = append(txs, mapDomainToAPITransaction(tx))
	}

	out := blockexplorer.Block{
		Number:       b.Number.Value(),
		Hash:         b.Hash.String(),
		ParentHash:   b.ParentHash.String(),
		Miner:        b.Miner.String(),
		Timestamp:    b.Timestamp,
		GasLimit:     b.GasLimit,
		GasUsed:      b.GasUsed,
		Size:         b.Size,
		ExtraData:    b.ExtraData,
		Transactions: txs,
	}
	if b.BaseFeePerGas != nil {
		out.BaseFeePerGas = b.BaseFeePerGas.Decimal()
	}
	return out
}

// mapDomainToAPIReceipt converts a domain Receipt to the public API Receipt DTO.
func mapDomainToAPIReceipt(r domain.Receipt) blockexplorer.Receipt {
	out := blockexplorer.Receipt{
		TransactionHash:   r.TransactionHash.String(),
		TransactionIndex:  r.TransactionIndex,
		BlockHash:         r.BlockHash.String(),
		BlockNumber:       r.BlockNumber.Value(),
		From:              r.From.String(),
		To:                r.To.String(),
		ContractAddress:   r.ContractAddress.String(),
		Status:            r.Status,
		Type:              r.Type,
		GasUsed:           r.GasUsed,
		CumulativeGasUsed: r.CumulativeGasUsed,
		LogsCount:         r.LogsCount,
	}
	if r.EffectiveGasPrice != nil {
		out.EffectiveGasPrice = r.EffectiveGasPrice.Decimal()
	}
	return out
}

// mapViewState converts a controller snapshot to the public API ViewState DTO.
func mapViewState(s blockViewState) blockexplorer.ViewState {
	out := blockexplorer.ViewState{
		Candidates:    make([]int64, 0, len(s.Candidates)),
		Label:         blockexplorer.NoSelectionLabel,
		ReceiptStatus: blockexplorer.ReceiptNone,
		Loading:       s.Loading,
		Phase:         s.Phase.String(),
		Token:         s.Token,
	}
	for _, id := range s.Candidates {
		out.Candidates = append(out.Candidates, int64(id))
	}
	if s.SelectedID != nil {
		selected := int64(*s.SelectedID)
		out.SelectedBlock = &selected
		out.Label = fmt.Sprintf(blockexplorer.BlockLabelFormat, selected)
	}
	if s.Primary != nil {
		block := mapDomainToAPIBlock(*s.Primary)
		out.Block = &block
	}
	switch s.Dependent.Status {
	case selection.DependentAbsent:
		out.ReceiptStatus = blockexplorer.ReceiptAbsent
	case selection.DependentPresent:
		receipt := mapDomainToAPIReceipt(s.Dependent.Value)
		out.Receipt = &receipt
		out.ReceiptStatus = blockexplorer.ReceiptPresent
	}
	if s.Error != nil {
		out.Error = &blockexplorer.Error{Kind: string(s.Error.Kind), Message: s.Error.Message}
	}
	return out
}
