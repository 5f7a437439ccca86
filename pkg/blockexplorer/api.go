// Package blockexplorer defines the public API contracts of the block explorer service.
package blockexplorer

import (
	"context"
)

// Display texts shared by presentation adapters.
const (
	NoSelectionLabel   = "Select a block"
	BlockLabelFormat   = "Block #%d"
	NoTransactionsText = "No transactions in this block"
)

// Receipt slot states of a ViewState.
const (
	// ReceiptNone means no receipt is loaded: pending, failed or nothing selected.
	ReceiptNone = "none"
	// ReceiptAbsent means the selected block has no transactions.
	ReceiptAbsent = "absent"
	// ReceiptPresent means Receipt holds the first transaction's receipt.
	ReceiptPresent = "present"
)

// Transaction represents a transaction returned by the API.
type Transaction struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to,omitempty"`
	Value       string `json:"value"`
	Nonce       uint64 `json:"nonce"`
	Gas         uint64 `json:"gas"`
	Index       uint64 `json:"transactionIndex"`
	Type        uint64 `json:"type"`
	BlockNumber int64  `json:"blockNumber"`
	Timestamp   uint64 `json:"timestamp"`
}

// Block represents a block returned by the API.
type Block struct {
	Number        int64         `json:"number"`
	Hash          string        `json:"hash"`
	ParentHash    string        `json:"parentHash,omitempty"`
	Miner         string        `json:"miner,omitempty"`
	Timestamp     uint64        `json:"timestamp"`
	GasLimit      uint64        `json:"gasLimit"`
	GasUsed       uint64        `json:"gasUsed"`
	BaseFeePerGas string        `json:"baseFeePerGas,omitempty"`
	Size          uint64        `json:"size,omitempty"`
	ExtraData     string        `json:"extraData,omitempty"`
	Transactions  []Transaction `json:"transactions"`
}

// Receipt represents a transaction receipt returned by the API.
type Receipt struct {
	TransactionHash   string `json:"transactionHash"`
	TransactionIndex  uint64 `json:"transactionIndex"`
	BlockHash         string `json:"blockHash"`
	BlockNumber       int64  `json:"blockNumber"`
	From              string `json:"from,omitempty"`
	To                string `json:"to,omitempty"`
	ContractAddress   string `json:"contractAddress,omitempty"`
	Status            uint64 `json:"status"`
	Type              uint64 `json:"type"`
	GasUsed           uint64 `json:"gasUsed"`
	CumulativeGasUsed uint64 `json:"cumulativeGasUsed"`
	EffectiveGasPrice string `json:"effectiveGasPrice,omitempty"`
	LogsCount         int    `json:"logsCount"`
}

// Error is the displayable error of a ViewState.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ViewState is a snapshot of the explorer as seen by a presentation layer.
type ViewState struct {
	Candidates    []int64  `json:"candidates"`
	SelectedBlock *int64   `json:"selectedBlock"`
	Label         string   `json:"label"`
	Block         *Block   `json:"block"`
	ReceiptStatus string   `json:"receiptStatus"`
	Receipt       *Receipt `json:"receipt"`
	Loading       bool     `json:"loading"`
	Error         *Error   `json:"error"`
	Phase         string   `json:"phase"`
	Token         uint64   `json:"token"`
}

// Explorer defines the public interface of the block explorer service.
type Explorer interface {
	// Initialize loads the latest block number and replaces the candidate list.
	Initialize(ctx context.Context) error

	// Select fetches the block and the receipt of its first transaction.
	// It does not require blockNumber to be a candidate.
	Select(ctx context.Context, blockNumber int64) error

	// State returns the current snapshot.
	State() ViewState

	// Subscribe returns a channel receiving every subsequent snapshot and a function that ends
	// the subscription. A slow subscriber only misses intermediate snapshots, never the latest one.
	Subscribe() (<-chan ViewState, func())
}
