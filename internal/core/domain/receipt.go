package domain

import "errors"

// ErrReceiptNotFound indicates that the node returned no receipt for a transaction hash.
var ErrReceiptNotFound = errors.New("transaction receipt not found")

// Receipt status values as defined by EIP-658.
const (
	ReceiptStatusFailed     uint64 = 0
	ReceiptStatusSuccessful uint64 = 1
)

// Receipt represents the execution result of a mined transaction.
type Receipt struct {
	TransactionHash   TransactionHash
	TransactionIndex  uint64
	BlockHash         BlockHash
	BlockNumber       BlockNumber
	From              Address
	To                Address
	ContractAddress   Address
	Status            uint64
	Type              uint64
	GasUsed           uint64
	CumulativeGasUsed uint64
	EffectiveGasPrice *WeiValue
	LogsCount         int
}

// Succeeded reports whether the transaction executed without reverting.
func (r Receipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccessful
}
