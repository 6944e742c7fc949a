package models

import "time"

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusExecuted TransactionStatus = "EXECUTED"
	TransactionStatusFailed   TransactionStatus = "FAILED"
)

// Transaction represents a blockchain transaction record
type Transaction struct {
	ID      string `json:"id"` // e.g., "tx-0x1234abcd..."
	ChainID uint64 `json:"chainId"`
	Hash    string `json:"hash"`

	Status      TransactionStatus `json:"status"`
	BlockNumber uint64            `json:"blockNumber,omitempty"`
	GasUsed     uint64            `json:"gasUsed,omitempty"`
	Sender      string            `json:"sender"`
	Nonce       uint64            `json:"nonce"`

	// Deployment IDs created in this tx
	Deployments []string `json:"deployments"`

	Environment string    `json:"environment"` // namespace
	CreatedAt   time.Time `json:"createdAt"`
}

// TransactionID builds the registry identifier for a transaction hash
func TransactionID(hash string) string {
	return "tx-" + hash
}
