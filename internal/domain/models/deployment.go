package models

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DeploymentState is the lifecycle of a single deployment run
type DeploymentState string

const (
	DeploymentStatePending   DeploymentState = "PENDING"
	DeploymentStateConfirmed DeploymentState = "CONFIRMED"
	DeploymentStateFailed    DeploymentState = "FAILED"
)

// DeploymentMethod represents how the contract was deployed
type DeploymentMethod string

const (
	DeploymentMethodCreate DeploymentMethod = "CREATE"
)

// Deployment represents a contract deployment record
type Deployment struct {
	// Core identification
	ID            string           `json:"id"` // e.g., "default/1/Vault@0xAbC..."
	Namespace     string           `json:"namespace"`
	ChainID       uint64           `json:"chainId"`
	Network       string           `json:"network,omitempty"`
	ContractName  string           `json:"contractName"`
	Label         string           `json:"label,omitempty"`
	Address       string           `json:"address"`
	Method        DeploymentMethod `json:"method"`
	TransactionID string           `json:"transactionId"`

	// Contract artifact information
	Artifact ArtifactInfo `json:"artifact"`

	ConstructorArgs []string `json:"constructorArgs,omitempty"`

	CreatedAt time.Time `json:"createdAt"`

	// Runtime fields (not persisted)
	Transaction *Transaction `json:"-"`
}

// ArtifactInfo contains contract artifact information
type ArtifactInfo struct {
	Path            string `json:"path"` // e.g., "src/Vault.sol:Vault"
	CompilerVersion string `json:"compilerVersion,omitempty"`
	BytecodeHash    string `json:"bytecodeHash,omitempty"`
}

// DeploymentID builds the registry identifier. The address is part of the key
// because every run creates a new instance.
func DeploymentID(namespace string, chainID uint64, contractName string, address common.Address) string {
	return fmt.Sprintf("%s/%d/%s@%s", namespace, chainID, contractName, address.Hex())
}

// GetDisplayName returns a human-friendly name for the deployment
func (d *Deployment) GetDisplayName() string {
	if d.Label != "" {
		return fmt.Sprintf("%s:%s", d.ContractName, d.Label)
	}
	return d.ContractName
}

// PendingDeployment is a submitted, not yet confirmed, deployment transaction
type PendingDeployment struct {
	Factory *ContractFactory
	Address common.Address // predicted CREATE address
	Sender  common.Address
	Nonce   uint64
	ChainID uint64
	Gas     uint64
	Args    []string

	// Tx is nil for dry runs
	Tx *types.Transaction
}

// TxHash returns the transaction hash, or the zero hash for dry runs
func (p *PendingDeployment) TxHash() common.Hash {
	if p.Tx == nil {
		return common.Hash{}
	}
	return p.Tx.Hash()
}

// DeploymentReceipt is the confirmed outcome of a deployment transaction
type DeploymentReceipt struct {
	Address     common.Address
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
}
