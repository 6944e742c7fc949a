package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// ContractFactoryResolver turns a contract reference ("Vault" or "src/Vault.sol:Vault")
// into a deployable factory
type ContractFactoryResolver interface {
	GetContractFactory(ctx context.Context, contractRef string) (*models.ContractFactory, error)
}

// ContractSelector handles interactive selection of contracts
type ContractSelector interface {
	SelectContract(ctx context.Context, contracts []*models.Contract, prompt string) (*models.Contract, error)
}

// ChainClient submits and tracks deployment transactions on a network
type ChainClient interface {
	// Connect binds the client to a network and returns the node's chain ID
	Connect(ctx context.Context, network *config.Network) (uint64, error)
	// PredictDeployment estimates the deployment without broadcasting it
	PredictDeployment(ctx context.Context, factory *models.ContractFactory, args []string) (*models.PendingDeployment, error)
	// SubmitDeployment signs and broadcasts the deployment transaction
	SubmitDeployment(ctx context.Context, factory *models.ContractFactory, args []string) (*models.PendingDeployment, error)
	// WaitForDeployment blocks until the transaction is mined and code exists at the address
	WaitForDeployment(ctx context.Context, pending *models.PendingDeployment) (*models.DeploymentReceipt, error)
}

// BlockchainChecker checks on-chain state of recorded deployments
type BlockchainChecker interface {
	Connect(ctx context.Context, network *config.Network) (uint64, error)
	CheckDeploymentExists(ctx context.Context, address common.Address) (exists bool, err error)
}

// DeploymentRepository handles persistence of deployments
type DeploymentRepository interface {
	SaveDeployment(ctx context.Context, deployment *models.Deployment) error
	SaveTransaction(ctx context.Context, transaction *models.Transaction) error
	GetDeployment(ctx context.Context, id string) (*models.Deployment, error)
	ListDeployments(ctx context.Context, filter DeploymentFilter) ([]*models.Deployment, error)
}

// DeploymentFilter narrows registry queries; zero values match everything
type DeploymentFilter struct {
	Namespace    string
	ChainID      uint64
	ContractName string
	Label        string
}

// NetworkResolver handles network configuration resolution
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, networkName string) (*config.Network, error)
	ExplorerURL(networkName string, chainID uint64) string
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}
