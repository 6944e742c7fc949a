package app

import (
	"github.com/trebuchet-org/treb-deploy/internal/adapters/blockchain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Use cases
	DeployContract  *usecase.DeployContract
	ListDeployments *usecase.ListDeployments
	ListNetworks    *usecase.ListNetworks

	chain *blockchain.ClientAdapter
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	deployContract *usecase.DeployContract,
	listDeployments *usecase.ListDeployments,
	listNetworks *usecase.ListNetworks,
	chain *blockchain.ClientAdapter,
) (*App, error) {
	return &App{
		Config:          cfg,
		DeployContract:  deployContract,
		ListDeployments: listDeployments,
		ListNetworks:    listNetworks,
		chain:           chain,
	}, nil
}

// Close releases the RPC connection, if one was opened
func (a *App) Close() {
	if a.chain != nil {
		a.chain.Close()
	}
}
