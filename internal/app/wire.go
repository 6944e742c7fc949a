//go:build wireinject
// +build wireinject

package app

import (
	"io"

	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-deploy/internal/adapters"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/blockchain"
	"github.com/trebuchet-org/treb-deploy/internal/config"
	"github.com/trebuchet-org/treb-deploy/internal/logging"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

var useCaseSet = wire.NewSet(
	usecase.NewDeployContract,
	usecase.NewListDeployments,
	usecase.NewListNetworks,
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, stderr io.Writer) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		useCaseSet,

		// App
		NewApp,
	)
	return nil, nil
}

// InitAppWithBackend creates an App whose chain client uses backend instead of dialing
func InitAppWithBackend(v *viper.Viper, stderr io.Writer, backend blockchain.Backend) (*App, error) {
	wire.Build(
		config.Provider,
		logging.LoggingSet,
		adapters.CoreAdapters,
		adapters.BackendBlockchainSet,
		useCaseSet,
		NewApp,
	)
	return nil, nil
}
