package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/blockchain"
	internalconfig "github.com/trebuchet-org/treb-deploy/internal/adapters/config"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/contracts"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/progress"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/repository/deployments"
	"github.com/trebuchet-org/treb-deploy/internal/config"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	deployments.NewFileRepositoryFromConfig,
	wire.Bind(new(usecase.DeploymentRepository), new(*deployments.FileRepository)),
)

// ContractsSet provides artifact-backed contract resolution
var ContractsSet = wire.NewSet(
	contracts.NewFactoryResolver,
	wire.Bind(new(usecase.ContractFactoryResolver), new(*contracts.FactoryResolver)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ContractSelector), new(*interactive.SelectorAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	config.ProvideNetworkResolver,
	internalconfig.NewNetworkResolverAdapter,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolverAdapter)),
)

// ProgressSet provides the progress sink for the current terminal
var ProgressSet = wire.NewSet(
	progress.NewProgressSink,
)

// chainBindings exposes the client adapter through both chain ports
var chainBindings = wire.NewSet(
	blockchain.NewKeySigner,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.ClientAdapter)),
	wire.Bind(new(usecase.BlockchainChecker), new(*blockchain.ClientAdapter)),
)

// BlockchainSet provides a chain client that dials the configured RPC endpoint
var BlockchainSet = wire.NewSet(
	chainBindings,
	blockchain.NewClientAdapter,
)

// BackendBlockchainSet provides a chain client bound to an existing backend
var BackendBlockchainSet = wire.NewSet(
	chainBindings,
	blockchain.NewClientAdapterWithBackend,
)

// CoreAdapters includes every adapter set except the chain client
var CoreAdapters = wire.NewSet(
	FSSet,
	ContractsSet,
	InteractiveSet,
	ConfigSet,
	ProgressSet,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	CoreAdapters,
	BlockchainSet,
)
