package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// DeployContractParams contains parameters for a deploy run
type DeployContractParams struct {
	// ContractRef is a contract name or "path:Name"; empty means the configured default
	ContractRef string
	Label       string
	Args        []string
}

// DeployContractResult contains the outcome of a deploy run
type DeployContractResult struct {
	State       models.DeploymentState
	DryRun      bool
	Network     *config.Network
	ChainID     uint64
	ExplorerURL string

	Pending     *models.PendingDeployment
	Receipt     *models.DeploymentReceipt // nil for dry runs
	Deployment  *models.Deployment        // nil for dry runs
	Transaction *models.Transaction       // nil for dry runs
}

// ContractName returns the name of the deployed contract
func (r *DeployContractResult) ContractName() string {
	return r.Pending.Factory.Name()
}

// DeployContract resolves a contract factory, deploys one instance and waits for
// it to be confirmed. Every call creates a new contract instance.
type DeployContract struct {
	config    *config.RuntimeConfig
	contracts ContractFactoryResolver
	chain     ChainClient
	repo      DeploymentRepository
	networks  NetworkResolver
	sink      ProgressSink
	log       *slog.Logger
}

// NewDeployContract creates a new DeployContract use case
func NewDeployContract(
	cfg *config.RuntimeConfig,
	contracts ContractFactoryResolver,
	chain ChainClient,
	repo DeploymentRepository,
	networks NetworkResolver,
	sink ProgressSink,
	log *slog.Logger,
) *DeployContract {
	return &DeployContract{
		config:    cfg,
		contracts: contracts,
		chain:     chain,
		repo:      repo,
		networks:  networks,
		sink:      sink,
		log:       log,
	}
}

// Run executes the deploy. Any failure is returned as a *domain.DeploymentError
// together with a result in the failed state carrying whatever was learned.
func (uc *DeployContract) Run(ctx context.Context, params DeployContractParams) (*DeployContractResult, error) {
	ref := params.ContractRef
	if ref == "" {
		ref = uc.config.DefaultContract
	}

	result := &DeployContractResult{State: models.DeploymentStatePending}
	fail := func(stage domain.DeploymentStage, err error) (*DeployContractResult, error) {
		result.State = models.DeploymentStateFailed
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: "failed", Message: string(stage)})
		return result, &domain.DeploymentError{Contract: ref, Stage: stage, Err: err}
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "resolving",
		Message: fmt.Sprintf("Resolving %s", ref),
		Spinner: true,
	})

	factory, err := uc.contracts.GetContractFactory(ctx, ref)
	if err != nil {
		return fail(domain.StageResolve, err)
	}

	network := uc.config.Network
	if network == nil {
		return fail(domain.StageConnect, errors.New("no network configured"))
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "connecting",
		Message: fmt.Sprintf("Connecting to %s", network.Name),
		Spinner: true,
	})

	chainID, err := uc.chain.Connect(ctx, network)
	if err != nil {
		return fail(domain.StageConnect, err)
	}
	uc.log.Debug("connected", "network", network.Name, "chainId", chainID)

	result.Network = network
	result.ChainID = chainID
	result.ExplorerURL = uc.networks.ExplorerURL(network.Name, chainID)

	if uc.config.DryRun {
		pending, err := uc.chain.PredictDeployment(ctx, factory, params.Args)
		if err != nil {
			return fail(domain.StageSubmit, err)
		}
		result.DryRun = true
		result.Pending = pending

		uc.sink.OnProgress(ctx, ProgressEvent{Stage: "complete", Message: "Dry run complete"})
		uc.sink.Info(fmt.Sprintf("Dry run: %s would deploy to %s", factory.Name(), pending.Address.Hex()))
		return result, nil
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "broadcasting",
		Message: fmt.Sprintf("Deploying %s", factory.Name()),
		Spinner: true,
	})

	pending, err := uc.chain.SubmitDeployment(ctx, factory, params.Args)
	if err != nil {
		return fail(domain.StageSubmit, err)
	}
	result.Pending = pending
	uc.log.Info("deployment submitted",
		"contract", factory.Name(),
		"tx", pending.TxHash().Hex(),
		"sender", pending.Sender.Hex(),
		"nonce", pending.Nonce,
	)

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "confirming",
		Message: fmt.Sprintf("Waiting for %s", pending.TxHash().Hex()),
		Spinner: true,
	})

	receipt, err := uc.chain.WaitForDeployment(ctx, pending)
	if err != nil {
		return fail(domain.StageConfirm, err)
	}

	result.State = models.DeploymentStateConfirmed
	result.Receipt = receipt
	result.Deployment, result.Transaction = uc.buildRecords(factory, pending, receipt, chainID, params)
	uc.log.Info("deployment confirmed",
		"contract", factory.Name(),
		"address", receipt.Address.Hex(),
		"block", receipt.BlockNumber,
		"gasUsed", receipt.GasUsed,
	)

	uc.record(ctx, result.Deployment, result.Transaction)

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "complete", Message: "Deployment confirmed"})
	return result, nil
}

// record persists the confirmed deployment. The contract already exists on-chain,
// so registry failures are reported but do not fail the run.
func (uc *DeployContract) record(ctx context.Context, deployment *models.Deployment, tx *models.Transaction) {
	if err := uc.repo.SaveTransaction(ctx, tx); err != nil {
		uc.log.Warn("failed to record transaction", "tx", tx.Hash, "error", err)
		uc.sink.Error(fmt.Sprintf("Transaction %s was not recorded: %v", tx.Hash, err))
	}
	// a reset local chain hands out the same addresses again
	if prev, err := uc.repo.GetDeployment(ctx, deployment.ID); err == nil {
		uc.log.Warn("replacing registry entry", "id", prev.ID, "previousTx", prev.TransactionID)
		uc.sink.Info(fmt.Sprintf("Replacing stale registry entry %s", prev.ID))
	}
	if err := uc.repo.SaveDeployment(ctx, deployment); err != nil {
		uc.log.Warn("failed to record deployment", "id", deployment.ID, "error", err)
		uc.sink.Error(fmt.Sprintf("Deployment %s was not recorded: %v", deployment.ID, err))
	}
}

func (uc *DeployContract) buildRecords(
	factory *models.ContractFactory,
	pending *models.PendingDeployment,
	receipt *models.DeploymentReceipt,
	chainID uint64,
	params DeployContractParams,
) (*models.Deployment, *models.Transaction) {
	now := time.Now()
	txHash := receipt.TxHash.Hex()
	id := models.DeploymentID(uc.config.Namespace, chainID, factory.Name(), receipt.Address)

	tx := &models.Transaction{
		ID:          models.TransactionID(txHash),
		ChainID:     chainID,
		Hash:        txHash,
		Status:      models.TransactionStatusExecuted,
		BlockNumber: receipt.BlockNumber,
		GasUsed:     receipt.GasUsed,
		Sender:      pending.Sender.Hex(),
		Nonce:       pending.Nonce,
		Deployments: []string{id},
		Environment: uc.config.Namespace,
		CreatedAt:   now,
	}

	var compiler string
	if factory.Contract.Artifact != nil {
		compiler = factory.Contract.Artifact.Metadata.Compiler.Version
	}

	deployment := &models.Deployment{
		ID:            id,
		Namespace:     uc.config.Namespace,
		ChainID:       chainID,
		Network:       uc.config.Network.Name,
		ContractName:  factory.Name(),
		Label:         params.Label,
		Address:       receipt.Address.Hex(),
		Method:        models.DeploymentMethodCreate,
		TransactionID: tx.ID,
		Artifact: models.ArtifactInfo{
			Path:            factory.Contract.FullName(),
			CompilerVersion: compiler,
			BytecodeHash:    crypto.Keccak256Hash(factory.Bytecode).Hex(),
		},
		ConstructorArgs: params.Args,
		CreatedAt:       now,
		Transaction:     tx,
	}

	return deployment, tx
}
