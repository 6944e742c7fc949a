package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// ListDeploymentsParams contains parameters for listing deployments
type ListDeploymentsParams struct {
	ContractName string
	Label        string
	ChainID      uint64
	// CheckOnChain probes the configured network for code at each address
	CheckOnChain bool
}

// DeploymentListResult contains the result of listing deployments
type DeploymentListResult struct {
	Deployments []*models.Deployment
	Summary     DeploymentSummary
	// OnChain is keyed by deployment ID and only populated when CheckOnChain is set
	OnChain map[string]bool
}

// DeploymentSummary provides summary statistics
type DeploymentSummary struct {
	Total      int
	ByChain    map[uint64]int
	ByContract map[string]int
}

// ListDeployments is the use case for listing recorded deployments
type ListDeployments struct {
	config  *config.RuntimeConfig
	repo    DeploymentRepository
	checker BlockchainChecker
	sink    ProgressSink
}

// NewListDeployments creates a new ListDeployments use case
func NewListDeployments(cfg *config.RuntimeConfig, repo DeploymentRepository, checker BlockchainChecker, sink ProgressSink) *ListDeployments {
	return &ListDeployments{
		config:  cfg,
		repo:    repo,
		checker: checker,
		sink:    sink,
	}
}

// Run executes the list deployments use case
func (uc *ListDeployments) Run(ctx context.Context, params ListDeploymentsParams) (*DeploymentListResult, error) {
	fail := func(err error) error {
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: "failed", Message: err.Error()})
		return err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading deployments from registry",
		Spinner: true,
	})

	filter := DeploymentFilter{
		Namespace:    uc.config.Namespace,
		ContractName: params.ContractName,
		Label:        params.Label,
		ChainID:      params.ChainID,
	}

	deployments, err := uc.repo.ListDeployments(ctx, filter)
	if err != nil {
		return nil, fail(err)
	}

	sortDeployments(deployments)

	result := &DeploymentListResult{
		Deployments: deployments,
		Summary:     calculateSummary(deployments),
	}

	if params.CheckOnChain && len(deployments) > 0 {
		onChain, err := uc.checkOnChain(ctx, deployments)
		if err != nil {
			return nil, fail(err)
		}
		result.OnChain = onChain
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: "Deployments loaded",
	})

	return result, nil
}

// checkOnChain only probes deployments that live on the connected chain
func (uc *ListDeployments) checkOnChain(ctx context.Context, deployments []*models.Deployment) (map[string]bool, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "checking",
		Message: fmt.Sprintf("Checking deployments on %s", uc.config.Network.Name),
		Spinner: true,
	})

	chainID, err := uc.checker.Connect(ctx, uc.config.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", uc.config.Network.Name, err)
	}

	onChain := make(map[string]bool)
	for _, dep := range deployments {
		if dep.ChainID != chainID {
			continue
		}
		exists, err := uc.checker.CheckDeploymentExists(ctx, common.HexToAddress(dep.Address))
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", dep.ID, err)
		}
		onChain[dep.ID] = exists
	}
	return onChain, nil
}

// sortDeployments sorts deployments by chain, contract name, then creation time
func sortDeployments(deployments []*models.Deployment) {
	sort.SliceStable(deployments, func(i, j int) bool {
		if deployments[i].ChainID != deployments[j].ChainID {
			return deployments[i].ChainID < deployments[j].ChainID
		}
		if deployments[i].ContractName != deployments[j].ContractName {
			return deployments[i].ContractName < deployments[j].ContractName
		}
		return deployments[i].CreatedAt.Before(deployments[j].CreatedAt)
	})
}

// calculateSummary calculates summary statistics for deployments
func calculateSummary(deployments []*models.Deployment) DeploymentSummary {
	summary := DeploymentSummary{
		Total:      len(deployments),
		ByChain:    make(map[uint64]int),
		ByContract: make(map[string]int),
	}

	for _, dep := range deployments {
		summary.ByChain[dep.ChainID]++
		summary.ByContract[dep.ContractName]++
	}

	return summary
}
