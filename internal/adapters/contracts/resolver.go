package contracts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	abiadapter "github.com/trebuchet-org/treb-deploy/internal/adapters/abi"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

const maxSuggestions = 3

// FactoryResolver resolves contract references into deployable factories.
// The artifacts directory is indexed on first use.
type FactoryResolver struct {
	config   *config.RuntimeConfig
	indexer  *Indexer
	selector usecase.ContractSelector
	log      *slog.Logger

	indexOnce sync.Once
	indexErr  error
}

// NewFactoryResolver creates a resolver over the configured artifacts directory.
// selector may be nil, in which case ambiguous references always fail.
func NewFactoryResolver(cfg *config.RuntimeConfig, selector usecase.ContractSelector, log *slog.Logger) *FactoryResolver {
	return &FactoryResolver{
		config:   cfg,
		indexer:  NewIndexer(cfg.ProjectRoot, cfg.ArtifactsDir()),
		selector: selector,
		log:      log,
	}
}

// GetContractFactory resolves contractRef ("Vault" or "src/Vault.sol:Vault") to a factory
func (r *FactoryResolver) GetContractFactory(ctx context.Context, contractRef string) (*models.ContractFactory, error) {
	contract, err := r.ResolveContract(ctx, contractRef)
	if err != nil {
		return nil, err
	}
	r.log.Debug("resolved contract", "ref", contractRef, "contract", contract.FullName(), "artifact", contract.ArtifactPath)

	return abiadapter.NewFactory(contract)
}

// ResolveContract finds the single contract a reference points to
func (r *FactoryResolver) ResolveContract(ctx context.Context, contractRef string) (*models.Contract, error) {
	if err := r.ensureIndexed(); err != nil {
		return nil, err
	}

	// Exact key: unique name or path:name
	if contract, ok := r.indexer.GetContract(contractRef); ok {
		return contract, nil
	}

	candidates := r.indexer.ContractsNamed(contractRef)
	if len(candidates) == 0 {
		candidates = r.indexer.SearchContracts(contractRef)
	}

	switch len(candidates) {
	case 0:
		return nil, domain.NoContractsMatchErr{
			Query:       contractRef,
			Suggestions: r.suggest(contractRef),
		}
	case 1:
		return candidates[0], nil
	}

	if r.selector != nil && !r.config.NonInteractive {
		selected, err := r.selector.SelectContract(ctx, candidates,
			fmt.Sprintf("Multiple contracts found for '%s'. Select one:", contractRef))
		if err != nil {
			return nil, fmt.Errorf("contract selection failed: %w", err)
		}
		return selected, nil
	}

	return nil, domain.AmbiguousFilterErr{
		Query: contractRef,
		Matches: lo.Map(candidates, func(c *models.Contract, _ int) domain.ContractCandidate {
			return domain.ContractCandidate{Name: c.Name, Path: c.Path}
		}),
	}
}

func (r *FactoryResolver) ensureIndexed() error {
	r.indexOnce.Do(func() {
		if err := r.indexer.Index(); err != nil {
			r.indexErr = fmt.Errorf("failed to index contracts: %w", err)
		}
	})
	return r.indexErr
}

// suggest returns the closest contract names by fuzzy score
func (r *FactoryResolver) suggest(query string) []string {
	matches := fuzzy.Find(query, r.indexer.Names())
	names := lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
	if len(names) > maxSuggestions {
		names = names[:maxSuggestions]
	}
	return names
}

var _ usecase.ContractFactoryResolver = (*FactoryResolver)(nil)
