package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/progress"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

func testDeployment(chainID uint64, name, address string, created time.Time) *models.Deployment {
	return &models.Deployment{
		ID:           models.DeploymentID("default", chainID, name, common.HexToAddress(address)),
		Namespace:    "default",
		ChainID:      chainID,
		ContractName: name,
		Address:      common.HexToAddress(address).Hex(),
		CreatedAt:    created,
	}
}

func TestListDeployments(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	cfg := &config.RuntimeConfig{
		Namespace: "default",
		Network:   &config.Network{Name: "localhost", RPCURL: "http://127.0.0.1:8545"},
	}

	vaultNew := testDeployment(31337, "Vault", "0x02", now)
	vaultOld := testDeployment(31337, "Vault", "0x01", now.Add(-time.Hour))
	token := testDeployment(31337, "Token", "0x03", now)
	mainnet := testDeployment(1, "Vault", "0x04", now)

	t.Run("sorts and summarises", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		repo.On("ListDeployments", ctx, usecase.DeploymentFilter{Namespace: "default"}).
			Return([]*models.Deployment{vaultNew, token, mainnet, vaultOld}, nil)

		uc := usecase.NewListDeployments(cfg, repo, new(MockChainClient), progress.NewNopSink())
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{})
		require.NoError(t, err)

		assert.Equal(t, []*models.Deployment{mainnet, token, vaultOld, vaultNew}, result.Deployments)
		assert.Equal(t, 4, result.Summary.Total)
		assert.Equal(t, 3, result.Summary.ByChain[31337])
		assert.Equal(t, 1, result.Summary.ByChain[1])
		assert.Equal(t, 3, result.Summary.ByContract["Vault"])
		assert.Nil(t, result.OnChain)
	})

	t.Run("passes filters through", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		filter := usecase.DeploymentFilter{Namespace: "default", ChainID: 31337, ContractName: "Vault", Label: "main"}
		repo.On("ListDeployments", ctx, filter).Return([]*models.Deployment{}, nil).Once()

		uc := usecase.NewListDeployments(cfg, repo, new(MockChainClient), progress.NewNopSink())
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{ContractName: "Vault", Label: "main", ChainID: 31337})
		require.NoError(t, err)
		assert.Empty(t, result.Deployments)
		repo.AssertExpectations(t)
	})

	t.Run("checks code only on the connected chain", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		repo.On("ListDeployments", ctx, mock.Anything).
			Return([]*models.Deployment{vaultOld, mainnet}, nil)

		checker := new(MockChainClient)
		checker.On("Connect", ctx, cfg.Network).Return(uint64(31337), nil)
		checker.On("CheckDeploymentExists", ctx, common.HexToAddress("0x01")).Return(false, nil).Once()

		uc := usecase.NewListDeployments(cfg, repo, checker, progress.NewNopSink())
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{CheckOnChain: true})
		require.NoError(t, err)

		assert.Equal(t, map[string]bool{vaultOld.ID: false}, result.OnChain)
		checker.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		repo.On("ListDeployments", ctx, mock.Anything).Return(nil, errors.New("corrupt registry"))

		sink := new(MockProgressSink)
		uc := usecase.NewListDeployments(cfg, repo, new(MockChainClient), sink)
		_, err := uc.Run(ctx, usecase.ListDeploymentsParams{})
		assert.EqualError(t, err, "corrupt registry")
		assert.Equal(t, []string{"loading", "failed"}, sink.stages())
	})

	t.Run("connect error while checking", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		repo.On("ListDeployments", ctx, mock.Anything).Return([]*models.Deployment{vaultOld}, nil)

		checker := new(MockChainClient)
		checker.On("Connect", ctx, cfg.Network).Return(uint64(0), errors.New("dial refused"))

		sink := new(MockProgressSink)
		uc := usecase.NewListDeployments(cfg, repo, checker, sink)
		_, err := uc.Run(ctx, usecase.ListDeploymentsParams{CheckOnChain: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to localhost")
		assert.Equal(t, []string{"loading", "checking", "failed"}, sink.stages())
	})
}
