package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	abiadapter "github.com/trebuchet-org/treb-deploy/internal/adapters/abi"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// codeCheckTimeout bounds a single CodeAt probe
const codeCheckTimeout = 5 * time.Second

// errNoCodeAfterDeploy is returned when a mined creation left no runtime code
var errNoCodeAfterDeploy = errors.New("no contract code after deployment")

// Backend is the subset of a JSON-RPC client the adapter needs.
// *ethclient.Client satisfies it, as does the simulated backend client.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// ClientAdapter deploys contracts through a JSON-RPC endpoint
type ClientAdapter struct {
	signer *KeySigner
	log    *slog.Logger

	mu      sync.Mutex
	backend Backend
	dialed  *ethclient.Client
	chainID *big.Int
}

// NewClientAdapter creates an adapter that dials the network on Connect
func NewClientAdapter(signer *KeySigner, log *slog.Logger) *ClientAdapter {
	return &ClientAdapter{signer: signer, log: log}
}

// NewClientAdapterWithBackend creates an adapter bound to an existing backend.
// Connect then only verifies the chain ID.
func NewClientAdapterWithBackend(backend Backend, signer *KeySigner, log *slog.Logger) *ClientAdapter {
	return &ClientAdapter{backend: backend, signer: signer, log: log}
}

// Connect establishes the connection and verifies the chain ID
func (c *ClientAdapter) Connect(ctx context.Context, network *config.Network) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend == nil {
		client, err := ethclient.DialContext(ctx, network.RPCURL)
		if err != nil {
			return 0, fmt.Errorf("failed to connect to RPC %s: %w", network.RPCURL, err)
		}
		c.dialed = client
		c.backend = client
	}

	nodeChainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain ID from %s: %w", network.Name, err)
	}

	if network.ChainID != 0 && nodeChainID.Uint64() != network.ChainID {
		return 0, fmt.Errorf("%w: network %s is configured for chain %d, node reports %d",
			domain.ErrNetworkMismatch, network.Name, network.ChainID, nodeChainID.Uint64())
	}

	c.chainID = nodeChainID
	return nodeChainID.Uint64(), nil
}

// Close releases a dialed connection
func (c *ClientAdapter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialed != nil {
		c.dialed.Close()
		c.dialed = nil
		c.backend = nil
	}
}

func (c *ClientAdapter) connected() (Backend, *big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend == nil || c.chainID == nil {
		return nil, nil, fmt.Errorf("not connected to blockchain")
	}
	return c.backend, c.chainID, nil
}

// PredictDeployment computes sender, nonce, gas and the resulting address without sending anything
func (c *ClientAdapter) PredictDeployment(ctx context.Context, factory *models.ContractFactory, args []string) (*models.PendingDeployment, error) {
	backend, chainID, err := c.connected()
	if err != nil {
		return nil, err
	}

	sender, err := c.signer.Address()
	if err != nil {
		return nil, err
	}

	data, err := abiadapter.DeployData(factory, args)
	if err != nil {
		return nil, err
	}

	nonce, err := backend.PendingNonceAt(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce for %s: %w", sender.Hex(), err)
	}

	gas, err := backend.EstimateGas(ctx, ethereum.CallMsg{From: sender, Data: data})
	if err != nil {
		return nil, fmt.Errorf("gas estimation failed: %w", err)
	}

	return &models.PendingDeployment{
		Factory: factory,
		Address: crypto.CreateAddress(sender, nonce),
		Sender:  sender,
		Nonce:   nonce,
		ChainID: chainID.Uint64(),
		Gas:     gas,
		Args:    args,
	}, nil
}

// SubmitDeployment signs and broadcasts the creation transaction
func (c *ClientAdapter) SubmitDeployment(ctx context.Context, factory *models.ContractFactory, args []string) (*models.PendingDeployment, error) {
	backend, chainID, err := c.connected()
	if err != nil {
		return nil, err
	}

	key, err := c.signer.Key()
	if err != nil {
		return nil, err
	}

	values, err := abiadapter.ParseConstructorArgs(factory.ABI, args)
	if err != nil {
		return nil, err
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx

	nonce, err := backend.PendingNonceAt(ctx, auth.From)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce for %s: %w", auth.From.Hex(), err)
	}
	auth.Nonce = new(big.Int).SetUint64(nonce)

	address, tx, _, err := bind.DeployContract(auth, factory.ABI, factory.Bytecode, backend, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to send deployment transaction: %w", err)
	}

	c.log.Debug("deployment transaction sent",
		"tx", tx.Hash().Hex(),
		"gas", tx.Gas(),
		"predicted", address.Hex(),
	)

	return &models.PendingDeployment{
		Factory: factory,
		Address: address,
		Sender:  auth.From,
		Nonce:   nonce,
		ChainID: chainID.Uint64(),
		Gas:     tx.Gas(),
		Args:    args,
		Tx:      tx,
	}, nil
}

// WaitForDeployment waits for the transaction to be mined and checks that code exists
// at the new address. It blocks until ctx is done.
func (c *ClientAdapter) WaitForDeployment(ctx context.Context, pending *models.PendingDeployment) (*models.DeploymentReceipt, error) {
	backend, _, err := c.connected()
	if err != nil {
		return nil, err
	}
	if pending.Tx == nil {
		return nil, fmt.Errorf("deployment was never broadcast")
	}

	receipt, err := bind.WaitMined(ctx, backend, pending.Tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", pending.Tx.Hash().Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted in block %d", receipt.TxHash.Hex(), receipt.BlockNumber.Uint64())
	}

	address := receipt.ContractAddress
	if address == (common.Address{}) {
		address = pending.Address
	}

	code, err := backend.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read code at %s: %w", address.Hex(), err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w at %s", errNoCodeAfterDeploy, address.Hex())
	}

	return &models.DeploymentReceipt{
		Address:     address,
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}

// CheckDeploymentExists checks if a contract exists at the given address
func (c *ClientAdapter) CheckDeploymentExists(ctx context.Context, address common.Address) (bool, error) {
	backend, _, err := c.connected()
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, codeCheckTimeout)
	defer cancel()

	code, err := backend.CodeAt(ctx, address, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check code: %w", err)
	}
	return len(code) > 0, nil
}

// Ensure the adapter implements the interfaces
var (
	_ usecase.ChainClient       = (*ClientAdapter)(nil)
	_ usecase.BlockchainChecker = (*ClientAdapter)(nil)
)
