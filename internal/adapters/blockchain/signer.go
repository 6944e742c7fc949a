package blockchain

import (
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
)

// KeySigner loads the deployer's private key on first use, so commands that
// never sign work without one
type KeySigner struct {
	account *config.AccountConfig

	once sync.Once
	key  *ecdsa.PrivateKey
	err  error
}

// NewKeySigner creates a signer for the configured deployer account
func NewKeySigner(cfg *config.RuntimeConfig) *KeySigner {
	return &KeySigner{account: cfg.Deployer}
}

// Key returns the deployer's private key
func (s *KeySigner) Key() (*ecdsa.PrivateKey, error) {
	s.once.Do(func() {
		s.key, s.err = loadKey(s.account)
	})
	return s.key, s.err
}

// Address returns the deployer's address
func (s *KeySigner) Address() (common.Address, error) {
	key, err := s.Key()
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

func loadKey(account *config.AccountConfig) (*ecdsa.PrivateKey, error) {
	if account == nil {
		return nil, fmt.Errorf("%w: set TREB_PRIVATE_KEY or map the %q role in treb.toml", domain.ErrNoDeployer, config.DeployerRole)
	}

	switch account.Type {
	case config.SenderTypePrivateKey, "":
		if account.PrivateKey == "" {
			return nil, fmt.Errorf("%w: private key is empty", domain.ErrNoDeployer)
		}
	default:
		return nil, fmt.Errorf("deployer account type %q cannot sign deployments, use a %s account", account.Type, config.SenderTypePrivateKey)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(account.PrivateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid deployer private key: %w", err)
	}

	if account.Address != "" {
		derived := crypto.PubkeyToAddress(key.PublicKey)
		if !strings.EqualFold(derived.Hex(), account.Address) {
			return nil, fmt.Errorf("deployer private key belongs to %s, not the configured address %s", derived.Hex(), account.Address)
		}
	}

	return key, nil
}
