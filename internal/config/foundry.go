package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
)

// loadEnvFiles loads .env.local and .env from the project root. Variables that
// are already set in the environment win; .env.local wins over .env.
func loadEnvFiles(projectRoot string) error {
	envFiles := []string{
		filepath.Join(projectRoot, ".env.local"),
		filepath.Join(projectRoot, ".env"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", filepath.Base(envFile), err)
		}
	}
	return nil
}

// loadFoundryConfig loads and parses foundry.toml, expanding environment
// variables in rpc endpoints and etherscan settings.
func loadFoundryConfig(projectRoot string) (*config.FoundryConfig, error) {
	foundryPath := filepath.Join(projectRoot, "foundry.toml")

	var cfg config.FoundryConfig
	if _, err := toml.DecodeFile(foundryPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	if cfg.Profile == nil {
		cfg.Profile = make(map[string]config.ProfileConfig)
	}
	if cfg.Etherscan == nil {
		cfg.Etherscan = make(map[string]config.EtherscanConfig)
	}

	// Keep the raw endpoints around so unset ${VAR} references can be reported by name
	cfg.RawRpcEndpoints = cfg.RpcEndpoints
	cfg.RpcEndpoints = make(map[string]string, len(cfg.RawRpcEndpoints))
	for name, url := range cfg.RawRpcEndpoints {
		cfg.RpcEndpoints[name] = os.ExpandEnv(url)
	}

	for network, ec := range cfg.Etherscan {
		ec.URL = os.ExpandEnv(ec.URL)
		ec.Key = os.ExpandEnv(ec.Key)
		cfg.Etherscan[network] = ec
	}

	return &cfg, nil
}
