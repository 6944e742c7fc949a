package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
)

// DefaultContract is deployed when no contract is named on the command line
const DefaultContract = "Vault"

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	// .env values must be in the environment before any key is read
	if err := loadEnvFiles(projectRoot); err != nil {
		return nil, err
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:     projectRoot,
		DataDir:         filepath.Join(projectRoot, ".treb"),
		Namespace:       v.GetString("namespace"),
		DefaultContract: v.GetString("contract"),
		Debug:           v.GetBool("debug"),
		NonInteractive:  v.GetBool("non_interactive"),
		JSON:            v.GetBool("json"),
		Timeout:         v.GetDuration("timeout"),
		DryRun:          v.GetBool("dry_run"),
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}
	if cfg.DefaultContract == "" {
		cfg.DefaultContract = DefaultContract
	}

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig

	trebConfig, err := loadTrebConfigV2(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load treb config: %w", err)
	}

	resolved := ResolveNamespace(trebConfig, cfg.Namespace)
	cfg.FoundryProfile = resolved.Profile
	if cfg.FoundryProfile == "" {
		cfg.FoundryProfile = "default"
	}

	if acct, ok := resolved.Accounts[config.DeployerRole]; ok {
		cfg.Deployer = &acct
	} else if pk := v.GetString("private_key"); pk != "" {
		cfg.Deployer = &config.AccountConfig{
			Type:       config.SenderTypePrivateKey,
			PrivateKey: pk,
		}
	}

	network, err := resolveNetwork(v, NewNetworkResolver(foundryConfig))
	if err != nil {
		return nil, err
	}
	cfg.Network = network

	return cfg, nil
}

// resolveNetwork applies --rpc-url and --chain-id on top of the named network
func resolveNetwork(v *viper.Viper, resolver *NetworkResolver) (*config.Network, error) {
	name := v.GetString("network")
	rpcURL := v.GetString("rpc_url")

	network, err := resolver.Resolve(name)
	if err != nil {
		if rpcURL == "" {
			return nil, fmt.Errorf("failed to resolve network %s: %w", name, err)
		}
		network = &config.Network{Name: name}
	}

	if rpcURL != "" {
		network.RPCURL = rpcURL
	}
	if chainID := v.GetUint64("chain_id"); chainID != 0 {
		network.ChainID = chainID
	}
	network.ExplorerURL = resolver.ExplorerURL(network.Name, network.ChainID)

	return network, nil
}

// FindProjectRoot walks up from current directory to find foundry.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		foundryToml := filepath.Join(dir, "foundry.toml")
		if _, err := os.Stat(foundryToml); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Foundry project (foundry.toml not found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".treb"))

	v.SetEnvPrefix("TREB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("namespace", "default")
	v.SetDefault("network", LocalNetwork)
	v.SetDefault("contract", DefaultContract)
	v.SetDefault("timeout", "0s")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil {
				panic(err)
			}
		})
	}

	return v
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(cfg *config.RuntimeConfig) *NetworkResolver {
	return NewNetworkResolver(cfg.FoundryConfig)
}
