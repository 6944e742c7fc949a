package config

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
)

const (
	// LocalNetwork is used when no network is configured
	LocalNetwork = "localhost"
	// LocalRPCURL is the default endpoint of a local anvil node
	LocalRPCURL = "http://127.0.0.1:8545"
)

// envVarPattern matches ${VAR_NAME} patterns in TOML values
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// NetworkResolver resolves network names to configurations from foundry.toml [rpc_endpoints]
type NetworkResolver struct {
	foundryConfig *config.FoundryConfig
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(foundryConfig *config.FoundryConfig) *NetworkResolver {
	if foundryConfig == nil {
		foundryConfig = &config.FoundryConfig{}
	}
	return &NetworkResolver{
		foundryConfig: foundryConfig,
	}
}

// GetNetworks returns the configured network names, sorted
func (r *NetworkResolver) GetNetworks() []string {
	names := lo.Keys(r.foundryConfig.RpcEndpoints)
	sort.Strings(names)
	return names
}

// Resolve resolves a network name to its configuration.
// "localhost" falls back to a local node when it isn't configured explicitly.
func (r *NetworkResolver) Resolve(networkName string) (*config.Network, error) {
	if networkName == "" {
		networkName = LocalNetwork
	}

	rpcURL, exists := r.foundryConfig.RpcEndpoints[networkName]
	if !exists {
		if networkName == LocalNetwork {
			return &config.Network{Name: LocalNetwork, RPCURL: LocalRPCURL}, nil
		}
		return nil, fmt.Errorf("network '%s' not found in foundry.toml [rpc_endpoints]", networkName)
	}

	if rpcURL == "" {
		if missing := r.missingEnvVars(networkName); len(missing) > 0 {
			return nil, fmt.Errorf("network '%s': rpc endpoint references unset environment variable %s", networkName, missing[0])
		}
		return nil, fmt.Errorf("network '%s' has an empty rpc endpoint", networkName)
	}

	return &config.Network{
		Name:   networkName,
		RPCURL: rpcURL,
	}, nil
}

// missingEnvVars lists ${VAR} references in the raw endpoint that expanded to nothing
func (r *NetworkResolver) missingEnvVars(networkName string) []string {
	raw, ok := r.foundryConfig.RawRpcEndpoints[networkName]
	if !ok {
		return nil
	}
	var missing []string
	for _, match := range envVarPattern.FindAllStringSubmatch(raw, -1) {
		missing = append(missing, match[1])
	}
	return missing
}

// ExplorerURL returns the block explorer URL for a network
func (r *NetworkResolver) ExplorerURL(networkName string, chainID uint64) string {
	if etherscan, exists := r.foundryConfig.Etherscan[networkName]; exists && etherscan.URL != "" {
		return etherscan.URL
	}

	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	case 17000:
		return "https://holesky.etherscan.io"
	case 10:
		return "https://optimistic.etherscan.io"
	case 137:
		return "https://polygonscan.com"
	case 8453:
		return "https://basescan.org"
	case 84532:
		return "https://sepolia.basescan.org"
	case 42161:
		return "https://arbiscan.io"
	case 43114:
		return "https://snowtrace.io"
	case 56:
		return "https://bscscan.com"
	case 42220:
		return "https://celoscan.io"
	default:
		return ""
	}
}
