package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Context settings
	Namespace string   // Maps to a treb.toml namespace
	Network   *Network // Resolved target network

	// Contract deployed when none is given on the command line
	DefaultContract string

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration
	DryRun         bool

	// Resolved configurations
	FoundryProfile string
	FoundryConfig  *FoundryConfig
	Deployer       *AccountConfig // nil when no deployer account is configured
}

// ArtifactsDir returns the absolute Foundry output directory for the active profile
func (c *RuntimeConfig) ArtifactsDir() string {
	out := "out"
	if c.FoundryConfig != nil {
		if profile, ok := c.FoundryConfig.Profile[c.FoundryProfile]; ok && profile.OutPath != "" {
			out = profile.OutPath
		} else if profile, ok := c.FoundryConfig.Profile["default"]; ok && profile.OutPath != "" {
			out = profile.OutPath
		}
	}
	return joinRoot(c.ProjectRoot, out)
}

// Network represents network configuration
type Network struct {
	Name        string `json:"name"`
	RPCURL      string `json:"rpcUrl"`
	ChainID     uint64 `json:"chainId,omitempty"` // 0 means "accept whatever the node reports"
	ExplorerURL string `json:"explorerUrl,omitempty"`
}
