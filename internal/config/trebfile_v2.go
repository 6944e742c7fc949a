package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
)

// loadTrebConfigV2 loads and parses treb.toml with [accounts.*] and [namespace.*] sections.
// Returns (nil, nil) if treb.toml doesn't exist.
func loadTrebConfigV2(projectRoot string) (*config.TrebFileConfigV2, error) {
	trebPath := filepath.Join(projectRoot, "treb.toml")

	if _, err := os.Stat(trebPath); os.IsNotExist(err) {
		return nil, nil
	}

	var cfg config.TrebFileConfigV2
	if _, err := toml.DecodeFile(trebPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse treb.toml: %w", err)
	}

	if cfg.Accounts == nil {
		cfg.Accounts = make(map[string]config.AccountConfig)
	}

	if cfg.Namespace == nil {
		cfg.Namespace = make(map[string]config.NamespaceRoles)
	}

	// Expand environment variables in all account config string fields
	for name, acct := range cfg.Accounts {
		acct.PrivateKey = os.ExpandEnv(acct.PrivateKey)
		acct.Address = os.ExpandEnv(acct.Address)
		acct.DerivationPath = os.ExpandEnv(acct.DerivationPath)
		cfg.Accounts[name] = acct
	}

	return &cfg, nil
}

// ResolveNamespace resolves a namespace's full configuration by walking up the
// dot-separated hierarchy and overlaying roles and profile at each level.
// For example, resolving "production.eu" walks: default → production → production.eu.
// Roles that reference unknown accounts are skipped with a warning to warnWriter.
// Pass nil for warnWriter to use os.Stderr.
func ResolveNamespace(cfg *config.TrebFileConfigV2, namespaceName string, warnWriter ...io.Writer) *config.ResolvedNamespace {
	w := resolveWarnWriter(warnWriter)

	resolved := &config.ResolvedNamespace{
		Accounts: make(map[string]config.AccountConfig),
	}
	if cfg == nil {
		return resolved
	}

	roles := make(map[string]string)
	for _, ancestor := range buildNamespaceChain(namespaceName) {
		ns, exists := cfg.Namespace[ancestor]
		if !exists {
			continue
		}
		if ns.Profile != "" {
			resolved.Profile = ns.Profile
		}
		for role, account := range ns.Senders {
			roles[role] = account
		}
	}

	for role, accountName := range roles {
		acct, exists := cfg.Accounts[accountName]
		if !exists {
			fmt.Fprintf(w, "Warning: namespace %q role %q references unknown account %q - skipping\n", namespaceName, role, accountName)
			continue
		}
		resolved.Accounts[role] = acct
	}

	return resolved
}

// resolveWarnWriter returns the first writer from the variadic args, or os.Stderr if none provided.
func resolveWarnWriter(writers []io.Writer) io.Writer {
	if len(writers) > 0 && writers[0] != nil {
		return writers[0]
	}
	return os.Stderr
}

// buildNamespaceChain returns the ordered list of namespace names to resolve,
// starting from "default" and adding each dot-separated prefix.
// For "production.eu.v2" it returns: ["default", "production", "production.eu", "production.eu.v2"]
func buildNamespaceChain(namespaceName string) []string {
	if namespaceName == "" || namespaceName == "default" {
		return []string{"default"}
	}

	chain := []string{"default"}
	parts := strings.Split(namespaceName, ".")
	for i := range parts {
		chain = append(chain, strings.Join(parts[:i+1], "."))
	}
	return chain
}
