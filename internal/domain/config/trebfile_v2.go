package config

// DeployerRole is the namespace role whose account signs deployments
const DeployerRole = "deployer"

type SenderType string

var (
	SenderTypeLedger     SenderType = "ledger"
	SenderTypeTrezor     SenderType = "trezor"
	SenderTypeSafe       SenderType = "safe"
	SenderTypePrivateKey SenderType = "private_key"
)

// AccountConfig represents a named signing entity in [accounts.*] sections.
type AccountConfig struct {
	Type           SenderType `toml:"type"`
	Address        string     `toml:"address,omitempty"`
	PrivateKey     string     `toml:"private_key,omitempty"` //nolint:gosec // holds env var reference, not a literal secret
	DerivationPath string     `toml:"derivation_path,omitempty"`
}

// NamespaceRoles represents a [namespace.*] section in treb.toml.
// Profile maps to a foundry.toml profile, and Senders maps role names to account names.
type NamespaceRoles struct {
	Profile string            `toml:"profile,omitempty"`
	Senders map[string]string `toml:"senders"`
}

// TrebFileConfigV2 represents treb.toml with separate accounts and namespaces.
type TrebFileConfigV2 struct {
	Accounts  map[string]AccountConfig  `toml:"accounts"`
	Namespace map[string]NamespaceRoles `toml:"namespace"`
}

// ResolvedNamespace holds the fully-resolved configuration for a namespace
// after walking the dot-based hierarchy and resolving role→account mappings.
type ResolvedNamespace struct {
	Profile  string                   // Resolved foundry profile name
	Accounts map[string]AccountConfig // role name → resolved AccountConfig
}
