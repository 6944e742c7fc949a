package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
)

func TestLoadTrebConfigV2(t *testing.T) {
	t.Run("missing file returns nil", func(t *testing.T) {
		cfg, err := loadTrebConfigV2(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("invalid TOML returns error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "treb.toml", "invalid [[ toml")

		_, err := loadTrebConfigV2(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse treb.toml")
	})

	t.Run("empty file yields empty maps", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "treb.toml", "")

		cfg, err := loadTrebConfigV2(dir)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.NotNil(t, cfg.Accounts)
		assert.NotNil(t, cfg.Namespace)
	})
}

func TestResolveNamespace(t *testing.T) {
	cfg := &config.TrebFileConfigV2{
		Accounts: map[string]config.AccountConfig{
			"dev":     {Type: config.SenderTypePrivateKey, PrivateKey: "0x01"},
			"staging": {Type: config.SenderTypePrivateKey, PrivateKey: "0x02"},
		},
		Namespace: map[string]config.NamespaceRoles{
			"default": {
				Profile: "default",
				Senders: map[string]string{"deployer": "dev", "admin": "dev"},
			},
			"staging": {
				Profile: "staging",
				Senders: map[string]string{"deployer": "staging"},
			},
			"staging.eu": {
				Senders: map[string]string{"admin": "ghost"},
			},
		},
	}

	t.Run("default namespace", func(t *testing.T) {
		resolved := ResolveNamespace(cfg, "default")
		assert.Equal(t, "default", resolved.Profile)
		assert.Equal(t, "0x01", resolved.Accounts["deployer"].PrivateKey)
	})

	t.Run("child overlays parents", func(t *testing.T) {
		var warnings bytes.Buffer
		resolved := ResolveNamespace(cfg, "staging.eu", &warnings)

		assert.Equal(t, "staging", resolved.Profile)
		assert.Equal(t, "0x02", resolved.Accounts["deployer"].PrivateKey)
		// admin points at an unknown account in staging.eu and is dropped
		_, ok := resolved.Accounts["admin"]
		assert.False(t, ok)
		assert.Contains(t, warnings.String(), `unknown account "ghost"`)
	})

	t.Run("nil config resolves to nothing", func(t *testing.T) {
		resolved := ResolveNamespace(nil, "default")
		assert.Empty(t, resolved.Profile)
		assert.Empty(t, resolved.Accounts)
	})
}

func TestBuildNamespaceChain(t *testing.T) {
	tests := []struct {
		name     string
		expected []string
	}{
		{"default", []string{"default"}},
		{"", []string{"default"}},
		{"production", []string{"default", "production"}},
		{"production.eu.v2", []string{"default", "production", "production.eu", "production.eu.v2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildNamespaceChain(tt.name))
		})
	}
}
