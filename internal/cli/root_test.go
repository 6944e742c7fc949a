package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-deploy/internal/app"
)

const (
	initCode   = "0x6001600c60003960016000f300"
	revertCode = "0x60006000fd"
)

var deployedLine = regexp.MustCompile(`^Vault deployed to (0x[0-9a-fA-F]{40})\n$`)

// newProject creates a Foundry project with compiled artifacts and makes it the working directory
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "foundry.toml"), []byte(`[profile.default]
src = "src"
out = "out"

[rpc_endpoints]
sepolia = "https://rpc.sepolia.example"
`), 0644))

	writeArtifact(t, root, "Vault", initCode)
	writeArtifact(t, root, "Reverter", revertCode)

	t.Chdir(root)
	return root
}

func writeArtifact(t *testing.T, root, name, bytecode string) {
	t.Helper()

	artifact := map[string]any{
		"abi":              []any{},
		"bytecode":         map[string]any{"object": bytecode},
		"deployedBytecode": map[string]any{"object": "0x00"},
		"metadata": map[string]any{
			"compiler": map[string]any{"version": "0.8.24+commit.e11b9ed9"},
			"settings": map[string]any{
				"compilationTarget": map[string]string{"src/" + name + ".sol": name},
			},
		},
	}
	data, err := json.Marshal(artifact)
	require.NoError(t, err)

	dir := filepath.Join(root, "out", name+".sol")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0644))
}

// newChain starts an in-process chain that mines every few milliseconds and
// exposes a funded deployer key through the environment
func newChain(t *testing.T) *simulated.Backend {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	t.Setenv("TREB_PRIVATE_KEY", "0x"+hex.EncodeToString(crypto.FromECDSA(key)))

	backend := simulated.NewBackend(types.GenesisAlloc{
		crypto.PubkeyToAddress(key.PublicKey): {Balance: new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				backend.Commit()
			}
		}
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = backend.Close()
	})
	return backend
}

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, backend *simulated.Backend, args ...string) result {
	t.Helper()

	factory := func(v *viper.Viper, stderr io.Writer) (*app.App, error) {
		return app.InitAppWithBackend(v, stderr, backend.Client())
	}

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), factory, args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestDeploy(t *testing.T) {
	t.Run("bare invocation deploys the default contract", func(t *testing.T) {
		root := newProject(t)
		backend := newChain(t)

		res := run(t, backend)
		require.Equal(t, 0, res.code, res.stderr)
		assert.Regexp(t, deployedLine, res.stdout)
		assert.NotContains(t, res.stderr, "Error:")
		assert.FileExists(t, filepath.Join(root, ".treb", "deployments.json"))
	})

	t.Run("every run deploys a new instance", func(t *testing.T) {
		newProject(t)
		backend := newChain(t)

		first := run(t, backend)
		require.Equal(t, 0, first.code, first.stderr)
		second := run(t, backend)
		require.Equal(t, 0, second.code, second.stderr)

		firstAddr := deployedLine.FindStringSubmatch(first.stdout)
		secondAddr := deployedLine.FindStringSubmatch(second.stdout)
		require.Len(t, firstAddr, 2)
		require.Len(t, secondAddr, 2)
		assert.NotEqual(t, firstAddr[1], secondAddr[1])

		list := run(t, backend, "list", "--json")
		require.Equal(t, 0, list.code, list.stderr)
		var records []map[string]any
		require.NoError(t, json.Unmarshal([]byte(list.stdout), &records))
		assert.Len(t, records, 2)
	})

	t.Run("json output", func(t *testing.T) {
		newProject(t)
		backend := newChain(t)

		res := run(t, backend, "Vault", "--json", "--label", "main")
		require.Equal(t, 0, res.code, res.stderr)

		var out struct {
			Contract        string `json:"contract"`
			Address         string `json:"address"`
			State           string `json:"state"`
			ChainID         uint64 `json:"chainId"`
			TransactionHash string `json:"transactionHash"`
			DeploymentID    string `json:"deploymentId"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
		assert.Equal(t, "Vault", out.Contract)
		assert.Equal(t, "CONFIRMED", out.State)
		assert.Equal(t, uint64(1337), out.ChainID)
		assert.Regexp(t, `^0x[0-9a-fA-F]{40}$`, out.Address)
		assert.NotEmpty(t, out.TransactionHash)
		assert.Equal(t, "default/1337/Vault@"+out.Address, out.DeploymentID)
	})

	t.Run("dry run broadcasts nothing", func(t *testing.T) {
		root := newProject(t)
		backend := newChain(t)

		res := run(t, backend, "--dry-run")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Regexp(t, `^Vault would deploy to 0x[0-9a-fA-F]{40}\n$`, res.stdout)
		assert.NoFileExists(t, filepath.Join(root, ".treb", "deployments.json"))
	})
}

func TestDeployFailures(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		setup  func(t *testing.T)
		stderr string
	}{
		{
			name:   "unknown contract",
			args:   []string{"Missing", "--non-interactive"},
			stderr: "deployment of Missing failed (resolve)",
		},
		{
			name:   "reverting constructor",
			args:   []string{"Reverter"},
			stderr: "deployment of Reverter failed (submit)",
		},
		{
			name:   "unexpected constructor argument",
			args:   []string{"--arg", "1"},
			stderr: "constructor expects 0 argument(s)",
		},
		{
			name:   "no deployer key",
			setup:  func(t *testing.T) { t.Setenv("TREB_PRIVATE_KEY", "") },
			stderr: "no deployer account configured",
		},
		{
			name:   "too many arguments",
			args:   []string{"Vault", "Token"},
			stderr: "accepts at most 1 arg(s)",
		},
		{
			name:   "unknown flag",
			args:   []string{"--bogus"},
			stderr: "unknown flag",
		},
		{
			name:   "chain id mismatch",
			args:   []string{"--chain-id", "1"},
			stderr: "network mismatch",
		},
		{
			name:   "unknown network",
			args:   []string{"-n", "nowhere"},
			stderr: "failed to initialize app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newProject(t)
			backend := newChain(t)
			if tt.setup != nil {
				tt.setup(t)
			}

			res := run(t, backend, tt.args...)
			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
			assert.Contains(t, res.stderr, "Error: ")
			assert.Contains(t, res.stderr, tt.stderr)
			assert.NoFileExists(t, filepath.Join(root, ".treb", "deployments.json"))
		})
	}

	t.Run("outside a foundry project", func(t *testing.T) {
		t.Chdir(t.TempDir())
		backend := newChain(t)

		res := run(t, backend)
		assert.Equal(t, 1, res.code)
		assert.Empty(t, res.stdout)
		assert.Contains(t, res.stderr, "not in a Foundry project")
	})

	t.Run("timeout cancels the wait", func(t *testing.T) {
		newProject(t)
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		t.Setenv("TREB_PRIVATE_KEY", "0x"+hex.EncodeToString(crypto.FromECDSA(key)))

		// no blocks are mined on this chain
		backend := simulated.NewBackend(types.GenesisAlloc{
			crypto.PubkeyToAddress(key.PublicKey): {Balance: big.NewInt(1e18)},
		})
		t.Cleanup(func() { _ = backend.Close() })

		res := run(t, backend, "--timeout", "300ms")
		assert.Equal(t, 1, res.code)
		assert.Empty(t, res.stdout)
		assert.Contains(t, res.stderr, "deadline exceeded")
	})
}

func TestListAndNetworks(t *testing.T) {
	t.Run("empty registry", func(t *testing.T) {
		newProject(t)
		backend := newChain(t)

		res := run(t, backend, "list")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, "No deployments found\n", res.stdout)
	})

	t.Run("list checks code on chain", func(t *testing.T) {
		newProject(t)
		backend := newChain(t)

		require.Equal(t, 0, run(t, backend).code)

		res := run(t, backend, "list", "--check", "--json")
		require.Equal(t, 0, res.code, res.stderr)

		var records []struct {
			ContractName string `json:"contractName"`
			OnChain      *bool  `json:"onChain"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "Vault", records[0].ContractName)
		require.NotNil(t, records[0].OnChain)
		assert.True(t, *records[0].OnChain)

		table := run(t, backend, "list", "--contract", "Vault")
		require.Equal(t, 0, table.code, table.stderr)
		assert.Contains(t, table.stdout, "Vault")
		assert.Contains(t, table.stdout, "Total deployments: 1")
	})

	t.Run("networks", func(t *testing.T) {
		newProject(t)
		backend := newChain(t)

		res := run(t, backend, "networks", "--json")
		require.Equal(t, 0, res.code, res.stderr)

		var networks []struct {
			Name    string `json:"name"`
			RPCURL  string `json:"rpcUrl"`
			Current bool   `json:"current"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &networks))
		require.NotEmpty(t, networks)
		names := make([]string, 0, len(networks))
		for _, n := range networks {
			names = append(names, n.Name)
		}
		assert.Contains(t, names, "sepolia")
	})

	t.Run("version needs no project", func(t *testing.T) {
		t.Chdir(t.TempDir())

		var stdout, stderr bytes.Buffer
		code := Run(context.Background(), []string{"version"}, &stdout, &stderr)
		assert.Equal(t, 0, code)
		assert.Contains(t, stdout.String(), "treb-deploy version")
	})
}
