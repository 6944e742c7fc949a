package progress

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

func TestNewProgressSink(t *testing.T) {
	regularFile := func(t *testing.T) io.Writer {
		f, err := os.Create(filepath.Join(t.TempDir(), "stderr"))
		require.NoError(t, err)
		t.Cleanup(func() { f.Close() })
		return f
	}

	tests := []struct {
		name   string
		cfg    *config.RuntimeConfig
		stderr func(t *testing.T) io.Writer
	}{
		{"json output", &config.RuntimeConfig{JSON: true}, func(*testing.T) io.Writer { return os.Stderr }},
		{"non-interactive", &config.RuntimeConfig{NonInteractive: true}, func(*testing.T) io.Writer { return os.Stderr }},
		{"buffer", &config.RuntimeConfig{}, func(*testing.T) io.Writer { return &bytes.Buffer{} }},
		{"regular file", &config.RuntimeConfig{}, regularFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := NewProgressSink(tt.cfg, tt.stderr(t))
			assert.IsType(t, &NopSink{}, sink)
		})
	}
}

func TestSpinnerSink(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	f, err := os.Create(filepath.Join(t.TempDir(), "progress"))
	require.NoError(t, err)
	defer f.Close()

	ctx := context.Background()
	sink := NewSpinnerSink(f)

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "resolving", Message: "Resolving Vault", Spinner: true})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "connecting", Message: "Connecting to localhost", Spinner: true})
	sink.Info("note")
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "failed", Message: "connect"})
	sink.Error("registry write failed")

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "✓ Resolving Vault")
	assert.Contains(t, out, "note")
	assert.Contains(t, out, "✗ Connecting to localhost")
	assert.Contains(t, out, "registry write failed")
	assert.Nil(t, sink.current)
}
