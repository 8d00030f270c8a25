package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/revad/internal/autodiff"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "revad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_EmptyPathAndMissingFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
arena:
  block_shift: 6
  max_blocks: 32
log:
  level: debug
bench:
  iterations: 50
  parallel: true
  dim: 4
  workers: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint(6), cfg.Arena.BlockShift)
	assert.Equal(t, 32, cfg.Arena.MaxBlocks)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Bench.Iterations)
	assert.True(t, cfg.Bench.Parallel)
	assert.Equal(t, 4, cfg.Bench.Dim)

	p := cfg.Parallel()
	assert.True(t, p.Enabled)
	assert.Equal(t, 2, p.NumWorkers)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, Default().Arena, cfg.Arena)
	assert.Equal(t, Default().Bench, cfg.Bench)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REVAD_LOG_LEVEL", "error")
	t.Setenv("REVAD_MAX_BLOCKS", "7")
	t.Setenv("REVAD_BLOCK_SHIFT", "5")

	cfg, err := Load(writeFile(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Arena.MaxBlocks)
	assert.Equal(t, uint(5), cfg.Arena.BlockShift)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "arena: [not, a, map]\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "arena:\n  block_shift: 40\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero_shift", func(c *Config) { c.Arena.BlockShift = 0 }},
		{"negative_blocks", func(c *Config) { c.Arena.MaxBlocks = -1 }},
		{"bad_level", func(c *Config) { c.Log.Level = "loud" }},
		{"zero_iterations", func(c *Config) { c.Bench.Iterations = 0 }},
		{"zero_dim", func(c *Config) { c.Bench.Dim = 0 }},
		{"negative_workers", func(c *Config) { c.Bench.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLogger_Level(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	log := cfg.Logger(&buf)
	log.Info("hidden")
	log.Warn("shown", "k", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestStackOptions(t *testing.T) {
	cfg := Default()
	cfg.Arena.BlockShift = 1
	cfg.Arena.MaxBlocks = 1

	var buf bytes.Buffer
	cfg.Log.Level = "debug"
	s := autodiff.NewStack(cfg.StackOptions(cfg.Logger(&buf))...)
	s.NewVar(1)
	s.NewVar(2)

	assert.Panics(t, func() { s.NewVar(3) })
	assert.Contains(t, buf.String(), "arena block acquired")
}
