package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestExampleSettingsMatchDefault(t *testing.T) {
	data, err := os.ReadFile("../../config/settings.example.yaml")
	require.NoError(t, err)

	cfg := &AppConfig{}
	require.NoError(t, yaml.Unmarshal(data, cfg))
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("settings.example.yaml drifted from Default() (-want +got):\n%s", diff)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeSettings(t, `
generator:
  chain_id: 137
  owner: Acme
checker:
  strict: true
  rpc_timeout: 3s
registry:
  driver: postgres
  dsn: host=localhost
batch:
  concurrency: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(137), cfg.Generator.ChainID)
	assert.Equal(t, "Acme", cfg.Generator.Owner)
	assert.Equal(t, ".", cfg.Generator.OutputDir)
	assert.True(t, cfg.Checker.Strict)
	assert.Equal(t, 3*time.Second, cfg.Checker.RPCTimeout)
	assert.Equal(t, "postgres", cfg.Registry.Driver)
	assert.Equal(t, 2, cfg.Batch.Concurrency)
	assert.Equal(t, "**.sol", cfg.Batch.Include)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeSettings(t, "generator:\n  chain_id: 137\n")
	t.Setenv("CLEARSIGN_GENERATOR_CHAIN_ID", "10")
	t.Setenv("CLEARSIGN_REGISTRY_DSN", "registry.db")
	t.Setenv("CLEARSIGN_CHECKER_STRICT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), cfg.Generator.ChainID)
	assert.Equal(t, "registry.db", cfg.Registry.DSN)
	assert.True(t, cfg.Checker.Strict)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeSettings(t, "generator: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse configuration file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"zero chain", func(c *AppConfig) { c.Generator.ChainID = 0 }, "chain_id"},
		{"driver", func(c *AppConfig) { c.Registry.Driver = "oracle" }, "unsupported registry driver"},
		{"concurrency", func(c *AppConfig) { c.Batch.Concurrency = 0 }, "concurrency"},
		{"glob", func(c *AppConfig) { c.Batch.Include = "[" }, "batch.include"},
		{"level", func(c *AppConfig) { c.Log.Level = "loud" }, "log.level"},
		{"timeout", func(c *AppConfig) { c.Checker.RPCTimeout = -time.Second }, "rpc_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
