package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mangayouknow/extcore/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "extensionsDir: /var/lib/extcore/extensions\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/extcore/extensions", cfg.ExtensionsDir)
	assert.Equal(t, 30, cfg.Sandbox.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Sandbox.MaxRedirects)
	assert.Equal(t, 10, cfg.Sandbox.MaxRequestsPerSecond)
	assert.EqualValues(t, 50*1024*1024, cfg.Sandbox.MaxResponseSizeBytes)
	assert.EqualValues(t, 1024, cfg.Runtime.MemoryLimitPages)
	assert.EqualValues(t, 10_000_000, cfg.Runtime.FuelPerCall)
}

func TestLoadRespectsOverrides(t *testing.T) {
	path := writeConfig(t, `
extensionsDir: /data/extensions
sandbox:
  timeoutSeconds: 5
  maxRedirects: 1
  allowPrivateNetworks: true
runtime:
  fuelPerCall: 1000
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Sandbox.TimeoutSeconds)
	assert.Equal(t, 1, cfg.Sandbox.MaxRedirects)
	assert.True(t, cfg.Sandbox.AllowPrivateNetworks)
	assert.EqualValues(t, 1000, cfg.Runtime.FuelPerCall)
	// untouched fields still get defaults
	assert.Equal(t, 10, cfg.Sandbox.MaxRequestsPerSecond)
}

func TestLoadRejectsMissingExtensionsDir(t *testing.T) {
	path := writeConfig(t, "sandbox:\n  timeoutSeconds: 5\n")

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "extensionsDir: [unterminated\n")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestToSandboxConfigCarriesBlockedSchemes(t *testing.T) {
	path := writeConfig(t, "extensionsDir: /data/extensions\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	sc := cfg.ToSandboxConfig()
	assert.NotEmpty(t, sc.BlockedSchemes)
	assert.Equal(t, cfg.Sandbox.MaxRedirects, sc.MaxRedirects)
}

func TestToRuntimeConfig(t *testing.T) {
	path := writeConfig(t, "extensionsDir: /data/extensions\nruntime:\n  fuelPerCall: 42\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	rc := cfg.ToRuntimeConfig()
	assert.EqualValues(t, 42, rc.FuelPerCall)
}
