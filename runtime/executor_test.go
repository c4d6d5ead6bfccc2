package runtime_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mangayouknow/extcore/domain"
	"github.com/mangayouknow/extcore/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigFuelBound(t *testing.T) {
	cfg := runtime.DefaultConfig()
	assert.EqualValues(t, 10_000_000, cfg.FuelPerCall)
	assert.Equal(t, 10*time.Second, cfg.CallTimeout(),
		"the default fuel budget must translate to a ten-second execution bound")
}

func TestNewExecutor(t *testing.T) {
	ctx := context.Background()
	e, err := runtime.NewExecutor(ctx)
	require.NoError(t, err)
	require.NotNil(t, e)
	defer func() { _ = e.Close(ctx) }()
}

// emptyWasmModule is the minimal valid WASM binary: magic number and version,
// zero sections. wazero can compile and instantiate it without any external
// toolchain, which is enough to exercise the "missing required exports"
// rejection path without a real guest.
func emptyWasmModule() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
}

func TestLoadRejectsModuleMissingRequiredExports(t *testing.T) {
	ctx := context.Background()
	e, err := runtime.NewExecutor(ctx)
	require.NoError(t, err)
	defer func() { _ = e.Close(ctx) }()

	err = e.Load(ctx, "empty", emptyWasmModule())
	require.Error(t, err)

	var extErr *domain.ExtensionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, domain.KindValidation, extErr.Kind)
	assert.False(t, e.IsLoaded("empty"))
}

func TestUnloadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e, err := runtime.NewExecutor(ctx)
	require.NoError(t, err)
	defer func() { _ = e.Close(ctx) }()

	e.Unload(ctx, "never-loaded")
	e.Unload(ctx, "never-loaded")
	assert.False(t, e.IsLoaded("never-loaded"))
}

func TestExecuteOnUnloadedExtensionFails(t *testing.T) {
	ctx := context.Background()
	e, err := runtime.NewExecutor(ctx)
	require.NoError(t, err)
	defer func() { _ = e.Close(ctx) }()

	_, err = e.Execute(ctx, "missing", "extension_search", nil)
	require.Error(t, err)
	var extErr *domain.ExtensionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, domain.KindRuntime, extErr.Kind)
}

// TestExecuteAgainstFixture exercises the full load-then-call protocol (S1)
// against a real compiled guest, when one is available under testdata/; it
// does not exercise fuel exhaustion. This repository does not build WASM fixtures
// as part of its own test run, so the test skips rather than fails when the
// fixture is absent.
func TestExecuteAgainstFixture(t *testing.T) {
	fixture := filepath.Join("testdata", "search-extension.wasm")
	wasmBytes, err := os.ReadFile(fixture)
	if err != nil {
		t.Skipf("no compiled guest fixture at %s, skipping: %v", fixture, err)
	}

	ctx := context.Background()
	e, err := runtime.NewExecutor(ctx)
	require.NoError(t, err)
	defer func() { _ = e.Close(ctx) }()

	require.NoError(t, e.Load(ctx, "search-extension", wasmBytes))
	assert.True(t, e.IsLoaded("search-extension"))

	_, err = e.Execute(ctx, "search-extension", "extension_search", nil)
	assert.NoError(t, err)
}
