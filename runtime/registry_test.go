package runtime

import (
	"context"
	"testing"

	"github.com/mangayouknow/extcore/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

func emptyWasmModuleBytes() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
}

func newTestRuntime(ctx context.Context, t *testing.T) wazero.Runtime {
	t.Helper()
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCoreFeatures(api.CoreFeaturesV2).WithCloseOnContextDone(true))
	t.Cleanup(func() { _ = rt.Close(ctx) })
	return rt
}

func TestRegistryLoadRejectsMissingExports(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(ctx, t)
	r := NewRegistry()

	err := r.Load(ctx, rt, "empty", emptyWasmModuleBytes())
	require.Error(t, err)

	var extErr *domain.ExtensionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, domain.KindValidation, extErr.Kind)
	assert.False(t, r.IsLoaded("empty"))
}

func TestRegistryIsLoadedFalseForUnknownID(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.IsLoaded("nothing"))
}

func TestRegistryUnloadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.Unload(ctx, "never-loaded")
	r.Unload(ctx, "never-loaded")
	assert.False(t, r.IsLoaded("never-loaded"))
}

func TestRegistryListLoadedEmpty(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.ListLoaded())
}

func TestRegistryGetUnknownID(t *testing.T) {
	r := NewRegistry()
	_, ok := r.get("missing")
	assert.False(t, ok)
}

func TestValidateModuleRejectsMissingMemory(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(ctx, t)

	compiled, err := rt.CompileModule(ctx, emptyWasmModuleBytes())
	require.NoError(t, err)
	defer compiled.Close(ctx)

	err = validateModule(compiled)
	require.Error(t, err)
	var extErr *domain.ExtensionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, domain.KindValidation, extErr.Kind)
}
