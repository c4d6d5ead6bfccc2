package loader_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mangayouknow/extcore/domain"
	"github.com/mangayouknow/extcore/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExtension(t *testing.T, root, id string, wasmBytes []byte, mutate func(*domain.ExtensionManifest)) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "module.wasm"), wasmBytes, 0o644))
	sum := sha256.Sum256(wasmBytes)

	m := domain.ExtensionManifest{
		Name:          id,
		Version:       "1.0.0",
		ExtensionType: "manga",
		Checksum:      "sha256:" + hex.EncodeToString(sum[:]),
		Exports:       domain.ExtensionExports{Search: true},
	}
	if mutate != nil {
		mutate(&m)
	}

	b, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), b, 0o644))
}

func TestDiscoverCreatesDirIfMissing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "extensions")
	l := loader.New(root)

	report, err := l.Discover()
	require.NoError(t, err)
	assert.Empty(t, report.Extensions)

	info, statErr := os.Stat(root)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestDiscoverFindsValidExtensions(t *testing.T) {
	root := t.TempDir()
	writeExtension(t, root, "good-ext", []byte("fake wasm bytes"), nil)

	l := loader.New(root)
	report, err := l.Discover()
	require.NoError(t, err)
	require.Len(t, report.Extensions, 1)
	assert.Equal(t, "good-ext", report.Extensions[0].ID)
	assert.Empty(t, report.Skipped)
}

func TestDiscoverSkipsInvalidExtensionsWithoutAborting(t *testing.T) {
	root := t.TempDir()
	writeExtension(t, root, "good-ext", []byte("fake wasm bytes"), nil)
	writeExtension(t, root, "bad-ext", []byte("fake wasm bytes"), func(m *domain.ExtensionManifest) {
		m.ExtensionType = "not-a-real-type"
	})

	l := loader.New(root)
	report, err := l.Discover()
	require.Error(t, err, "discover reports an aggregate error describing what was skipped")
	require.Len(t, report.Extensions, 1, "the valid extension is still reported")
	assert.Equal(t, "good-ext", report.Extensions[0].ID)
	assert.Contains(t, report.Skipped, "bad-ext")
}

func TestDiscoverSkipsChecksumMismatch(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "mismatched")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "module.wasm"), []byte("real bytes"), 0o644))

	m := domain.ExtensionManifest{
		Name: "mismatched", Version: "1.0.0", ExtensionType: "manga",
		Checksum: "sha256:0000000000000000000000000000000000000000000000000000000000000000",
		Exports:  domain.ExtensionExports{Search: true},
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), b, 0o644))

	l := loader.New(root)
	report, err := l.Discover()
	assert.Error(t, err)
	assert.Empty(t, report.Extensions)
	assert.Contains(t, report.Skipped, "mismatched")
}

func TestIsInstalled(t *testing.T) {
	root := t.TempDir()
	writeExtension(t, root, "good-ext", []byte("fake wasm bytes"), nil)

	l := loader.New(root)
	assert.True(t, l.IsInstalled("good-ext"))
	assert.False(t, l.IsInstalled("missing-ext"))
}

func TestExtensionPath(t *testing.T) {
	l := loader.New("/extensions")
	assert.Equal(t, "/extensions/foo", l.ExtensionPath("foo"))
}
