package loader_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mangayouknow/extcore/loader"
	"github.com/stretchr/testify/require"
)

func TestWatcherSignalsOnNewSubdirectory(t *testing.T) {
	root := t.TempDir()

	w, err := loader.NewWatcher(root)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "new-ext"), 0o755))

	select {
	case <-w.Rescan:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a rescan signal after creating a subdirectory")
	}
}
