package host

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mangayouknow/extcore/domain"
	"github.com/mangayouknow/extcore/manifest"
)

// Load verifies id's module.wasm against its manifest checksum, then
// compiles and registers it. Loading an id that is
// already loaded is rejected — the control plane, not the runtime registry,
// enforces this; the registry itself overwrites silently.
func (h *Host) Load(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadLocked(ctx, id)
}

func (h *Host) loadLocked(ctx context.Context, id string) error {
	if h.executor.IsLoaded(id) {
		return domain.NewRuntimeError(fmt.Sprintf("extension %q is already loaded", id))
	}

	dir := h.loader.ExtensionPath(id)
	m, err := manifest.LoadFromDir(dir)
	if err != nil {
		return err
	}
	wasmPath := filepath.Join(dir, "module.wasm")
	if err := manifest.VerifyChecksum(m, wasmPath); err != nil {
		return err
	}
	wasmBytes, err := os.ReadFile(wasmPath)
	if err != nil {
		return domain.WrapLoadError("reading "+wasmPath, err)
	}

	if err := h.executor.Load(ctx, id, wasmBytes); err != nil {
		return err
	}
	h.logger.Info("loaded extension", "extension", id)
	return nil
}

// Unload removes id's compiled module. Idempotent: unloading an id that was
// never loaded is a no-op.
func (h *Host) Unload(ctx context.Context, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.executor.Unload(ctx, id)
	h.logger.Info("unloaded extension", "extension", id)
}

// Reload unloads then loads id under the host mutex, so no concurrent Load,
// Unload, Reload, or Uninstall interleaves with it. Queries and extension
// calls do not take that mutex and can see id unloaded in between. If the
// load half fails, the id stays unloaded.
func (h *Host) Reload(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.executor.Unload(ctx, id)
	return h.loadLocked(ctx, id)
}

// InstallFromFile validates manifestBytes and wasmBytes against each other,
// then copies them into a new directory under the extensions root named
// after the manifest's declared name.
func (h *Host) InstallFromFile(manifestBytes, wasmBytes []byte) error {
	var m domain.ExtensionManifest
	if err := decodeManifestJSON(manifestBytes, &m); err != nil {
		return err
	}
	if err := manifest.Validate(m); err != nil {
		return err
	}

	sum := sha256.Sum256(wasmBytes)
	expected, _ := trimChecksumPrefix(m.Checksum)
	if hex.EncodeToString(sum[:]) != expected {
		return domain.NewValidationError("checksum mismatch during install")
	}

	dir := h.loader.ExtensionPath(m.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.WrapLoadError("creating extension directory", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "module.wasm"), wasmBytes, 0o644); err != nil {
		return domain.WrapLoadError("writing module.wasm", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), manifestBytes, 0o644); err != nil {
		return domain.WrapLoadError("writing manifest.json", err)
	}
	return nil
}

// Uninstall unloads id if loaded, then removes its directory from disk.
func (h *Host) Uninstall(ctx context.Context, id string) error {
	h.Unload(ctx, id)
	dir := h.loader.ExtensionPath(id)
	if err := os.RemoveAll(dir); err != nil {
		return domain.WrapLoadError("removing "+dir, err)
	}
	return nil
}

func decodeManifestJSON(b []byte, m *domain.ExtensionManifest) error {
	if err := json.Unmarshal(b, m); err != nil {
		return domain.WrapSerializationError("parsing manifest.json", err)
	}
	return nil
}

func trimChecksumPrefix(checksum string) (string, bool) {
	const prefix = "sha256:"
	if len(checksum) < len(prefix) || checksum[:len(prefix)] != prefix {
		return "", false
	}
	return checksum[len(prefix):], true
}
