package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/mangayouknow/extcore/abi"
	"github.com/mangayouknow/extcore/domain"
	"github.com/tetratelabs/wazero"
)

// Registry is the lifecycle registry of compiled-but-not-instantiated guest
// modules: load, is-loaded, unload, list-loaded. Instantiation happens fresh
// per call in Executor.Execute, never here — the registry only owns the
// compiled, reusable artifact.
type Registry struct {
	mu      sync.Mutex
	modules map[string]wazero.CompiledModule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]wazero.CompiledModule)}
}

// Load compiles wasmBytes, validates it exposes the required ABI exports,
// and stores it under id, evicting and closing any module previously loaded
// under the same id.
func (r *Registry) Load(ctx context.Context, rt wazero.Runtime, id string, wasmBytes []byte) error {
	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return domain.WrapRuntimeError(fmt.Sprintf("compiling %s", id), err)
	}

	if err := validateModule(compiled); err != nil {
		_ = compiled.Close(ctx)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.modules[id]; ok {
		_ = old.Close(ctx)
	}
	r.modules[id] = compiled
	return nil
}

// IsLoaded reports whether id currently has a compiled module registered.
func (r *Registry) IsLoaded(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.modules[id]
	return ok
}

// Unload removes and closes id's compiled module. Unloading an id that was
// never loaded is a no-op.
func (r *Registry) Unload(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.modules[id]; ok {
		_ = m.Close(ctx)
		delete(r.modules, id)
	}
}

// ListLoaded returns the ids of every currently-loaded module.
func (r *Registry) ListLoaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.modules))
	for id := range r.modules {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) get(id string) (wazero.CompiledModule, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[id]
	return m, ok
}

// validateModule checks that compiled exposes alloc, dealloc, memory, and at
// least one domain export (search/get_chapters/get_chapter_images).
func validateModule(compiled wazero.CompiledModule) error {
	names := make(map[string]struct{})
	for name := range compiled.ExportedFunctions() {
		names[name] = struct{}{}
	}
	memNames := compiled.ExportedMemories()

	for _, required := range []string{abi.AllocExport, abi.DeallocExport} {
		if _, ok := names[required]; !ok {
			return domain.NewValidationError(fmt.Sprintf("missing required export %q", required))
		}
	}
	if _, ok := memNames[abi.MemoryExport]; !ok {
		return domain.NewValidationError(fmt.Sprintf("missing required export %q", abi.MemoryExport))
	}
	if !abi.HasAnyDomainExport(names) {
		return domain.NewValidationError("module exports none of extension_search/extension_get_chapters/extension_get_chapter_images")
	}
	return nil
}
