// Package loader discovers installed extensions on disk: one manifest.json
// plus module.wasm per subdirectory of an extensions root, validated and
// checksum-verified before being reported as installed.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/mangayouknow/extcore/domain"
	"github.com/mangayouknow/extcore/manifest"
)

const wasmFileName = "module.wasm"

// Loader discovers extensions under a single root directory.
type Loader struct {
	extensionsDir string
}

// New returns a Loader rooted at dir.
func New(dir string) *Loader {
	return &Loader{extensionsDir: dir}
}

// ExtensionsDirectory returns the root directory this loader scans.
func (l *Loader) ExtensionsDirectory() string {
	return l.extensionsDir
}

// DiscoverReport is the result of a full discovery pass: what loaded
// successfully, and what was skipped along with why.
type DiscoverReport struct {
	Extensions []domain.ExtensionInfo
	Skipped    map[string]error
}

// Discover scans ExtensionsDirectory for subdirectories containing a valid,
// checksum-verified extension. A subdirectory that fails any check lands in
// the returned report's Skipped map and is excluded; discovery never aborts
// on a single bad extension.
func (l *Loader) Discover() (DiscoverReport, error) {
	report := DiscoverReport{Skipped: make(map[string]error)}

	if _, err := os.Stat(l.extensionsDir); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(l.extensionsDir, 0o755); mkErr != nil {
			return report, domain.WrapLoadError("creating extensions directory", mkErr)
		}
		return report, nil
	}

	entries, err := os.ReadDir(l.extensionsDir)
	if err != nil {
		return report, domain.WrapLoadError("reading extensions directory", err)
	}

	var errs *multierror.Error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := l.loadExtensionInfo(entry.Name())
		if err != nil {
			report.Skipped[entry.Name()] = err
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", entry.Name(), err))
			continue
		}
		report.Extensions = append(report.Extensions, info)
	}

	if errs != nil {
		return report, errs.ErrorOrNil()
	}
	return report, nil
}

func (l *Loader) loadExtensionInfo(name string) (domain.ExtensionInfo, error) {
	dir := filepath.Join(l.extensionsDir, name)

	m, err := manifest.LoadFromDir(dir)
	if err != nil {
		return domain.ExtensionInfo{}, err
	}

	if err := manifest.Validate(m); err != nil {
		return domain.ExtensionInfo{}, err
	}

	wasmPath := filepath.Join(dir, wasmFileName)
	if _, err := os.Stat(wasmPath); err != nil {
		return domain.ExtensionInfo{}, domain.NewLoadError(fmt.Sprintf("%s not found in %s", wasmFileName, dir))
	}

	if err := manifest.VerifyChecksum(m, wasmPath); err != nil {
		return domain.ExtensionInfo{}, err
	}

	return domain.ExtensionInfo{
		ID:        m.Name,
		Manifest:  m,
		WasmPath:  wasmPath,
		Installed: true,
	}, nil
}

// ExtensionPath returns the directory a given extension id would live in.
func (l *Loader) ExtensionPath(id string) string {
	return filepath.Join(l.extensionsDir, id)
}

// IsInstalled reports whether id's directory holds a valid manifest and a
// module.wasm that matches the manifest's checksum.
func (l *Loader) IsInstalled(id string) bool {
	_, err := l.loadExtensionInfo(id)
	return err == nil
}
