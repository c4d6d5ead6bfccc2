// Package manifest loads, validates, and checksum-verifies an extension's
// manifest.json, with a go-playground/validator struct-tag pass run as a
// second, defense-in-depth check after the hand-written invariants.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mangayouknow/extcore/domain"
)

// validate is a package-level singleton: validator.New() builds and caches
// struct metadata on first use, so it should be constructed once and reused
// across calls rather than per-validation.
var validate = validator.New()

const manifestFileName = "manifest.json"

// LoadFromDir reads and decodes manifest.json from dir.
func LoadFromDir(dir string) (domain.ExtensionManifest, error) {
	path := filepath.Join(dir, manifestFileName)

	if _, err := os.Stat(path); err != nil {
		return domain.ExtensionManifest{}, domain.NewLoadError(
			fmt.Sprintf("manifest.json not found in %s", dir))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ExtensionManifest{}, domain.WrapLoadError(
			fmt.Sprintf("reading %s", path), err)
	}

	var m domain.ExtensionManifest
	if err := json.Unmarshal(content, &m); err != nil {
		return domain.ExtensionManifest{}, domain.WrapSerializationError(
			fmt.Sprintf("parsing %s", path), err)
	}

	return m, nil
}

// Validate runs the manifest's hand-written invariants, then the struct-tag
// pass, in that order. The hand-written checks remain authoritative for
// error message wording — the validator pass exists to catch future field
// additions whose constraints aren't hand-coded yet, not to replace these.
func Validate(m domain.ExtensionManifest) error {
	if m.Name == "" {
		return domain.NewValidationError("name cannot be empty")
	}

	if !strings.Contains(m.Version, ".") {
		return domain.NewValidationError("version must be in semver format (e.g., 1.0.0)")
	}

	switch m.ExtensionType {
	case "manga", "anime", "comic":
	default:
		return domain.NewValidationError(fmt.Sprintf("invalid type: %s", m.ExtensionType))
	}

	if !strings.HasPrefix(m.Checksum, "sha256:") {
		return domain.NewValidationError("checksum must start with 'sha256:'")
	}
	digest := strings.TrimPrefix(m.Checksum, "sha256:")
	if digest == "" || strings.Trim(digest, "0123456789abcdef") != "" {
		return domain.NewValidationError("checksum digest must be lowercase hex")
	}

	if !m.Exports.Search && !m.Exports.GetChapters && !m.Exports.GetChapterImages {
		return domain.NewValidationError("at least one function must be exported")
	}

	if err := validate.Struct(m); err != nil {
		return domain.WrapValidationError("struct validation failed", err)
	}

	return nil
}

// VerifyChecksum compares the sha256 of wasmPath against the manifest's
// declared checksum. The comparison is case-sensitive lowercase hex:
// uppercase digests in a manifest do not match.
func VerifyChecksum(m domain.ExtensionManifest, wasmPath string) error {
	expected, ok := strings.CutPrefix(m.Checksum, "sha256:")
	if !ok {
		return domain.NewValidationError("invalid checksum format")
	}

	wasmBytes, err := os.ReadFile(wasmPath)
	if err != nil {
		return domain.WrapLoadError(fmt.Sprintf("reading %s", wasmPath), err)
	}

	sum := sha256.Sum256(wasmBytes)
	actual := hex.EncodeToString(sum[:])

	if actual != expected {
		return domain.NewValidationError(
			fmt.Sprintf("checksum mismatch: expected %s, got %s", expected, actual))
	}

	return nil
}
