package host

import (
	"github.com/mangayouknow/extcore/domain"
)

// ListInstalled runs discovery and returns every extension found on disk,
// whether or not it is currently loaded. Invalid extensions are logged and
// excluded, not returned as an error; callers that want the skipped reasons
// should call the loader directly.
func (h *Host) ListInstalled() ([]domain.ExtensionInfo, error) {
	report, err := h.loader.Discover()
	for name, reason := range report.Skipped {
		h.logger.Warn("skipping invalid extension", "extension", name, "reason", reason)
	}
	// An error with nothing in Skipped is a fatal discovery failure (the
	// root directory itself is unreadable); the per-extension aggregate is
	// already logged above and must not abort the listing.
	if err != nil && len(report.Skipped) == 0 {
		return nil, err
	}
	return report.Extensions, nil
}

// ListLoaded returns the ids of every extension with a compiled module
// currently registered in the runtime.
func (h *Host) ListLoaded() []string {
	return h.executor.ListLoaded()
}

// GetInfo returns the flat descriptor for a given installed extension id,
// with the Installed and Loaded flags filled in from the loader and the
// runtime registry.
func (h *Host) GetInfo(id string) (domain.ExtensionDescriptor, error) {
	infos, err := h.ListInstalled()
	if err != nil {
		return domain.ExtensionDescriptor{}, err
	}
	for _, info := range infos {
		if info.ID == id {
			desc := domain.DescriptorFromManifest(id, info.Manifest)
			desc.Installed = info.Installed
			desc.Loaded = h.executor.IsLoaded(id)
			return desc, nil
		}
	}
	return domain.ExtensionDescriptor{}, domain.NewLoadError("extension not found: " + id)
}
