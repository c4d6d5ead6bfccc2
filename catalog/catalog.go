// Package catalog is a named seam for a future remote extension catalog.
// Nothing in this module fetches or downloads extensions over the network
// today; Stub exists so the control plane has somewhere to grow into rather
// than requiring a breaking interface change when that lands.
package catalog

import "github.com/mangayouknow/extcore/domain"

// Entry describes a single catalog listing, the shape a real client would
// return from FetchCatalog.
type Entry struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	DownloadURL string `json:"downloadUrl"`
}

// Stub satisfies the catalog seam without performing any network I/O; every
// method returns a domain.KindRuntime error until a real client is wired in.
type Stub struct{}

// NewStub constructs a Stub.
func NewStub() *Stub {
	return &Stub{}
}

// FetchCatalog always fails: there is no remote catalog source configured.
func (s *Stub) FetchCatalog() ([]Entry, error) {
	return nil, domain.NewRuntimeError("catalog: FetchCatalog not implemented")
}

// DownloadExtension always fails: there is no remote catalog source configured.
func (s *Stub) DownloadExtension(name string) (manifestBytes, wasmBytes []byte, err error) {
	return nil, nil, domain.NewRuntimeError("catalog: DownloadExtension not implemented")
}
