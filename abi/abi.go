// Package abi defines the fixed contract between the host and an extension's
// compiled WASM guest module: import namespace, host function names, guest
// export names, and the memory-ownership conventions tying them together.
package abi

// HostModule is the import namespace every extension guest must use for host
// functions — wazero host-module builders register under this name.
const HostModule = "env"

// Host function names, imported by the guest from HostModule.
const (
	HostLog      = "host_log"
	HostHTTPGet  = "host_http_get"
	HostHTTPPost = "host_http_post"
)

// Guest export names. AllocExport and DeallocExport are mandatory for every
// extension; at least one of the Search/GetChapters/GetChapterImages triad
// must also be exported. GetLanguagesExport is optional and only meaningful
// when the manifest declares IsMultiLanguage.
const (
	AllocExport             = "alloc"
	DeallocExport           = "dealloc"
	MemoryExport            = "memory"
	SearchExport            = "extension_search"
	GetChaptersExport       = "extension_get_chapters"
	GetChapterImagesExport  = "extension_get_chapter_images"
	GetLanguagesExport      = "extension_get_languages"
)

// LogLevel is the severity a guest passes to host_log.
type LogLevel int32

const (
	LogTrace LogLevel = 0
	LogDebug LogLevel = 1
	LogInfo  LogLevel = 2
	LogWarn  LogLevel = 3
	LogError LogLevel = 4
)

// String renders the level the way host_log's slog adapter names it.
func (l LogLevel) String() string {
	switch l {
	case LogTrace:
		return "trace"
	case LogDebug:
		return "debug"
	case LogWarn:
		return "warn"
	case LogError:
		return "error"
	default:
		return "info"
	}
}

// RequiredExports are the guest exports present in every valid extension,
// independent of which domain functions it implements.
var RequiredExports = []string{AllocExport, DeallocExport, MemoryExport}

// DomainExports are the guest exports of which at least one must be present.
var DomainExports = []string{SearchExport, GetChaptersExport, GetChapterImagesExport}

// HasAnyDomainExport reports whether names contains at least one export from
// DomainExports.
func HasAnyDomainExport(names map[string]struct{}) bool {
	for _, name := range DomainExports {
		if _, ok := names[name]; ok {
			return true
		}
	}
	return false
}
