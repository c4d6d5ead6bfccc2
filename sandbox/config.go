package sandbox

import "time"

// Config holds the tunables of the HTTP egress sandbox.
// AllowPrivateNetworks disables the SSRF host checks entirely and exists
// for operators testing extensions against a local mock catalog; it is
// never enabled by default.
type Config struct {
	Timeout              time.Duration
	MaxRedirects         int
	MaxRequestsPerSecond int
	MaxResponseSize      int64
	BlockedSchemes       []string
	AllowPrivateNetworks bool
}

// DefaultConfig returns the sandbox's default policy: 30s timeout, 5
// redirects, 10 requests/second, 50MiB response cap, and file/ftp/data/
// javascript schemes blocked outright.
func DefaultConfig() Config {
	return Config{
		Timeout:              30 * time.Second,
		MaxRedirects:         5,
		MaxRequestsPerSecond: 10,
		MaxResponseSize:      50 * 1024 * 1024,
		BlockedSchemes:       []string{"file", "ftp", "data", "javascript"},
	}
}

// BlockedPorts lists ports that extensions can never reach, even on an
// otherwise-allowed host — the usual non-HTTP service ports.
var BlockedPorts = map[int]struct{}{
	22:    {}, // SSH
	23:    {}, // Telnet
	25:    {}, // SMTP
	110:   {}, // POP3
	143:   {}, // IMAP
	445:   {}, // SMB
	3306:  {}, // MySQL
	5432:  {}, // PostgreSQL
	6379:  {}, // Redis
	27017: {}, // MongoDB
}
