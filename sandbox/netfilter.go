package sandbox

import (
	"net"
	"strings"
)

// NetfilterResult is the outcome of validating a host for outbound access.
type NetfilterResult struct {
	Reason     string
	ResolvedIP string
	Allowed    bool
}

// NetfilterOption configures ValidateAddress.
type NetfilterOption func(*netfilterConfig)

type netfilterConfig struct {
	allowPrivate bool
}

// WithAllowPrivate permits private/loopback addresses. Used only by tests and
// explicit operator opt-in — never by the default sandbox configuration.
func WithAllowPrivate(allow bool) NetfilterOption {
	return func(c *netfilterConfig) { c.allowPrivate = allow }
}

// ValidateAddress is the SSRF gate: it resolves host (if it isn't already a
// literal IP) and rejects localhost, private, link-local, unspecified,
// broadcast, documentation, carrier-grade-NAT, and IPv6 unique-local
// addresses.
func ValidateAddress(host string, opts ...NetfilterOption) NetfilterResult {
	cfg := netfilterConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.allowPrivate {
		return NetfilterResult{Allowed: true}
	}

	lower := strings.ToLower(host)
	if lower == "localhost" || lower == "127.0.0.1" || lower == "::1" ||
		strings.HasPrefix(lower, "127.") || strings.HasPrefix(lower, "0.") {
		return NetfilterResult{Allowed: false, Reason: "access to localhost is blocked"}
	}
	if lower == "0.0.0.0" || lower == "::" || lower == "" {
		return NetfilterResult{Allowed: false, Reason: "invalid host address"}
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			// Hostname-only mode: if it doesn't resolve to a literal IP we
			// can classify, allow it — the HTTP client's own dial will fail
			// naturally if the name is bogus.
			return NetfilterResult{Allowed: true}
		}
		ip = ips[0]
	}

	if IsPrivateIP(ip) {
		return NetfilterResult{Allowed: false, Reason: "access to private IP addresses is blocked"}
	}

	return NetfilterResult{Allowed: true, ResolvedIP: ip.String()}
}

// IsPrivateIP reports whether ip must never be reachable from a sandboxed
// extension: RFC 1918 private ranges, loopback, link-local, broadcast,
// documentation ranges, unspecified, carrier-grade NAT (100.64.0.0/10) for
// IPv4; loopback, unspecified, unique-local (fc00::/7), and link-local
// (fe80::/10) for IPv6.
func IsPrivateIP(ip net.IP) bool {
	if v4 := ip.To4(); v4 != nil {
		if v4.Equal(net.IPv4bcast) {
			return true
		}
		if isDocumentationV4(v4) {
			return true
		}
		if v4[0] == 100 && v4[1]&0b11000000 == 64 {
			return true
		}
		return v4.IsPrivate() || v4.IsLoopback() || v4.IsLinkLocalUnicast() || v4.IsUnspecified()
	}

	if ip.IsLoopback() || ip.IsUnspecified() {
		return true
	}
	segments := ip.To16()
	if segments == nil {
		return false
	}
	first := uint16(segments[0])<<8 | uint16(segments[1])
	if first&0xfe00 == 0xfc00 { // unique local
		return true
	}
	if first&0xffc0 == 0xfe80 { // link-local
		return true
	}
	return false
}

func isDocumentationV4(ip net.IP) bool {
	docRanges := []string{"192.0.2.0/24", "198.51.100.0/24", "203.0.113.0/24"}
	for _, cidr := range docRanges {
		_, block, err := net.ParseCIDR(cidr)
		if err == nil && block.Contains(ip) {
			return true
		}
	}
	return false
}
