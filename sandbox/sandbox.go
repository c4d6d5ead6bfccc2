// Package sandbox implements the HTTP egress sandbox every extension's
// outbound request is routed through: scheme/host/IP/port vetting, a
// token-bucket rate limiter, and a response-size cap.
package sandbox

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mangayouknow/extcore/domain"
)

// HTTPSandbox is a sandboxed HTTP client enforcing the egress policy above.
type HTTPSandbox struct {
	client          *http.Client
	rateLimiter     *rateLimiter
	blockedSchemes  map[string]struct{}
	maxResponseSize int64
	allowPrivate    bool
}

// New builds a sandbox with DefaultConfig.
func New() *HTTPSandbox {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig builds a sandbox with an explicit configuration.
func NewWithConfig(cfg Config) *HTTPSandbox {
	blocked := make(map[string]struct{}, len(cfg.BlockedSchemes))
	for _, s := range cfg.BlockedSchemes {
		blocked[s] = struct{}{}
	}

	s := &HTTPSandbox{
		rateLimiter:     newRateLimiter(cfg.MaxRequestsPerSecond),
		blockedSchemes:  blocked,
		maxResponseSize: cfg.MaxResponseSize,
		allowPrivate:    cfg.AllowPrivateNetworks,
	}

	transport := &dnsPinningTransport{
		base: &http.Transport{
			ForceAttemptHTTP2:     true,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
		allowPrivate: cfg.AllowPrivateNetworks,
	}

	s.client = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		// Redirect targets go through the same egress policy as the first
		// URL: a 3xx pointing at a blocked scheme, host, or port fails here,
		// before a second request is dispatched.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
			}
			return s.validateURL(req.URL)
		},
	}

	return s
}

// Get performs a sandboxed GET request, returning the response body.
func (s *HTTPSandbox) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return s.validateAndRequest(ctx, rawURL, http.MethodGet, nil)
}

// Post performs a sandboxed POST request with body, returning the response body.
func (s *HTTPSandbox) Post(ctx context.Context, rawURL string, body []byte) ([]byte, error) {
	return s.validateAndRequest(ctx, rawURL, http.MethodPost, body)
}

// IsURLAllowed reports whether rawURL would pass the egress policy, without
// performing a request or consuming a rate-limit token.
func (s *HTTPSandbox) IsURLAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return s.validateURL(u) == nil
}

// ResetRateLimiter restores a full token bucket — useful for tests.
func (s *HTTPSandbox) ResetRateLimiter() {
	s.rateLimiter.reset()
}

func (s *HTTPSandbox) validateAndRequest(ctx context.Context, rawURL, method string, body []byte) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, domain.NewHTTPError("Invalid URL: " + err.Error())
	}

	if err := s.validateURL(u); err != nil {
		return nil, err
	}

	if err := s.rateLimiter.check(); err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, domain.WrapHTTPError("building request", err)
	}
	req.Header.Set("User-Agent", "MangaYouKnow/1.0")
	req.Header.Set("Accept", "*/*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.WrapHTTPError("Request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, domain.NewHTTPError("HTTP error: " + resp.Status)
	}

	if resp.ContentLength > 0 && resp.ContentLength > s.maxResponseSize {
		return nil, domain.NewHTTPError(fmt.Sprintf(
			"Response too large: %d bytes (max %d)", resp.ContentLength, s.maxResponseSize))
	}

	limited := io.LimitReader(resp.Body, s.maxResponseSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, domain.WrapHTTPError("Failed to read response", err)
	}
	if int64(len(data)) > s.maxResponseSize {
		return nil, domain.NewHTTPError(fmt.Sprintf(
			"Response too large: body exceeds %d bytes", s.maxResponseSize))
	}

	return data, nil
}

// validateURL runs the egress policy in order: scheme blocklist, scheme
// allowlist (http/https only), host checks via ValidateAddress, then the
// port blocklist.
func (s *HTTPSandbox) validateURL(u *url.URL) error {
	scheme := u.Scheme
	if _, blocked := s.blockedSchemes[scheme]; blocked {
		return domain.NewHTTPError("Blocked scheme: " + scheme)
	}
	if scheme != "http" && scheme != "https" {
		return domain.NewHTTPError("Only HTTP and HTTPS are allowed, got: " + scheme)
	}

	host := u.Hostname()
	if host == "" {
		return domain.NewHTTPError("URL must have a host")
	}
	result := ValidateAddress(host, WithAllowPrivate(s.allowPrivate))
	if !result.Allowed {
		return domain.NewHTTPError(result.Reason)
	}

	if portStr := u.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err == nil {
			if _, blocked := BlockedPorts[port]; blocked {
				return domain.NewHTTPError("Access to port " + portStr + " is blocked")
			}
		}
	}

	return nil
}

// dnsPinningTransport resolves each request's hostname once via
// ValidateAddress and dials the resolved IP directly, closing the DNS
// rebinding window between validation and connection.
type dnsPinningTransport struct {
	base         *http.Transport
	allowPrivate bool
}

func (t *dnsPinningTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	hostname := req.URL.Hostname()
	result := ValidateAddress(hostname, WithAllowPrivate(t.allowPrivate))
	if !result.Allowed {
		return nil, domain.NewHTTPError(result.Reason)
	}

	resolvedIP := result.ResolvedIP
	if resolvedIP == "" {
		resolvedIP = hostname
	}

	port := req.URL.Port()
	if port == "" {
		if req.URL.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	pinned := t.base.Clone()
	pinned.DialContext = func(ctx context.Context, network, _ string) (net.Conn, error) {
		return (&net.Dialer{}).DialContext(ctx, network, net.JoinHostPort(resolvedIP, port))
	}
	if req.URL.Scheme == "https" {
		if pinned.TLSClientConfig == nil {
			pinned.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		pinned.TLSClientConfig.ServerName = hostname
	}

	return pinned.RoundTrip(req)
}
