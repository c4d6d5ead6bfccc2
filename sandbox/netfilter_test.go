package sandbox_test

import (
	"net"
	"testing"

	"github.com/mangayouknow/extcore/sandbox"
	"github.com/stretchr/testify/assert"
)

func TestIsPrivateIPv4(t *testing.T) {
	cases := []struct {
		ip      string
		private bool
	}{
		{"192.168.1.1", true},
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"127.0.0.1", true},
		{"169.254.1.1", true},
		{"255.255.255.255", true},
		{"192.0.2.1", true}, // documentation
		{"100.64.0.1", true}, // carrier-grade NAT
		{"0.0.0.0", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
	}
	for _, c := range cases {
		ip := net.ParseIP(c.ip)
		assert.Equal(t, c.private, sandbox.IsPrivateIP(ip), "ip=%s", c.ip)
	}
}

func TestIsPrivateIPv6(t *testing.T) {
	cases := []struct {
		ip      string
		private bool
	}{
		{"::1", true},
		{"::", true},
		{"fe80::1", true},    // link-local
		{"fc00::1", true},    // unique-local
		{"fd12:3456::1", true},
		{"2001:4860:4860::8888", false}, // public (google DNS)
	}
	for _, c := range cases {
		ip := net.ParseIP(c.ip)
		assert.Equal(t, c.private, sandbox.IsPrivateIP(ip), "ip=%s", c.ip)
	}
}

func TestValidateAddressBlocksLocalhost(t *testing.T) {
	for _, host := range []string{"localhost", "127.0.0.1", "::1"} {
		result := sandbox.ValidateAddress(host)
		assert.False(t, result.Allowed, "host=%s", host)
	}
}

func TestValidateAddressBlocksPrivateLiteralIP(t *testing.T) {
	result := sandbox.ValidateAddress("192.168.1.1")
	assert.False(t, result.Allowed)
}

func TestValidateAddressAllowsPublicLiteralIP(t *testing.T) {
	result := sandbox.ValidateAddress("8.8.8.8")
	assert.True(t, result.Allowed)
	assert.Equal(t, "8.8.8.8", result.ResolvedIP)
}

func TestValidateAddressAllowPrivateOverride(t *testing.T) {
	result := sandbox.ValidateAddress("127.0.0.1", sandbox.WithAllowPrivate(true))
	assert.True(t, result.Allowed)
}
