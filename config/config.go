// Package config loads the host-level configuration file that controls
// where extensions live on disk and how generous the sandbox and runtime
// are, on top of the package-level DefaultConfig() values each subsystem
// already carries.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mangayouknow/extcore/domain"
	"github.com/mangayouknow/extcore/runtime"
	"github.com/mangayouknow/extcore/sandbox"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// HostConfig is the top-level document loaded from the host's YAML
// configuration file. ExtensionsDir is required; every other field is
// optional, and zero values fall back to each subsystem's own
// DefaultConfig().
type HostConfig struct {
	ExtensionsDir string        `yaml:"extensionsDir" validate:"required"`
	Sandbox       SandboxConfig `yaml:"sandbox"`
	Runtime       RuntimeConfig `yaml:"runtime"`
}

// SandboxConfig mirrors sandbox.Config in YAML-friendly form.
type SandboxConfig struct {
	TimeoutSeconds       int   `yaml:"timeoutSeconds" validate:"omitempty,min=1"`
	MaxRedirects         int   `yaml:"maxRedirects" validate:"omitempty,min=0"`
	MaxRequestsPerSecond int   `yaml:"maxRequestsPerSecond" validate:"omitempty,min=1"`
	MaxResponseSizeBytes int64 `yaml:"maxResponseSizeBytes" validate:"omitempty,min=1"`
	AllowPrivateNetworks bool  `yaml:"allowPrivateNetworks"`
}

// RuntimeConfig mirrors runtime.Config in YAML-friendly form.
type RuntimeConfig struct {
	MemoryLimitPages uint32 `yaml:"memoryLimitPages" validate:"omitempty,min=1"`
	FuelPerCall      uint64 `yaml:"fuelPerCall" validate:"omitempty,min=1"`
}

// Load reads and parses the YAML document at path, applying defaults for
// every zero-valued subsystem field and validating the result.
func Load(path string) (HostConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return HostConfig{}, domain.WrapLoadError("reading config file", err)
	}

	var cfg HostConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return HostConfig{}, domain.WrapSerializationError("parsing config YAML", err)
	}

	applyDefaults(&cfg)

	if err := validate.Struct(cfg); err != nil {
		return HostConfig{}, domain.WrapValidationError("config validation failed", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *HostConfig) {
	sandboxDefaults := sandbox.DefaultConfig()
	if cfg.Sandbox.TimeoutSeconds == 0 {
		cfg.Sandbox.TimeoutSeconds = int(sandboxDefaults.Timeout.Seconds())
	}
	if cfg.Sandbox.MaxRedirects == 0 {
		cfg.Sandbox.MaxRedirects = sandboxDefaults.MaxRedirects
	}
	if cfg.Sandbox.MaxRequestsPerSecond == 0 {
		cfg.Sandbox.MaxRequestsPerSecond = sandboxDefaults.MaxRequestsPerSecond
	}
	if cfg.Sandbox.MaxResponseSizeBytes == 0 {
		cfg.Sandbox.MaxResponseSizeBytes = sandboxDefaults.MaxResponseSize
	}

	runtimeDefaults := runtime.DefaultConfig()
	if cfg.Runtime.MemoryLimitPages == 0 {
		cfg.Runtime.MemoryLimitPages = runtimeDefaults.MemoryLimitPages
	}
	if cfg.Runtime.FuelPerCall == 0 {
		cfg.Runtime.FuelPerCall = runtimeDefaults.FuelPerCall
	}
}

// ToSandboxConfig converts the YAML-friendly SandboxConfig into the
// sandbox package's native Config, filling in the fixed scheme blocklist
// that is not user-configurable.
func (c HostConfig) ToSandboxConfig() sandbox.Config {
	defaults := sandbox.DefaultConfig()
	return sandbox.Config{
		Timeout:              secondsToDuration(c.Sandbox.TimeoutSeconds),
		MaxRedirects:         c.Sandbox.MaxRedirects,
		MaxRequestsPerSecond: c.Sandbox.MaxRequestsPerSecond,
		MaxResponseSize:      c.Sandbox.MaxResponseSizeBytes,
		BlockedSchemes:       defaults.BlockedSchemes,
		AllowPrivateNetworks: c.Sandbox.AllowPrivateNetworks,
	}
}

// ToRuntimeConfig converts the YAML-friendly RuntimeConfig into the
// runtime package's native Config.
func (c HostConfig) ToRuntimeConfig() runtime.Config {
	return runtime.Config{
		MemoryLimitPages: c.Runtime.MemoryLimitPages,
		FuelPerCall:      c.Runtime.FuelPerCall,
	}
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
