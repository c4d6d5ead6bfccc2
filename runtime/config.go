package runtime

import "time"

// Config bounds a guest's execution. FuelPerCall is the per-invocation fuel
// budget; wazero meters neither instructions nor fuel natively, so the
// budget is converted to a wall-clock bound at fuelUnitsPerMillisecond and
// enforced through context cancellation, which the engine honors via
// WithCloseOnContextDone. Host-call time (a guest's own HTTP requests)
// counts against the same bound. MemoryLimitPages caps the guest's linear
// memory in 64KiB WASM pages.
type Config struct {
	MemoryLimitPages uint32
	FuelPerCall      uint64
}

// fuelUnitsPerMillisecond is the conversion rate between fuel units and
// wall-clock time. The default budget of 10,000,000 units works out to a
// ten-second bound per guest call.
const fuelUnitsPerMillisecond = 1000

// DefaultConfig returns the runtime's default execution bounds: a
// 10,000,000-unit fuel budget and 1024 pages (64MiB) of guest memory.
func DefaultConfig() Config {
	return Config{
		MemoryLimitPages: 1024,
		FuelPerCall:      10_000_000,
	}
}

// CallTimeout is FuelPerCall expressed as the wall-clock deadline applied to
// a single guest invocation.
func (c Config) CallTimeout() time.Duration {
	return time.Duration(c.FuelPerCall/fuelUnitsPerMillisecond) * time.Millisecond
}
