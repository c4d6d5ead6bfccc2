// Package host implements the extension subsystem's control plane: the
// concrete operations an application shell calls to discover, load, query,
// and invoke extensions.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/mangayouknow/extcore/domain"
	"github.com/mangayouknow/extcore/loader"
	"github.com/mangayouknow/extcore/runtime"
	"github.com/mangayouknow/extcore/sandbox"
	"go.opentelemetry.io/otel/metric"
)

// Host is the extension subsystem's control plane: one Loader for discovery
// and one Executor for running loaded guests, coordinated so that the
// double-load rejection is enforced here, not inside the runtime registry.
type Host struct {
	mu       sync.Mutex
	loader   *loader.Loader
	executor *runtime.Executor
	logger   *slog.Logger
}

// Option configures a Host at construction time.
type Option func(*hostOptions)

type hostOptions struct {
	logger     *slog.Logger
	sandboxCfg *sandbox.Config
	runtimeCfg *runtime.Config
	meter      metric.Meter
}

// WithLogger overrides the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *hostOptions) { o.logger = logger }
}

// WithSandboxConfig overrides the HTTP sandbox policy applied to every
// request the hosted guests make.
func WithSandboxConfig(cfg sandbox.Config) Option {
	return func(o *hostOptions) { o.sandboxCfg = &cfg }
}

// WithRuntimeConfig overrides the guest execution bounds.
func WithRuntimeConfig(cfg runtime.Config) Option {
	return func(o *hostOptions) { o.runtimeCfg = &cfg }
}

// WithMeter supplies an OpenTelemetry meter for execution metrics.
func WithMeter(meter metric.Meter) Option {
	return func(o *hostOptions) { o.meter = meter }
}

// New builds a Host rooted at extensionsDir, with its own Executor.
func New(ctx context.Context, extensionsDir string, opts ...Option) (*Host, error) {
	o := hostOptions{
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
	for _, opt := range opts {
		opt(&o)
	}

	execOpts := []runtime.Option{runtime.WithLogger(o.logger)}
	if o.sandboxCfg != nil {
		execOpts = append(execOpts, runtime.WithSandbox(sandbox.NewWithConfig(*o.sandboxCfg)))
	}
	if o.runtimeCfg != nil {
		execOpts = append(execOpts, runtime.WithConfig(*o.runtimeCfg))
	}
	if o.meter != nil {
		execOpts = append(execOpts, runtime.WithMeter(o.meter))
	}

	executor, err := runtime.NewExecutor(ctx, execOpts...)
	if err != nil {
		return nil, domain.WrapRuntimeError("constructing executor", err)
	}

	return &Host{
		loader:   loader.New(extensionsDir),
		executor: executor,
		logger:   o.logger,
	}, nil
}

// Close releases the underlying WASM engine.
func (h *Host) Close(ctx context.Context) error {
	return h.executor.Close(ctx)
}

// GetExtensionsDirectory returns the root directory extensions are discovered from.
func (h *Host) GetExtensionsDirectory() string {
	return h.loader.ExtensionsDirectory()
}

func (h *Host) requireLoaded(id string) error {
	if !h.executor.IsLoaded(id) {
		return domain.NewRuntimeError(fmt.Sprintf("extension %q is not loaded", id))
	}
	return nil
}
