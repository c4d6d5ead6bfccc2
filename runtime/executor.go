// Package runtime hosts the wazero engine, the compiled-module registry, the
// host-import bindings, and the per-call execution protocol that runs a
// single exported guest function against a fresh instantiation.
package runtime

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mangayouknow/extcore/domain"
	"github.com/mangayouknow/extcore/sandbox"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.opentelemetry.io/otel/metric"
)

// Executor owns the wazero engine and dispatches calls into loaded guest
// modules. One Executor is shared across every extension; each Execute call
// instantiates the compiled module fresh, so guests never share mutable WASM
// state across calls.
type Executor struct {
	engine   wazero.Runtime
	registry *Registry
	sandbox  *sandbox.HTTPSandbox
	logger   *slog.Logger
	config   Config
	metrics  *execMetrics
}

// Option configures an Executor at construction time.
type Option func(*executorOptions)

type executorOptions struct {
	config Config
	box    *sandbox.HTTPSandbox
	logger *slog.Logger
	meter  metric.Meter
}

// WithConfig overrides the engine's default configuration.
func WithConfig(cfg Config) Option {
	return func(o *executorOptions) { o.config = cfg }
}

// WithSandbox supplies the HTTP sandbox used to service host_http_get/post.
func WithSandbox(box *sandbox.HTTPSandbox) Option {
	return func(o *executorOptions) { o.box = box }
}

// WithLogger overrides the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *executorOptions) { o.logger = logger }
}

// WithMeter supplies an OpenTelemetry meter for execution metrics. Omitting
// it leaves metrics recording as a no-op.
func WithMeter(meter metric.Meter) Option {
	return func(o *executorOptions) { o.meter = meter }
}

// NewExecutor builds a wazero engine per Config (core spec v2 features,
// guest memory capped at MemoryLimitPages, context-driven termination for
// the fuel bound) and returns an Executor ready to Load and Execute
// extension guests.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	o := executorOptions{
		config: DefaultConfig(),
		box:    sandbox.New(),
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
	for _, opt := range opts {
		opt(&o)
	}

	runtimeConfig := wazero.NewRuntimeConfig().
		WithCoreFeatures(api.CoreFeaturesV2).
		WithMemoryLimitPages(o.config.MemoryLimitPages).
		WithCloseOnContextDone(true)

	engine := wazero.NewRuntimeWithConfig(ctx, runtimeConfig)

	metrics, err := newExecMetrics(o.meter)
	if err != nil {
		return nil, domain.WrapRuntimeError("constructing execution metrics", err)
	}

	ex := &Executor{
		engine:   engine,
		registry: NewRegistry(),
		sandbox:  o.box,
		logger:   o.logger,
		config:   o.config,
		metrics:  metrics,
	}

	if err := registerHostImports(ctx, engine, o.box, o.logger); err != nil {
		return nil, domain.WrapRuntimeError("registering host imports", err)
	}

	return ex, nil
}

// Load compiles and validates a guest module's bytes, registering it under id.
func (e *Executor) Load(ctx context.Context, id string, wasmBytes []byte) error {
	return e.registry.Load(ctx, e.engine, id, wasmBytes)
}

// IsLoaded reports whether id has a compiled module registered.
func (e *Executor) IsLoaded(id string) bool { return e.registry.IsLoaded(id) }

// Unload removes id's compiled module.
func (e *Executor) Unload(ctx context.Context, id string) { e.registry.Unload(ctx, id) }

// ListLoaded returns every currently-loaded extension id.
func (e *Executor) ListLoaded() []string { return e.registry.ListLoaded() }

// Close releases the wazero engine and every compiled module it owns.
func (e *Executor) Close(ctx context.Context) error {
	return e.engine.Close(ctx)
}

// Execute runs exportName on the guest registered under id with the given
// parameter bytes, following the per-invocation protocol: look up the
// compiled module, instantiate it fresh under the fuel deadline, locate the
// memory export, allocate and write params (if any) via the guest's own
// alloc, call the export with (ptr, len), interpret a non-zero result
// pointer as a [u32_le size][bytes] frame, read and dealloc it, dealloc the
// params buffer, and return the payload bytes.
func (e *Executor) Execute(ctx context.Context, id, exportName string, params []byte) ([]byte, error) {
	start := time.Now()

	compiled, ok := e.registry.get(id)
	if !ok {
		e.metrics.record(ctx, outcomeNotLoaded, start)
		return nil, domain.NewRuntimeError(fmt.Sprintf("extension %q is not loaded", id))
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout())
	defer cancel()

	// Anonymous instance name: concurrent calls into the same extension each
	// instantiate the shared compiled module, and wazero requires instance
	// names to be unique within the runtime. Start functions are suppressed
	// because extension guests are reactors, not commands.
	moduleConfig := wazero.NewModuleConfig().WithName("").WithStartFunctions()

	instance, err := e.engine.InstantiateModule(callCtx, compiled, moduleConfig)
	if err != nil {
		e.metrics.record(ctx, outcomeTrap, start)
		return nil, domain.WrapRuntimeError(fmt.Sprintf("instantiating %q", id), err)
	}
	defer func() { _ = instance.Close(ctx) }()

	if instance.Memory() == nil {
		e.metrics.record(ctx, outcomeTrap, start)
		return nil, domain.NewRuntimeError(fmt.Sprintf("%q does not export memory", id))
	}

	fn := instance.ExportedFunction(exportName)
	if fn == nil {
		e.metrics.record(ctx, outcomeTrap, start)
		return nil, domain.NewRuntimeError(fmt.Sprintf("export %q not found on %q", exportName, id))
	}

	var paramsPtr, paramsLen uint32
	if len(params) > 0 {
		allocFn := instance.ExportedFunction("alloc")
		if allocFn == nil {
			e.metrics.record(ctx, outcomeTrap, start)
			return nil, domain.NewRuntimeError("guest does not export alloc")
		}
		res, err := allocFn.Call(callCtx, uint64(len(params)))
		if err != nil {
			return nil, e.guestCallError(ctx, callCtx, id, "allocating guest parameter buffer", err, start)
		}
		paramsPtr = uint32(res[0])
		paramsLen = uint32(len(params))
		if !instance.Memory().Write(paramsPtr, params) {
			e.metrics.record(ctx, outcomeTrap, start)
			return nil, domain.NewRuntimeError("writing parameters to guest memory")
		}
	}

	results, callErr := fn.Call(callCtx, uint64(paramsPtr), uint64(paramsLen))

	// Deferred so the params buffer is released after the result frame.
	if paramsLen > 0 {
		defer func() {
			if deallocFn := instance.ExportedFunction("dealloc"); deallocFn != nil {
				_, _ = deallocFn.Call(callCtx, uint64(paramsPtr), uint64(paramsLen))
			}
		}()
	}

	if callErr != nil {
		return nil, e.guestCallError(ctx, callCtx, id, fmt.Sprintf("calling %q on %q", exportName, id), callErr, start)
	}

	if len(results) == 0 || results[0] == 0 {
		e.metrics.record(ctx, outcomeSuccess, start)
		return nil, nil
	}

	resultPtr := uint32(results[0])
	sizeBytes, ok := instance.Memory().Read(resultPtr, 4)
	if !ok {
		e.metrics.record(ctx, outcomeTrap, start)
		return nil, domain.NewRuntimeError("reading result length prefix")
	}
	size := binary.LittleEndian.Uint32(sizeBytes)

	resultBytes, ok := instance.Memory().Read(resultPtr+4, size)
	if !ok {
		e.metrics.record(ctx, outcomeTrap, start)
		return nil, domain.NewRuntimeError("reading result payload")
	}
	out := make([]byte, size)
	copy(out, resultBytes)

	if deallocFn := instance.ExportedFunction("dealloc"); deallocFn != nil {
		_, _ = deallocFn.Call(callCtx, uint64(resultPtr), uint64(size+4))
	}

	e.metrics.record(ctx, outcomeSuccess, start)
	return out, nil
}

// guestCallError classifies a failed guest call. A deadline hit on the call
// context while the caller's own context is still live means the fuel bound
// fired; wazero surfaces that termination as a sys.ExitError or as the
// context's own error, depending on where execution was interrupted.
func (e *Executor) guestCallError(ctx, callCtx context.Context, id, action string, err error, start time.Time) error {
	var exitErr *sys.ExitError
	fuelHit := errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil &&
		(errors.As(err, &exitErr) || errors.Is(err, context.DeadlineExceeded))
	if fuelHit {
		e.metrics.record(ctx, outcomeFuelExhausted, start)
		return domain.WrapRuntimeError(
			fmt.Sprintf("fuel budget of %d exhausted while %s on %q", e.config.FuelPerCall, action, id), err)
	}
	e.metrics.record(ctx, outcomeTrap, start)
	return domain.WrapRuntimeError(action, err)
}
