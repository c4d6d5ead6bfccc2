package runtime

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mangayouknow/extcore/abi"
	"github.com/mangayouknow/extcore/sandbox"
	"github.com/mangayouknow/extcore/wireformat"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// registerHostImports binds host_log, host_http_get, and host_http_post
// under the abi.HostModule ("env") namespace. Host functions never trap:
// host_log silently drops malformed input, and the HTTP imports return 0 on
// any failure (invalid input, sandbox policy rejection, transport error).
// Guests must treat 0 as "the call failed" and learn nothing more.
func registerHostImports(ctx context.Context, rt wazero.Runtime, box *sandbox.HTTPSandbox, logger *slog.Logger) error {
	builder := rt.NewHostModuleBuilder(abi.HostModule)

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, level int32, ptr, length uint32) {
			hostLog(m, level, ptr, length, logger)
		}).
		Export(abi.HostLog)

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, urlPtr, urlLen uint32) uint32 {
			return dispatchHTTP(ctx, m, box, logger, "GET", urlPtr, urlLen, 0, 0)
		}).
		Export(abi.HostHTTPGet)

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, urlPtr, urlLen, bodyPtr, bodyLen uint32) uint32 {
			return dispatchHTTP(ctx, m, box, logger, "POST", urlPtr, urlLen, bodyPtr, bodyLen)
		}).
		Export(abi.HostHTTPPost)

	_, err := builder.Instantiate(ctx)
	return err
}

func hostLog(m api.Module, level int32, ptr, length uint32, logger *slog.Logger) {
	msg, ok := m.Memory().Read(ptr, length)
	if !ok || !utf8.Valid(msg) {
		return
	}
	lvl := abi.LogLevel(level)
	switch lvl {
	case abi.LogTrace, abi.LogDebug:
		logger.Debug(string(msg), "level", lvl.String())
	case abi.LogWarn:
		logger.Warn(string(msg), "level", lvl.String())
	case abi.LogError:
		logger.Error(string(msg), "level", lvl.String())
	default:
		logger.Info(string(msg), "level", lvl.String())
	}
}

// httpResult is the payload carried back across the dispatch channel.
type httpResult struct {
	body []byte
	err  error
}

// dispatchHTTP reads the URL (and, for POST, the body) from guest memory,
// runs the sandboxed request on its own goroutine, and blocks on a buffered
// channel of size 1 for the result. The calling goroutine is pinned inside
// synchronous guest execution, so the request must run somewhere else; the
// one-shot channel bounds a guest call to one in-flight request and gives a
// single cancellation point.
func dispatchHTTP(ctx context.Context, m api.Module, box *sandbox.HTTPSandbox, logger *slog.Logger, method string, urlPtr, urlLen, bodyPtr, bodyLen uint32) uint32 {
	rawURL, ok := m.Memory().Read(urlPtr, urlLen)
	if !ok {
		return 0
	}

	var body []byte
	if bodyLen > 0 {
		b, ok := m.Memory().Read(bodyPtr, bodyLen)
		if !ok {
			return 0
		}
		body = b
	}

	correlationID := uuid.NewString()
	logger.Debug("dispatching guest HTTP call", "correlation_id", correlationID, "method", method)

	resultCh := make(chan httpResult, 1)
	go func() {
		if method == "POST" {
			b, err := box.Post(ctx, string(rawURL), body)
			resultCh <- httpResult{body: b, err: err}
			return
		}
		b, err := box.Get(ctx, string(rawURL))
		resultCh <- httpResult{body: b, err: err}
	}()

	var result httpResult
	select {
	case result = <-resultCh:
	case <-ctx.Done():
		return 0
	}

	if result.err != nil {
		logger.Debug("guest HTTP call failed", "correlation_id", correlationID, "error", result.err)
		return 0
	}

	framed := wireformat.Frame(result.body)

	allocFn := m.ExportedFunction(abi.AllocExport)
	if allocFn == nil {
		return 0
	}
	res, err := allocFn.Call(ctx, uint64(len(framed)))
	if err != nil || len(res) == 0 {
		return 0
	}
	ptr := uint32(res[0])
	if !m.Memory().Write(ptr, framed) {
		return 0
	}
	return ptr
}
