package runtime

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func outcomeAttr(outcome executionOutcome) attribute.KeyValue {
	return attribute.String("outcome", string(outcome))
}

// executionOutcome labels the extcore.runtime.executions counter.
type executionOutcome string

const (
	outcomeSuccess       executionOutcome = "success"
	outcomeFuelExhausted executionOutcome = "fuel_exhausted"
	outcomeTrap          executionOutcome = "trap"
	outcomeNotLoaded     executionOutcome = "not_loaded"
)

// execMetrics bundles the counter and duration histogram around
// Executor.Execute. A nil *execMetrics is safe to use: every method
// degrades to a no-op, so an Executor built without a meter still runs.
type execMetrics struct {
	executions metric.Int64Counter
	duration   metric.Float64Histogram
}

func newExecMetrics(meter metric.Meter) (*execMetrics, error) {
	if meter == nil {
		return nil, nil
	}
	executions, err := meter.Int64Counter("extcore.runtime.executions",
		metric.WithDescription("Count of extension guest executions by outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("extcore.runtime.execution_duration_ms",
		metric.WithDescription("Wall-clock duration of extension guest executions"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &execMetrics{executions: executions, duration: duration}, nil
}

func (m *execMetrics) record(ctx context.Context, outcome executionOutcome, start time.Time) {
	if m == nil {
		return
	}
	m.executions.Add(ctx, 1, metric.WithAttributes(outcomeAttr(outcome)))
	m.duration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(outcomeAttr(outcome)))
}
