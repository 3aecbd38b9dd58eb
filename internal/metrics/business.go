package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// BusinessMetrics records gateway use case operations.
type BusinessMetrics interface {
	// RecordOperation counts one operation. domain is "token" or "arcgis",
	// operation names the use case method and status is "success" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long an operation took.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

// RemoteMetrics records the exchanges with ArcGIS servers. It satisfies the
// observer the rest client reports to.
type RemoteMetrics interface {
	// ObserveRequest records one exchange. statusCode is 0 when no response arrived.
	ObserveRequest(ctx context.Context, method, host string, statusCode int, duration time.Duration, err error)

	// ObserveBreakerState records a circuit breaker transition.
	ObserveBreakerState(name, from, to string)
}

// Breaker states as exported by the breaker state gauge.
const (
	breakerClosed   int64 = 0
	breakerHalfOpen int64 = 1
	breakerOpen     int64 = 2
)

// timedCounter is a counter and a duration histogram sharing one label set.
type timedCounter struct {
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

func newTimedCounter(meter metric.Meter, countName, durationName, unit, subject string) (timedCounter, error) {
	count, err := meter.Int64Counter(countName,
		metric.WithDescription("Total number of "+subject),
		metric.WithUnit(unit),
	)
	if err != nil {
		return timedCounter{}, fmt.Errorf("failed to create %s: %w", countName, err)
	}

	duration, err := meter.Float64Histogram(durationName,
		metric.WithDescription("Duration of "+subject+" in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return timedCounter{}, fmt.Errorf("failed to create %s: %w", durationName, err)
	}
	return timedCounter{count: count, duration: duration}, nil
}

func (t timedCounter) record(ctx context.Context, elapsed time.Duration, attrs ...attribute.KeyValue) {
	set := metric.WithAttributes(attrs...)
	t.count.Add(ctx, 1, set)
	t.duration.Record(ctx, elapsed.Seconds(), set)
}

// Recorder is the gateway's metrics sink. One Recorder serves both the use
// case decorators and the rest client.
type Recorder struct {
	operations timedCounter
	remote     timedCounter
	breaker    metric.Int64Gauge
}

// NewRecorder creates the gateway instruments on meterProvider:
//
//	<namespace>_operations_total / _operation_duration_seconds
//	<namespace>_remote_requests_total / _remote_request_duration_seconds
//	<namespace>_circuit_breaker_state
func NewRecorder(meterProvider metric.MeterProvider, namespace string) (*Recorder, error) {
	meter := meterProvider.Meter(namespace)

	operations, err := newTimedCounter(meter,
		namespace+"_operations_total",
		namespace+"_operation_duration_seconds",
		"{operation}", "gateway operations")
	if err != nil {
		return nil, err
	}

	remote, err := newTimedCounter(meter,
		namespace+"_remote_requests_total",
		namespace+"_remote_request_duration_seconds",
		"{request}", "requests sent to ArcGIS servers")
	if err != nil {
		return nil, err
	}

	breaker, err := meter.Int64Gauge(
		namespace+"_circuit_breaker_state",
		metric.WithDescription("Circuit breaker state (0 closed, 1 half-open, 2 open)"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create circuit breaker gauge: %w", err)
	}

	return &Recorder{operations: operations, remote: remote, breaker: breaker}, nil
}

// RecordOperation counts one use case operation.
func (r *Recorder) RecordOperation(ctx context.Context, domain, operation, status string) {
	r.operations.count.Add(ctx, 1, metric.WithAttributes(operationAttrs(domain, operation, status)...))
}

// RecordDuration records the duration of one use case operation.
func (r *Recorder) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	r.operations.duration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(operationAttrs(domain, operation, status)...))
}

// ObserveRequest records one ArcGIS exchange labelled by host and outcome.
func (r *Recorder) ObserveRequest(
	ctx context.Context,
	method, host string,
	statusCode int,
	duration time.Duration,
	err error,
) {
	r.remote.record(ctx, duration,
		attribute.String("method", method),
		attribute.String("host", host),
		attribute.String("status_code", strconv.Itoa(statusCode)),
		attribute.String("outcome", RemoteOutcome(err)),
	)
}

// ObserveBreakerState sets the breaker gauge to the state entered.
func (r *Recorder) ObserveBreakerState(name, from, to string) {
	r.breaker.Record(context.Background(), breakerStateValue(to),
		metric.WithAttributes(attribute.String("breaker", name)))
}

func operationAttrs(domain, operation, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	}
}

// RemoteOutcome classifies a remote exchange error for metric labels.
func RemoteOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.Is(err, context.Canceled), apperrors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case apperrors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case apperrors.Is(err, apperrors.ErrRemoteRejected):
		return "rejected"
	case apperrors.Is(err, apperrors.ErrUnreachable):
		return "unreachable"
	}
	return "error"
}

func breakerStateValue(state string) int64 {
	switch state {
	case "open":
		return breakerOpen
	case "half-open":
		return breakerHalfOpen
	}
	return breakerClosed
}

// NoOp discards everything. The container uses it when metrics are disabled.
type NoOp struct{}

func (NoOp) RecordOperation(context.Context, string, string, string)                   {}
func (NoOp) RecordDuration(context.Context, string, string, time.Duration, string)     {}
func (NoOp) ObserveRequest(context.Context, string, string, int, time.Duration, error) {}
func (NoOp) ObserveBreakerState(string, string, string)                                {}

var (
	_ BusinessMetrics = (*Recorder)(nil)
	_ RemoteMetrics   = (*Recorder)(nil)
	_ BusinessMetrics = NoOp{}
	_ RemoteMetrics   = NoOp{}
)
