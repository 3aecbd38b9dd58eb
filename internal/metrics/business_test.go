package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// assertMetricLine checks the exposition output for a series of name whose
// labels match the partial pattern. The exporter adds scope labels, so the
// label set is matched loosely.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func newTestRecorder(t *testing.T, namespace string) (*Provider, *Recorder) {
	t.Helper()
	provider, err := NewProvider(namespace)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	recorder, err := NewRecorder(provider.MeterProvider(), namespace)
	require.NoError(t, err)
	return provider, recorder
}

func TestRecorder_Operations(t *testing.T) {
	provider, recorder := newTestRecorder(t, "gateway_ops")
	ctx := context.Background()

	recorder.RecordOperation(ctx, "arcgis", "catalog_get", "success")
	recorder.RecordOperation(ctx, "arcgis", "catalog_get", "success")
	recorder.RecordOperation(ctx, "arcgis", "gp_job_submit", "error")
	recorder.RecordOperation(ctx, "token", "token_create", "success")
	recorder.RecordDuration(ctx, "arcgis", "catalog_get", 40*time.Millisecond, "success")
	recorder.RecordDuration(ctx, "arcgis", "catalog_get", 60*time.Millisecond, "success")

	output := scrape(t, provider)

	assertMetricLine(t, output, `gateway_ops_operations_total`,
		`domain="arcgis".*operation="catalog_get".*status="success"`, `2`)
	assertMetricLine(t, output, `gateway_ops_operations_total`,
		`domain="arcgis".*operation="gp_job_submit".*status="error"`, `1`)
	assertMetricLine(t, output, `gateway_ops_operations_total`,
		`domain="token".*operation="token_create"`, `1`)
	assertMetricLine(t, output, `gateway_ops_operation_duration_seconds_count`,
		`operation="catalog_get"`, `2`)
}

func TestRecorder_RemoteRequests(t *testing.T) {
	provider, recorder := newTestRecorder(t, "gateway_remote")
	ctx := context.Background()

	recorder.ObserveRequest(ctx, http.MethodGet, "gis.example.com", http.StatusOK, 20*time.Millisecond, nil)
	recorder.ObserveRequest(ctx, http.MethodGet, "gis.example.com", http.StatusOK, 30*time.Millisecond, nil)
	recorder.ObserveRequest(ctx, http.MethodPost, "gis.example.com", 0, time.Second, apperrors.ErrUnreachable)
	recorder.ObserveBreakerState("arcgis", "closed", "open")

	output := scrape(t, provider)

	assertMetricLine(t, output, `gateway_remote_remote_requests_total`,
		`host="gis.example.com".*method="GET".*outcome="success"`, `2`)
	assertMetricLine(t, output, `gateway_remote_remote_requests_total`,
		`method="POST".*outcome="unreachable".*status_code="0"`, `1`)
	assertMetricLine(t, output, `gateway_remote_remote_request_duration_seconds_count`,
		`outcome="success"`, `2`)
	assertMetricLine(t, output, `gateway_remote_circuit_breaker_state`, `breaker="arcgis"`, `2`)

	recorder.ObserveBreakerState("arcgis", "open", "half-open")
	assertMetricLine(t, scrape(t, provider), `gateway_remote_circuit_breaker_state`, `breaker="arcgis"`, `1`)
}

func TestRemoteOutcome(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "Success", err: nil, expected: "success"},
		{name: "Canceled", err: context.Canceled, expected: "canceled"},
		{name: "DeadlineExceeded", err: context.DeadlineExceeded, expected: "canceled"},
		{name: "NotFound", err: apperrors.Wrap(apperrors.ErrNotFound, "service not found"), expected: "not_found"},
		{name: "Rejected", err: apperrors.Wrap(apperrors.ErrRemoteRejected, "Invalid token"), expected: "rejected"},
		{name: "Unreachable", err: apperrors.Wrap(apperrors.ErrUnreachable, "dial tcp"), expected: "unreachable"},
		{name: "Other", err: errors.New("boom"), expected: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemoteOutcome(tt.err))
		})
	}
}

func TestNoOp(t *testing.T) {
	var sink NoOp

	assert.NotPanics(t, func() {
		sink.RecordOperation(context.Background(), "arcgis", "query", "success")
		sink.RecordDuration(context.Background(), "arcgis", "query", time.Millisecond, "success")
		sink.ObserveRequest(context.Background(), http.MethodGet, "gis.example.com", http.StatusOK, time.Millisecond, nil)
		sink.ObserveBreakerState("arcgis", "closed", "open")
	})
}
