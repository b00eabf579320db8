package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency.
const (
	attrMethod   = "method"
	attrEndpoint = "endpoint"
	attrStatus   = "status"
	attrService  = "service"
	attrResult   = "result"
)

// Metrics provides methods for recording observability metrics.
// A nil *Metrics is a valid no-op recorder, so callers never need to guard.
type Metrics struct {
	// iCloud web service request metrics
	apiRequestsTotal   metric.Int64Counter
	apiRequestDuration metric.Float64Histogram
	apiRetriesTotal    metric.Int64Counter

	// Authentication metrics
	authAttemptsTotal        metric.Int64Counter
	verificationAttemptTotal metric.Int64Counter

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.apiRequestsTotal, err = meter.Int64Counter(
		"icloud_api_requests_total",
		metric.WithDescription("Total number of iCloud web service requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create icloud_api_requests_total counter: %w", err)
	}

	m.apiRequestDuration, err = meter.Float64Histogram(
		"icloud_api_request_duration_seconds",
		metric.WithDescription("iCloud web service request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create icloud_api_request_duration_seconds histogram: %w", err)
	}

	m.apiRetriesTotal, err = meter.Int64Counter(
		"icloud_api_retries_total",
		metric.WithDescription("Total number of automatic retries after a transient server error"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create icloud_api_retries_total counter: %w", err)
	}

	m.authAttemptsTotal, err = meter.Int64Counter(
		"icloud_auth_attempts_total",
		metric.WithDescription("Total number of login attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create icloud_auth_attempts_total counter: %w", err)
	}

	m.verificationAttemptTotal, err = meter.Int64Counter(
		"icloud_verification_attempts_total",
		metric.WithDescription("Total number of second-factor verification attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create icloud_verification_attempts_total counter: %w", err)
	}

	return m, nil
}

// RecordAPIRequest records a completed web service request with method,
// endpoint, status code, and duration.
func (m *Metrics) RecordAPIRequest(ctx context.Context, method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil || m.apiRequestsTotal == nil || m.apiRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrEndpoint, endpoint))
	}

	m.apiRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.apiRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordRetry records an automatic retry triggered by the transient
// "try again" server status.
func (m *Metrics) RecordRetry(ctx context.Context, endpoint string) {
	if m == nil || m.apiRetriesTotal == nil {
		return // Instrumentation not initialized
	}

	var attrs []attribute.KeyValue
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrEndpoint, endpoint))
	}

	m.apiRetriesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAuthAttempt records a login attempt.
// Result should be one of: "success", "failure".
func (m *Metrics) RecordAuthAttempt(ctx context.Context, result string) {
	if m == nil || m.authAttemptsTotal == nil {
		return // Instrumentation not initialized
	}

	m.authAttemptsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordVerificationAttempt records a second-factor verification attempt.
// Result should be one of: "success", "rejected", "error".
func (m *Metrics) RecordVerificationAttempt(ctx context.Context, result string) {
	if m == nil || m.verificationAttemptTotal == nil {
		return // Instrumentation not initialized
	}

	m.verificationAttemptTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}
