// Package instrumentation provides OpenTelemetry-based metrics for the
// iCloud request layer.
//
// Metrics cover web service request counts and latencies, automatic retries
// after the transient "try again" status, and login/second-factor attempt
// outcomes. The Prometheus exporter is the default and is exposed by the
// `icloudctl watch` metrics server; a stdout exporter is available for
// debugging. A nil *Metrics recorder is valid and records nothing, so
// one-shot CLI commands skip instrumentation entirely.
package instrumentation
