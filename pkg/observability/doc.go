// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes observability infrastructure for the extension
// host: logrus logger setup, the Prometheus metric set covering extension
// loads, registry size, scans, and the resolution cache, and optional OTLP
// trace export for scan and load operations.
package observability
