// Package telemetry groups the observability subpackages.
//
//   - logging: structured logging via log/slog
//   - metrics: Prometheus metrics for the HTTP gateway
//
// Rate limit specific metrics live with the limits package, next to the
// code that records them.
package telemetry
