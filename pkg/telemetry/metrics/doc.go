// Package metrics provides Prometheus metrics for the HTTP gateway.
//
// HTTPMetrics registers request counters and a duration histogram against an
// injected registry, and Middleware records them for every request passing
// through the gateway.
package metrics
