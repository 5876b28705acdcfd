package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sluice-hq/sluice/pkg/config"
	"sluice-hq/sluice/pkg/limits"
)

// newTestServer builds a server with a single "standard" profile that
// accrues 100 tokens per second up to 1000.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	registry := prometheus.NewRegistry()
	manager := limits.NewManager(limits.Config{
		Profiles: cfg.Limits.ProfileSet(),
		Metrics:  limits.NewMetrics(registry),
	})

	return NewServer(cfg, manager, registry)
}

func doRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// Rate limiting
// ============================================================================

func TestServer_FreshKeyIsRejected(t *testing.T) {
	handler := newTestServer(t).Handler()

	// Buckets start empty, so the first request finds no tokens.
	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	req.Header.Set("X-Api-Key", "client-a")

	rec := doRequest(handler, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	if got := rec.Header().Get("X-RateLimit-Limit"); got != "1000" {
		t.Errorf("X-RateLimit-Limit = %q, want %q", got, "1000")
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want %q", got, "0")
	}
	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil || retryAfter < 1 {
		t.Errorf("Retry-After = %q, want integer >= 1", rec.Header().Get("Retry-After"))
	}

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Error.Type != "rate_limit_exceeded" {
		t.Errorf("error type = %q, want %q", body.Error.Type, "rate_limit_exceeded")
	}
}

func TestServer_AllowsAfterAccrual(t *testing.T) {
	handler := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	req.Header.Set("X-Api-Key", "client-b")

	// First request creates the (empty) bucket.
	if rec := doRequest(handler, req); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("first request status = %d, want 429", rec.Code)
	}

	// One fill interval later a quantum of tokens has accrued.
	time.Sleep(1100 * time.Millisecond)

	rec := doRequest(handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("second request status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var status statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if status.Profile != "standard" {
		t.Errorf("profile = %q, want %q", status.Profile, "standard")
	}
	if status.Key != "client-b" {
		t.Errorf("key = %q, want %q", status.Key, "client-b")
	}
	if status.Limit != 1000 {
		t.Errorf("limit = %d, want 1000", status.Limit)
	}
	// The admitting check advanced the bucket's checkpoint to the current
	// tick, so the reported level shows no accrual until the next tick.
	if status.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", status.Remaining)
	}
}

func TestServer_FallsBackToClientAddress(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	// No key header: the key is the request's host address.
	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)

	if rec := doRequest(handler, req); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	// The bucket was created under the client IP, not the empty string.
	if _, err := srv.manager.Status("standard", "192.0.2.1"); err != nil {
		t.Errorf("no bucket under client address: %v", err)
	}
}

// ============================================================================
// Unprotected endpoints
// ============================================================================

func TestServer_HealthBypassesRateLimit(t *testing.T) {
	handler := newTestServer(t).Handler()

	for i := 0; i < 10; i++ {
		rec := doRequest(handler, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	// Generate one rejected check so a counter exists.
	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	req.Header.Set("X-Api-Key", "client-m")
	doRequest(handler, req)

	rec := doRequest(handler, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "sluice_limits_checks_total") {
		t.Errorf("metrics output missing sluice_limits_checks_total:\n%s", body)
	}
	if !strings.Contains(body, "sluice_http_requests_total") {
		t.Errorf("metrics output missing sluice_http_requests_total:\n%s", body)
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	srv := newTestServer(t)
	srv.config.Telemetry.Metrics.Disabled = true
	handler := srv.Handler()

	rec := doRequest(handler, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	// Falls through to the rate limited tree, where an empty bucket rejects.
	if rec.Code == http.StatusOK {
		t.Errorf("metrics served despite being disabled (status %d)", rec.Code)
	}
}
