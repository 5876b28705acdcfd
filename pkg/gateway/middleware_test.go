package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sluice-hq/sluice/pkg/telemetry/logging"
)

// ============================================================================
// Request ID
// ============================================================================

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetRequestID(r.Context())
	}))

	rec := doRequest(handler, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Error("no request ID in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header = %q, context = %q; want equal", got, seen)
	}
}

func TestRequestIDMiddleware_PreservesClientID(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")

	rec := doRequest(handler, req)
	if got := rec.Header().Get(RequestIDHeader); got != "client-supplied-id" {
		t.Errorf("request ID = %q, want %q", got, "client-supplied-id")
	}
}

func TestRequestIDMiddleware_UniquePerRequest(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first := doRequest(handler, httptest.NewRequest(http.MethodGet, "/", nil)).Header().Get(RequestIDHeader)
	second := doRequest(handler, httptest.NewRequest(http.MethodGet, "/", nil)).Header().Get(RequestIDHeader)

	if first == second {
		t.Errorf("two requests got the same ID %q", first)
	}
}

// ============================================================================
// Recovery
// ============================================================================

func TestRecoveryMiddleware_ConvertsPanicTo500(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := doRequest(handler, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Error.Type != "internal_error" {
		t.Errorf("error type = %q, want %q", body.Error.Type, "internal_error")
	}
	if body.Error.Message == "boom" {
		t.Error("panic value leaked into the response body")
	}
}

func TestRecoveryMiddleware_PassesThroughNormally(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := doRequest(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

// ============================================================================
// Logging response writer
// ============================================================================

func TestResponseWriter_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusInternalServerError) // second call ignored

	if rw.statusCode != http.StatusAccepted {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusAccepted)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("recorded status = %d, want %d", rec.Code, http.StatusAccepted)
	}
}

func TestResponseWriter_ImplicitOKOnWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	if _, err := rw.Write([]byte("body")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusOK)
	}
}

// ============================================================================
// Key extraction
// ============================================================================

func TestExtractKey(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		headerVal  string
		remoteAddr string
		want       string
	}{
		{"header present", "X-Api-Key", "abc", "10.0.0.1:1234", "abc"},
		{"header missing", "X-Api-Key", "", "10.0.0.1:1234", "10.0.0.1"},
		{"no header configured", "", "", "10.0.0.1:1234", "10.0.0.1"},
		{"unparseable addr", "X-Api-Key", "", "not-an-addr", "not-an-addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.headerVal != "" {
				req.Header.Set(tt.header, tt.headerVal)
			}
			if got := extractKey(req, tt.header); got != tt.want {
				t.Errorf("extractKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
