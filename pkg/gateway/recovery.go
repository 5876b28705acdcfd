package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"sluice-hq/sluice/pkg/telemetry/logging"
)

// errorResponse is the JSON body returned for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{Message: message, Type: errType},
	})
}

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a
// 500 response. The panic is logged with its stack trace; internal details
// never reach the client.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", logging.GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				writeError(w, http.StatusInternalServerError,
					"internal_error",
					"An internal error occurred. Please try again later.",
				)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
