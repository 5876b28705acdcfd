package gateway

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"sluice-hq/sluice/pkg/limits"
	"sluice-hq/sluice/pkg/telemetry/logging"
)

// RateLimitOptions configures the rate limit middleware.
type RateLimitOptions struct {
	// KeyHeader is the request header holding the client key. Requests
	// without it are keyed by client address.
	KeyHeader string

	// Profile names the limit profile applied to requests.
	Profile string
}

// RateLimitMiddleware enforces per-key token bucket limits before the
// request reaches the handler. Every response carries X-RateLimit-Limit and
// X-RateLimit-Remaining; rejections get a 429 with a Retry-After hint.
func RateLimitMiddleware(manager *limits.Manager, opts RateLimitOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractKey(r, opts.KeyHeader)
			ctx := logging.WithClientKey(r.Context(), key)
			r = r.WithContext(ctx)

			allowed := manager.Allow(opts.Profile, key)

			// Status reflects the bucket after the take, so Remaining
			// is what the next request will see.
			status, err := manager.Status(opts.Profile, key)
			if err != nil {
				slog.ErrorContext(ctx, "rate limit check failed",
					"profile", opts.Profile,
					"error", err,
				)
				writeError(w, http.StatusInternalServerError,
					"internal_error", "Rate limit check failed.")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(status.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(status.Remaining, 10))

			if !allowed {
				retryAfter := int64(math.Ceil(status.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				writeError(w, http.StatusTooManyRequests,
					"rate_limit_exceeded", "Rate limit exceeded. Please retry later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractKey returns the client key for a request: the configured header if
// present, otherwise the client address without the port.
func extractKey(r *http.Request, header string) string {
	if header != "" {
		if key := r.Header.Get(header); key != "" {
			return key
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
