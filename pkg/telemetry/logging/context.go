package logging

import "context"

type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// ClientKeyKey is the context key for the rate limit client key.
	ClientKeyKey contextKey = "client_key"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithClientKey adds the rate limit client key to the context.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ClientKeyKey, key)
}

// GetClientKey retrieves the rate limit client key from the context.
func GetClientKey(ctx context.Context) string {
	if key, ok := ctx.Value(ClientKeyKey).(string); ok {
		return key
	}
	return ""
}
