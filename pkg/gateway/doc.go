// Package gateway provides the HTTP front end for the rate limiter.
//
// The server wraps its routes in a middleware chain, outermost first:
//
//   - recovery: converts handler panics into 500 responses
//   - request ID: tags every request for log correlation
//   - logging: structured request completion logs
//   - rate limit: token bucket enforcement per client key
//
// The rate limit middleware extracts the client key from a configurable
// header, falling back to the client address, and answers 429 with a
// Retry-After hint when the key's bucket is empty. Health and metrics
// endpoints sit outside the rate limited chain.
package gateway
