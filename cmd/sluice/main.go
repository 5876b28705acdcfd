// Sluice is a token bucket rate limiting gateway.
//
// It fronts HTTP traffic with per-key token buckets: tokens accrue at a
// fixed interval up to a capacity, and requests spend them. Clients that
// run out of tokens receive 429 responses with a Retry-After hint.
//
// Usage:
//
//	# Start the gateway with default configuration
//	sluice run
//
//	# Start with a custom configuration file
//	sluice run --config /etc/sluice/config.yaml
//
//	# Validate a configuration file
//	sluice validate
//
//	# Show version information
//	sluice version
//
//	# Drive load against a running gateway
//	sluice bench --target http://localhost:8080/v1/status --rate 50
package main

func main() {
	Execute()
}
