package limits

import (
	"time"

	"sluice-hq/sluice/pkg/ratelimit"
)

// Profile contains the bucket parameters for one named rate limit tier.
// Profiles are immutable once handed to a Manager; changing a tier means
// swapping in a new profile set.
type Profile struct {
	// Capacity is the maximum number of tokens a bucket holds (burst size).
	Capacity int64

	// Quantum is the number of tokens deposited per fill interval.
	Quantum int64

	// FillInterval is the duration of one refill tick. Must be >= 1s.
	FillInterval time.Duration
}

// NewBucket constructs a token bucket with this profile's parameters.
func (p Profile) NewBucket() (*ratelimit.TokenBucket, error) {
	return ratelimit.New(p.Capacity, p.Quantum, p.FillInterval)
}

// Status is a snapshot of one key's bucket, suitable for rate limit
// response headers.
type Status struct {
	// Profile is the name of the profile the bucket was created from.
	Profile string

	// Limit is the bucket capacity.
	Limit int64

	// Remaining is the number of tokens currently available.
	Remaining int64

	// RetryAfter is a conservative hint for rejected callers: one fill
	// interval, the longest a single-quantum request can be away.
	RetryAfter time.Duration
}
