package ratelimit

import (
	"errors"
	"math"
	"time"
)

// RateLimiter is the capability interface satisfied by TokenBucket.
//
// Implementations must be safe for concurrent use. Counts are expressed as
// int64; a count of zero (or less) is a no-op request that always succeeds
// without consuming anything.
type RateLimiter interface {
	// Available returns the number of tokens currently available.
	Available() int64

	// Take blocks until count tokens have been reserved and their wait has
	// elapsed. It returns false only when the request can never be
	// satisfied (count exceeds capacity).
	Take(count int64) bool

	// TakeAvailable drains the bucket without blocking. It returns the
	// number of tokens actually taken, which is zero whenever fewer than
	// count tokens are available.
	TakeAvailable(count int64) int64

	// TryTake reserves count tokens only if the required wait does not
	// exceed maxWait. On rejection the bucket state is left untouched.
	TryTake(count int64, maxWait time.Duration) bool
}

// MinFillInterval is the smallest fill interval a bucket accepts. Tick
// arithmetic assumes whole-second-or-coarser intervals.
const MinFillInterval = time.Second

// infiniteWait is the wait bound used by Take: any computable wait is
// accepted.
const infiniteWait = time.Duration(math.MaxInt64)

// Construction errors returned by New.
var (
	ErrCapacity     = errors.New("ratelimit: capacity must be > 0")
	ErrQuantum      = errors.New("ratelimit: quantum must be > 0")
	ErrFillInterval = errors.New("ratelimit: fill interval must be >= 1s")
)
