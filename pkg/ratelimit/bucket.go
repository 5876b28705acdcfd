package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is a tick-quantized token bucket.
//
// The bucket starts empty and gains quantum tokens per fill interval, up to
// capacity. Its level is recomputed lazily on every operation from the number
// of whole intervals elapsed since construction, using the monotonic clock so
// wall-clock adjustments cannot skew accounting.
//
// # Checkpoint Replenishment
//
// adjustAvailableTokens recomputes the level as (tick - lastTick) * quantum,
// clamped to capacity, rather than adding a delta to the previous level. Two
// consequences follow and are deliberately preserved:
//
//   - Polling more often than once per interval discards fractional-tick
//     progress: a second call within the same tick sees zero accrual.
//   - A debit committed in the current tick is forgotten by the next
//     recomputation once the checkpoint advances.
//
// # Borrowing
//
// Take and TryTake commit their debit before the caller sleeps, which can
// push the level negative. The negative value represents debt against ticks
// that have not elapsed yet; it is never returned to callers, only observed
// internally between commit and recomputation.
type TokenBucket struct {
	capacity     int64
	quantum      int64
	fillInterval time.Duration

	createTime time.Time

	mu              sync.Mutex
	availableTokens int64
	lastTick        int64

	// Clock and delay collaborators, replaced in tests.
	now   func() time.Time
	sleep func(time.Duration)
}

var _ RateLimiter = (*TokenBucket)(nil)

// New creates a token bucket that holds at most capacity tokens and deposits
// quantum tokens every fillInterval.
//
// The bucket starts empty: the first tokens appear one full interval after
// construction.
//
// Example:
//
//	// 100 tokens per second, bursts up to 1000
//	tb, err := ratelimit.New(1000, 100, time.Second)
func New(capacity, quantum int64, fillInterval time.Duration) (*TokenBucket, error) {
	return newBucket(capacity, quantum, fillInterval, time.Now, time.Sleep)
}

// newBucket is the injectable-clock constructor shared by New and the tests.
func newBucket(capacity, quantum int64, fillInterval time.Duration, now func() time.Time, sleep func(time.Duration)) (*TokenBucket, error) {
	if capacity <= 0 {
		return nil, ErrCapacity
	}
	if quantum <= 0 {
		return nil, ErrQuantum
	}
	if fillInterval < MinFillInterval {
		return nil, ErrFillInterval
	}

	return &TokenBucket{
		capacity:     capacity,
		quantum:      quantum,
		fillInterval: fillInterval,
		createTime:   now(),
		now:          now,
		sleep:        sleep,
	}, nil
}

// Capacity returns the maximum number of tokens the bucket can hold.
func (tb *TokenBucket) Capacity() int64 {
	return tb.capacity
}

// Quantum returns the number of tokens deposited per fill interval.
func (tb *TokenBucket) Quantum() int64 {
	return tb.quantum
}

// FillInterval returns the duration of one refill tick.
func (tb *TokenBucket) FillInterval() time.Duration {
	return tb.fillInterval
}

// Available recomputes and returns the number of tokens currently available.
//
// The returned value is never negative: debt committed by an in-flight Take
// or TryTake is overwritten by the recomputation before the level is read.
func (tb *TokenBucket) Available() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.adjustAvailableTokens(tb.currentTick(tb.now()))
	return tb.availableTokens
}

// Peek reports the level the next operation would observe, without advancing
// the checkpoint. It exists for status reporting: unlike Available, reading
// the level through Peek does not discard tokens accrued in the current tick.
func (tb *TokenBucket) Peek() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.availableTokens >= tb.capacity {
		return tb.availableTokens
	}
	level := (tb.currentTick(tb.now()) - tb.lastTick) * tb.quantum
	if level > tb.capacity {
		level = tb.capacity
	}
	return level
}

// Take reserves count tokens and sleeps out whatever wait the reservation
// requires. It returns true once the wait has elapsed.
//
// Because the wait bound is infinite, the only failure is the permanent one:
// count exceeds capacity, in which case Take returns false immediately and
// the bucket is left untouched.
//
// The sleep happens outside the lock, so other callers can reserve tokens
// while this one waits.
func (tb *TokenBucket) Take(count int64) bool {
	tb.mu.Lock()
	wait, ok := tb.innerTake(count, tb.now(), infiniteWait)
	tb.mu.Unlock()

	if !ok {
		return false
	}
	if wait > 0 {
		tb.sleep(wait)
	}
	return true
}

// TakeAvailable drains the bucket if at least count tokens are available and
// returns the number taken: the full pre-call level, not just count. When
// fewer than count tokens are available it returns 0 and changes nothing.
// A count of zero or less returns 0 without touching the bucket.
func (tb *TokenBucket) TakeAvailable(count int64) int64 {
	if count <= 0 {
		return 0
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.adjustAvailableTokens(tb.currentTick(tb.now()))
	if tb.availableTokens < count {
		return 0
	}

	taken := tb.availableTokens
	tb.availableTokens = 0
	return taken
}

// TryTake reserves count tokens only when the required wait is at most
// maxWait. On success it sleeps out the wait and returns true. On rejection
// (count exceeds capacity, or the wait exceeds maxWait) it returns false and
// the bucket state is unmodified, with no partial debit.
//
// TryTake(n, 0) is a pure non-blocking check: it succeeds iff the tokens are
// available right now.
func (tb *TokenBucket) TryTake(count int64, maxWait time.Duration) bool {
	tb.mu.Lock()
	wait, ok := tb.innerTake(count, tb.now(), maxWait)
	tb.mu.Unlock()

	if !ok {
		return false
	}
	if wait > 0 {
		tb.sleep(wait)
	}
	return true
}

// currentTick returns the number of whole fill intervals elapsed between
// construction and now. Pure, no mutation. time.Time.Sub uses the monotonic
// reading when both times carry one.
func (tb *TokenBucket) currentTick(now time.Time) int64 {
	return int64(now.Sub(tb.createTime) / tb.fillInterval)
}

// adjustAvailableTokens recomputes the level for the given tick and advances
// the checkpoint. Caller must hold the lock and must never present a tick
// smaller than lastTick.
//
// When the bucket is already saturated only the checkpoint moves. Otherwise
// the level is overwritten with the tokens accrued since the previous
// checkpoint, clamped to capacity.
func (tb *TokenBucket) adjustAvailableTokens(tick int64) {
	lastTick := tb.lastTick
	tb.lastTick = tick

	if tb.availableTokens >= tb.capacity {
		return
	}

	tb.availableTokens = (tick - lastTick) * tb.quantum
	if tb.availableTokens > tb.capacity {
		tb.availableTokens = tb.capacity
	}
}

// innerTake is the shared decision routine for Take and TryTake. Caller must
// hold the lock.
//
// It returns the wait the caller must sleep before its reservation matures,
// and whether the reservation was committed. A zero count succeeds with zero
// wait; a count above capacity fails permanently. Otherwise the debit is
// committed iff the tokens are immediately available or the computed wait
// fits within maxWait; a rejected request leaves the level untouched.
func (tb *TokenBucket) innerTake(count int64, now time.Time, maxWait time.Duration) (time.Duration, bool) {
	if count <= 0 {
		return 0, true
	}
	if count > tb.capacity {
		return 0, false
	}

	tb.adjustAvailableTokens(tb.currentTick(now))

	newAvailable := tb.availableTokens - count
	if newAvailable > 0 {
		tb.availableTokens = newAvailable
		return 0, true
	}

	// Ceiling division: partial ticks yield no tokens, so the deficit is
	// only covered once a whole number of quanta has accrued.
	endTick := (-newAvailable + tb.quantum - 1) / tb.quantum
	expectedEnd := tb.createTime.Add(time.Duration(endTick) * tb.fillInterval)
	wait := expectedEnd.Sub(now)
	if wait < 0 {
		wait = 0
	}

	if wait <= maxWait {
		tb.availableTokens = newAvailable
		return wait, true
	}
	return 0, false
}
