// Package ratelimit implements a tick-quantized token bucket rate limiter.
//
// # Overview
//
// A TokenBucket holds up to a fixed capacity of tokens and deposits quantum
// tokens once per fill interval. Callers drain the bucket through one of four
// request styles:
//
//   - Take: block until the requested tokens are available
//   - TryTake: block at most a caller-supplied bound, otherwise reject
//   - TakeAvailable: never block, drain whatever is there
//   - Available: observe the current level
//
// Available participates in replenishment accounting like any other
// operation; Peek reads the level without side effects for status
// reporting.
//
// # Tick Accounting
//
// Unlike refill-per-elapsed-second buckets, replenishment here is quantized
// to whole fill intervals ("ticks") counted from the bucket's construction
// time. Partial ticks never yield partial tokens. The bucket recomputes its
// level from the ticks elapsed since the last checkpoint rather than
// accumulating deltas, so frequent polling between ticks discards
// fractional-tick progress. That checkpoint policy is part of the bucket's
// contract; see TokenBucket for details.
//
// # Reservation
//
// Take and TryTake commit the debit before sleeping out the wait, letting the
// level go transiently negative. The lock is never held across a sleep, so
// concurrent callers observe reduced availability while an earlier caller is
// still waiting. No ordering is guaranteed among blocked callers.
//
// # Thread Safety
//
// All operations are safe for concurrent use. A single mutex serializes every
// read-modify-write of the bucket state.
package ratelimit
