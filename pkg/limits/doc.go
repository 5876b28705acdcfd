// Package limits manages named rate limit profiles applied to many keys.
//
// # Overview
//
// A Profile is an immutable set of token bucket parameters (capacity,
// quantum, fill interval) loaded from configuration. The Manager lazily
// creates one bucket per (profile, key) pair, where a key is typically an
// API key or client address, and exposes the bucket operations keyed that
// way:
//
//	mgr := limits.NewManager(limits.Config{Profiles: profiles})
//	if mgr.Allow("standard", clientIP) {
//	    // admit request
//	}
//
// # Profile Reload
//
// The profile set can be swapped at runtime (for example from a config file
// watcher). A swap only affects buckets created afterwards; live buckets keep
// the parameters they were constructed with, since bucket parameters are
// fixed for a bucket's lifetime.
//
// # Expiry
//
// Buckets for idle keys are removed by the Janitor, which runs on a cron
// schedule and drops entries that have not been touched within the configured
// TTL. A swept key simply gets a fresh bucket on its next request.
package limits
