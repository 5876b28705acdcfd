package limits

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sluice-hq/sluice/pkg/ratelimit"
)

// Manager coordinates per-key token buckets across named profiles.
//
// Buckets are created on first use from the profile's parameters and cached.
// All methods are safe for concurrent use.
//
// # Example
//
//	mgr := limits.NewManager(limits.Config{
//	    Profiles: map[string]limits.Profile{
//	        "standard": {Capacity: 100, Quantum: 10, FillInterval: time.Second},
//	    },
//	})
//
//	if !mgr.Allow("standard", clientIP) {
//	    // reject with 429
//	}
type Manager struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	entries  map[entryKey]*entry

	metrics *Metrics
	logger  *slog.Logger

	// Clock collaborator for idle tracking, replaced in tests.
	now func() time.Time
}

// Config contains configuration for the Manager.
type Config struct {
	// Profiles maps profile names to bucket parameters.
	Profiles map[string]Profile

	// Metrics, when non-nil, receives counters for every check and sweep.
	Metrics *Metrics
}

type entryKey struct {
	profile string
	key     string
}

type entry struct {
	bucket *ratelimit.TokenBucket

	// lastUsed is the unix-nano timestamp of the most recent operation.
	lastUsed atomic.Int64
}

// NewManager creates a manager over the given profile set.
func NewManager(cfg Config) *Manager {
	profiles := cfg.Profiles
	if profiles == nil {
		profiles = make(map[string]Profile)
	}
	return &Manager{
		profiles: profiles,
		entries:  make(map[entryKey]*entry),
		metrics:  cfg.Metrics,
		logger:   slog.Default().With("component", "limits.manager"),
		now:      time.Now,
	}
}

// Allow reports whether one token can be taken for key under the named
// profile without waiting. Unknown profiles reject.
func (m *Manager) Allow(profile, key string) bool {
	return m.AllowN(profile, key, 1)
}

// AllowN reports whether n tokens can be taken for key without waiting.
func (m *Manager) AllowN(profile, key string, n int64) bool {
	e, err := m.lookup(profile, key)
	if err != nil {
		m.record(profile, false)
		return false
	}
	ok := e.bucket.TryTake(n, 0)
	m.record(profile, ok)
	return ok
}

// Take blocks until n tokens have been reserved for key and their wait has
// elapsed. It returns false when the profile is unknown or n exceeds the
// profile's capacity.
func (m *Manager) Take(profile, key string, n int64) bool {
	e, err := m.lookup(profile, key)
	if err != nil {
		m.record(profile, false)
		return false
	}
	start := m.now()
	ok := e.bucket.Take(n)
	if ok && m.metrics != nil {
		m.metrics.ObserveWait(profile, m.now().Sub(start))
	}
	m.record(profile, ok)
	return ok
}

// TryTake reserves n tokens for key only if the required wait is at most
// maxWait, sleeping out the wait on success.
func (m *Manager) TryTake(profile, key string, n int64, maxWait time.Duration) bool {
	e, err := m.lookup(profile, key)
	if err != nil {
		m.record(profile, false)
		return false
	}
	start := m.now()
	ok := e.bucket.TryTake(n, maxWait)
	if ok && m.metrics != nil {
		m.metrics.ObserveWait(profile, m.now().Sub(start))
	}
	m.record(profile, ok)
	return ok
}

// TakeAvailable drains key's bucket without blocking and returns the number
// of tokens taken. Unknown profiles return 0.
func (m *Manager) TakeAvailable(profile, key string, n int64) int64 {
	e, err := m.lookup(profile, key)
	if err != nil {
		return 0
	}
	return e.bucket.TakeAvailable(n)
}

// Status returns a header-ready snapshot of key's bucket. Unknown profiles
// return an error. The read is non-destructive: it peeks at the level
// rather than triggering a checkpoint recomputation.
func (m *Manager) Status(profile, key string) (Status, error) {
	e, err := m.lookup(profile, key)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Profile:    profile,
		Limit:      e.bucket.Capacity(),
		Remaining:  e.bucket.Peek(),
		RetryAfter: e.bucket.FillInterval(),
	}, nil
}

// HasProfile reports whether a profile with the given name is configured.
func (m *Manager) HasProfile(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.profiles[name]
	return ok
}

// ReloadProfiles swaps the profile set. Existing buckets are untouched: a
// bucket's parameters are fixed at construction, so the new profiles apply
// only to buckets created after the swap.
func (m *Manager) ReloadProfiles(profiles map[string]Profile) {
	if profiles == nil {
		profiles = make(map[string]Profile)
	}

	m.mu.Lock()
	m.profiles = profiles
	m.mu.Unlock()

	m.logger.Info("profiles reloaded", "profiles", len(profiles))
}

// Len returns the number of live buckets.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// SweepIdle removes buckets that have not been used within ttl and returns
// the number removed. Swept keys get a fresh bucket on next use.
func (m *Manager) SweepIdle(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl).UnixNano()

	m.mu.Lock()
	var swept int
	for k, e := range m.entries {
		if e.lastUsed.Load() < cutoff {
			delete(m.entries, k)
			swept++
		}
	}
	remaining := len(m.entries)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordSweep(swept, remaining)
	}
	return swept
}

// lookup returns the entry for (profile, key), creating it on first use and
// stamping last-use time.
func (m *Manager) lookup(profile, key string) (*entry, error) {
	ek := entryKey{profile: profile, key: key}

	m.mu.RLock()
	e, ok := m.entries[ek]
	m.mu.RUnlock()

	if !ok {
		var err error
		if e, err = m.create(ek); err != nil {
			return nil, err
		}
	}

	e.lastUsed.Store(m.now().UnixNano())
	return e, nil
}

// create inserts a bucket for ek under the write lock, resolving the race
// where two callers miss the read-locked lookup for the same key.
func (m *Manager) create(ek entryKey) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[ek]; ok {
		return e, nil
	}

	p, ok := m.profiles[ek.profile]
	if !ok {
		return nil, fmt.Errorf("limits: unknown profile %q", ek.profile)
	}

	bucket, err := p.NewBucket()
	if err != nil {
		return nil, fmt.Errorf("limits: profile %q: %w", ek.profile, err)
	}

	e := &entry{bucket: bucket}
	m.entries[ek] = e
	if m.metrics != nil {
		m.metrics.SetActiveBuckets(len(m.entries))
	}

	m.logger.Debug("bucket created",
		"profile", ek.profile,
		"key", ek.key,
	)
	return e, nil
}

// record updates check metrics for one decision.
func (m *Manager) record(profile string, allowed bool) {
	if m.metrics != nil {
		m.metrics.RecordCheck(profile, allowed)
	}
}
