package limits

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor removes idle buckets from a Manager on a cron schedule.
//
// Common schedules:
//   - "@every 5m"  - every five minutes
//   - "0 * * * *"  - hourly, on the hour
//
// An empty schedule disables the janitor.
type Janitor struct {
	manager  *Manager
	schedule string
	idleTTL  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewJanitor creates a janitor that sweeps buckets unused for longer than
// idleTTL, on the given cron schedule.
func NewJanitor(manager *Manager, schedule string, idleTTL time.Duration) *Janitor {
	return &Janitor{
		manager:  manager,
		schedule: schedule,
		idleTTL:  idleTTL,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "limits.janitor"),
	}
}

// Start begins scheduled sweeping. It returns immediately; sweeps run on the
// cron goroutine until the context is cancelled or Stop is called.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.schedule == "" {
		j.logger.Info("sweep schedule not configured, janitor disabled")
		return nil
	}
	if j.idleTTL <= 0 {
		return fmt.Errorf("limits: janitor idle TTL must be > 0, got %v", j.idleTTL)
	}

	if _, err := cron.ParseStandard(j.schedule); err != nil {
		return fmt.Errorf("limits: invalid sweep schedule %q: %w", j.schedule, err)
	}

	if _, err := j.cron.AddFunc(j.schedule, j.sweep); err != nil {
		return fmt.Errorf("limits: failed to schedule sweep: %w", err)
	}

	j.cron.Start()
	j.running = true

	j.logger.Info("janitor started",
		"schedule", j.schedule,
		"idle_ttl", j.idleTTL.String(),
	)

	go func() {
		<-ctx.Done()
		j.Stop()
	}()

	return nil
}

// sweep executes one sweep cycle.
func (j *Janitor) sweep() {
	swept := j.manager.SweepIdle(j.idleTTL)
	if swept > 0 {
		j.logger.Info("idle buckets swept",
			"swept", swept,
			"remaining", j.manager.Len(),
		)
	} else {
		j.logger.Debug("sweep completed, nothing idle")
	}
}

// Stop stops the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		ctx := j.cron.Stop()
		<-ctx.Done()
		j.running = false
		j.logger.Info("janitor stopped")
	}
}

// IsRunning reports whether the janitor is scheduled.
func (j *Janitor) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
