package expiry

import (
	"context"
	"fmt"
	"time"

	"docnotify/internal/config"
)

// Scheduler owns the single timer that drives expiration cycles: an optional
// warm-up catch-up run shortly after startup, then the next occurrence of
// the configured local trigger hour, then a fixed 24h cadence from the last
// run so execution time never accumulates drift.
type Scheduler struct {
	runner      Runner
	clock       Clock
	loc         *time.Location
	triggerHour int
	runOnStart  bool
	warmup      time.Duration
}

// NewScheduler validates the scheduling configuration and builds a
// Scheduler. Invalid settings fail fast here, before any cycle runs.
func NewScheduler(runner Runner, clock Clock, cfg config.SchedulerConfig) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("scheduler: runner is required")
	}
	if cfg.TriggerHour < 0 || cfg.TriggerHour > 23 {
		return nil, fmt.Errorf("scheduler: trigger hour %d out of range [0,23]", cfg.TriggerHour)
	}
	if cfg.WarmupSeconds < 0 {
		return nil, fmt.Errorf("scheduler: warmup seconds must not be negative")
	}
	loc := time.Local
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("scheduler: invalid timezone %q: %w", cfg.Timezone, err)
		}
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Scheduler{
		runner:      runner,
		clock:       clock,
		loc:         loc,
		triggerHour: cfg.TriggerHour,
		runOnStart:  cfg.RunOnStart,
		warmup:      time.Duration(cfg.WarmupSeconds) * time.Second,
	}, nil
}

// Location returns the location used for calendar-day arithmetic.
func (s *Scheduler) Location() *time.Location { return s.loc }

// nextTrigger returns the next occurrence of the trigger hour strictly after
// now, in the given location. If today's trigger hour has already passed
// (or is exactly now), tomorrow's is returned.
func nextTrigger(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	t := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !t.After(local) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// Start launches the scheduling loop in a goroutine. The loop stops when ctx
// is cancelled; it never stops on its own.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	if s.runOnStart {
		// Catch-up run after a short warm-up so dependent services can
		// finish initializing.
		if !s.sleep(ctx, s.warmup) {
			return
		}
		logEvent(s.loc, "info", "catchup_run_start", nil)
		s.safeRun(ctx)
	}

	next := nextTrigger(s.clock.Now(), s.triggerHour, s.loc)
	logEvent(s.loc, "info", "next_run_scheduled", map[string]any{
		"next_trigger": next.Format(time.RFC3339),
	})
	if !s.sleep(ctx, next.Sub(s.clock.Now())) {
		return
	}

	for {
		s.safeRun(ctx)
		// Fixed cadence from the end of the last run, not a wall-clock
		// recomputation.
		if !s.sleep(ctx, 24*time.Hour) {
			return
		}
	}
}

// safeRun executes one cycle; RunNow already isolates all per-offset and
// per-recipient failures and recovers panics, so nothing here can prevent
// the next tick.
func (s *Scheduler) safeRun(ctx context.Context) {
	if _, err := s.runner.RunNow(ctx); err != nil {
		logEvent(s.loc, "error", "cycle_failed", map[string]any{"error_message": err.Error()})
	}
}

// sleep parks until d elapses or ctx is cancelled. Returns false on cancel.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d < 0 {
		d = 0
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// RunNow executes one cycle immediately, sharing the Runner (and therefore
// the dedup guard) with the scheduled loop. Running it after the automatic
// run on the same day creates zero new notifications.
func (s *Scheduler) RunNow(ctx context.Context) (*Summary, error) {
	return s.runner.RunNow(ctx)
}
