// Package scheduler runs the time-driven jobs on a ticker loop.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/okantomi/chorewheel/internal/rotation"
)

const tickInterval = 15 * time.Minute

// Job cadence. Daily jobs fire once a calendar day after their earliest
// hour; weekly jobs fire on Sunday.
const (
	reminderHour   = 8  // morning reminders
	sweepHour      = 20 // evening missed-chore sweep
	reportHour     = 20 // admin reports, after the sweep
	regenerateHour = 18 // Sunday evening, next week's schedules
)

// Scheduler fires rotation jobs at their due times. Last-run marks are
// in-memory only; a restart may re-fire a job, which is safe because
// every job is idempotent for a given day.
type Scheduler struct {
	jobs   *rotation.Jobs
	logger *slog.Logger

	mu       sync.Mutex
	lastRuns map[string]time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func New(jobs *rotation.Jobs, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		logger:   logger,
		lastRuns: make(map[string]time.Time),
	}
}

// Start launches the ticker loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		s.runDue(time.Now())
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.runDue(now)
			}
		}
	}()
}

// Stop halts the ticker loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// runDue checks each job's cadence against now and runs whatever is due.
func (s *Scheduler) runDue(now time.Time) {
	if s.due("reminders", now, reminderHour, false) {
		s.jobs.SendReminders(now)
		s.mark("reminders", now)
	}

	if s.due("sweep", now, sweepHour, false) {
		if n, err := s.jobs.SweepMissed(now); err != nil {
			s.logger.Error("missed-chore sweep", "error", err)
		} else if n > 0 {
			s.logger.Info("missed-chore sweep", "marked", n)
		}
		s.mark("sweep", now)
	}

	if s.due("reports", now, reportHour, false) {
		s.jobs.SendAdminReports(now)
		s.mark("reports", now)
	}

	if s.due("regenerate", now, regenerateHour, true) {
		s.jobs.RegenerateSchedules(now)
		if n, err := s.jobs.ExpireSwaps(now); err != nil {
			s.logger.Error("swap expiry", "error", err)
		} else if n > 0 {
			s.logger.Info("swap expiry", "expired", n)
		}
		s.mark("regenerate", now)
	}
}

// due reports whether the named job should run: the local hour has been
// reached, it has not run yet today, and for weekly jobs it is Sunday.
func (s *Scheduler) due(name string, now time.Time, hour int, weekly bool) bool {
	if now.Hour() < hour {
		return false
	}
	if weekly && now.Weekday() != time.Sunday {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastRuns[name]
	if !ok {
		return true
	}
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	return ly != ny || lm != nm || ld != nd
}

func (s *Scheduler) mark(name string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRuns[name] = now
}
