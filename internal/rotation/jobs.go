package rotation

import (
	"log/slog"
	"time"

	"github.com/okantomi/chorewheel/internal/store"
	"github.com/okantomi/chorewheel/internal/week"
)

// swapExpiryAge is how long a swap proposal may sit unanswered.
const swapExpiryAge = 7 * 24 * time.Hour

// Jobs are the time-driven routines that advance completion and swap state.
// Each is a pure function of (now, storage state), idempotent on re-run, and
// isolates per-unit failures so one unit never blocks the rest. The caller
// (scheduler or test) supplies the clock.
type Jobs struct {
	registry     Registry
	materializer *Materializer
	schedules    *store.ScheduleStore
	swaps        *store.SwapStore
	notifier     Notifier
	logger       *slog.Logger
}

func NewJobs(registry Registry, materializer *Materializer, schedules *store.ScheduleStore, swaps *store.SwapStore, notifier Notifier, logger *slog.Logger) *Jobs {
	return &Jobs{
		registry:     registry,
		materializer: materializer,
		schedules:    schedules,
		swaps:        swaps,
		notifier:     notifier,
		logger:       logger,
	}
}

// RegenerateSchedules materializes next week's schedule for every unit,
// sequentially. A failing unit is logged and skipped. Re-running hits the
// already-exists branch of EnsureSchedule.
func (j *Jobs) RegenerateSchedules(now time.Time) {
	units, err := j.registry.Units()
	if err != nil {
		j.logger.Error("regeneration: list units", "error", err)
		return
	}

	target := now.AddDate(0, 0, 7)
	weekID := week.Identifier(target)
	weekStart := week.Start(target)

	for _, unit := range units {
		if _, err := j.materializer.EnsureSchedule(weekID, weekStart, unit.ID); err != nil {
			j.logger.Error("regeneration: unit skipped", "unit_id", unit.ID, "week_id", weekID, "error", err)
			continue
		}
	}
}

// SweepMissed flips PENDING completions to MISSED for occupants whose chore
// day is today, in weeks that have already started. Completions due on a
// later day of the week are untouched.
func (j *Jobs) SweepMissed(now time.Time) (int64, error) {
	day := int(now.Weekday())
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	n, err := j.schedules.SweepMissed(day, startOfToday)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.logger.Info("missed sweep", "flipped", n, "chore_day", day)
	}
	return n, nil
}

// ExpireSwaps flips every PENDING swap older than seven days to EXPIRED.
func (j *Jobs) ExpireSwaps(now time.Time) (int64, error) {
	n, err := j.swaps.ExpireOlderThan(now.Add(-swapExpiryAge))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.logger.Info("swap expiry", "expired", n)
	}
	return n, nil
}

// SendReminders emits a chore reminder to every occupant whose chore day is
// today. Delivery failure for one occupant never blocks the others.
func (j *Jobs) SendReminders(now time.Time) {
	occupants, err := j.registry.OccupantsByChoreDay(int(now.Weekday()))
	if err != nil {
		j.logger.Error("reminders: list occupants", "error", err)
		return
	}

	dateLabel := now.Format("Monday, January 2")
	for _, o := range occupants {
		if err := j.notifier.Reminder(o.TenantID, o.Name, dateLabel); err != nil {
			j.logger.Warn("reminder skipped", "occupant_id", o.ID, "error", err)
		}
	}
}

// SendAdminReports emits one report per unit administrator summarizing
// today's completions. Reports go to each administrator individually; a
// failed delivery or a failing unit is logged and skipped. Run after
// SweepMissed so the day's missed chores are reflected.
func (j *Jobs) SendAdminReports(now time.Time) {
	units, err := j.registry.Units()
	if err != nil {
		j.logger.Error("admin reports: list units", "error", err)
		return
	}

	sched, err := j.schedules.ScheduleByWeekID(week.Identifier(now))
	if err != nil {
		j.logger.Error("admin reports: load schedule", "error", err)
		return
	}
	if sched == nil {
		return
	}

	today := int(now.Weekday())
	dateLabel := now.Format("Monday, January 2")

	for _, unit := range units {
		occupants, err := j.registry.ActiveOccupants(unit.ID)
		if err != nil {
			j.logger.Error("admin reports: unit skipped", "unit_id", unit.ID, "error", err)
			continue
		}
		var dueIDs []int64
		for _, o := range occupants {
			if o.ChoreDay == today {
				dueIDs = append(dueIDs, o.ID)
			}
		}
		if len(dueIDs) == 0 {
			continue
		}

		details, err := j.schedules.CompletionsDetailed(sched.ID, dueIDs)
		if err != nil {
			j.logger.Error("admin reports: unit skipped", "unit_id", unit.ID, "error", err)
			continue
		}
		summaries := make([]CompletionSummary, len(details))
		for i, d := range details {
			summaries[i] = CompletionSummary{
				OccupantName: d.OccupantName,
				ChoreName:    d.ChoreName,
				Status:       string(d.Status),
			}
		}

		admins, err := j.registry.UnitAdmins(unit.ID)
		if err != nil {
			j.logger.Error("admin reports: unit skipped", "unit_id", unit.ID, "error", err)
			continue
		}
		for _, admin := range admins {
			if err := j.notifier.AdminReport(admin.Email, admin.Name, unit.Name, dateLabel, summaries); err != nil {
				j.logger.Warn("admin report skipped", "admin_id", admin.ID, "error", err)
			}
		}
	}
}
