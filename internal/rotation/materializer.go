package rotation

import (
	"fmt"
	"time"

	"github.com/okantomi/chorewheel/internal/model"
	"github.com/okantomi/chorewheel/internal/store"
	"github.com/okantomi/chorewheel/internal/week"
)

// Materializer guarantees that schedule weeks and their completion records
// exist before anything reads them.
type Materializer struct {
	registry  Registry
	schedules *store.ScheduleStore
}

func NewMaterializer(registry Registry, schedules *store.ScheduleStore) *Materializer {
	return &Materializer{registry: registry, schedules: schedules}
}

// EnsureSchedule returns the schedule for weekID, creating it for the given
// unit if absent. When the row already exists it is returned as is — no
// completions are generated, even if the requesting unit has none for that
// week (week keys are global, not per unit). Creation bulk-inserts one
// PENDING completion per (active occupant x active chore) of the unit.
func (m *Materializer) EnsureSchedule(weekID string, weekStart time.Time, unitID int64) (*model.ScheduleWeek, error) {
	existing, err := m.schedules.ScheduleByWeekID(weekID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	chores, err := m.registry.ActiveChores(unitID)
	if err != nil {
		return nil, fmt.Errorf("load chores for unit %d: %w", unitID, err)
	}
	occupants, err := m.registry.ActiveOccupants(unitID)
	if err != nil {
		return nil, fmt.Errorf("load occupants for unit %d: %w", unitID, err)
	}

	assignments := make([]store.Assignment, 0, len(chores)*len(occupants))
	for _, o := range occupants {
		for _, c := range chores {
			assignments = append(assignments, store.Assignment{OccupantID: o.ID, ChoreID: c.ID})
		}
	}

	sched, _, err := m.schedules.CreateSchedule(weekID, weekStart, assignments)
	if err != nil {
		return nil, err
	}
	return sched, nil
}

// CurrentSchedule materializes and returns the schedule for the week
// containing now. Returns nil if the unit is unknown.
func (m *Materializer) CurrentSchedule(unitID int64, now time.Time) (*model.ScheduleWeek, error) {
	unit, err := m.registry.Unit(unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, nil
	}
	return m.EnsureSchedule(week.Identifier(now), week.Start(now), unitID)
}

// ScheduleForWeek returns the schedule with the given key. If it does not
// exist and a unit is supplied, it is materialized for that unit first.
func (m *Materializer) ScheduleForWeek(weekID string, unitID *int64, weekStart time.Time) (*model.ScheduleWeek, error) {
	sched, err := m.schedules.ScheduleByWeekID(weekID)
	if err != nil {
		return nil, err
	}
	if sched != nil {
		return sched, nil
	}
	if unitID == nil {
		return nil, nil
	}
	return m.EnsureSchedule(weekID, weekStart, *unitID)
}
