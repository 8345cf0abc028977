package rotation

import (
	"fmt"
	"math"
	"time"

	"github.com/okantomi/chorewheel/internal/model"
	"github.com/okantomi/chorewheel/internal/store"
	"github.com/okantomi/chorewheel/internal/week"
)

// Tracker records proof of completed chores and answers read queries over
// completion records.
type Tracker struct {
	registry     Registry
	schedules    *store.ScheduleStore
	materializer *Materializer
}

func NewTracker(registry Registry, schedules *store.ScheduleStore, materializer *Materializer) *Tracker {
	return &Tracker{registry: registry, schedules: schedules, materializer: materializer}
}

// CompleteOptions carries optional proof attached when completing a chore.
// A nil PhotoRefs or Notes means "leave whatever is stored".
type CompleteOptions struct {
	PhotoRefs []string
	Notes     *string
}

// MarkComplete flips a completion to COMPLETED and stamps completedAt.
// Completing an already-COMPLETED record is allowed and refreshes the stamp
// and attachments; it is not an error. A MISSED record is terminal: late
// completion is rejected rather than rewriting the missed audit trail.
func (t *Tracker) MarkComplete(completionID int64, opts CompleteOptions, now time.Time) (*model.CompletionRecord, error) {
	existing, err := t.schedules.Completion(completionID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("completion %d: %w", completionID, ErrNotFound)
	}
	if existing.Status == model.StatusMissed {
		return nil, fmt.Errorf("completion %d is %s: %w", completionID, existing.Status, ErrInvalidState)
	}

	if err := t.schedules.MarkCompleted(completionID, now, opts.PhotoRefs, opts.Notes); err != nil {
		return nil, err
	}
	return t.schedules.Completion(completionID)
}

// Stats aggregates every completion record ever created for an occupant.
type Stats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Missed         int `json:"missed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completion_rate"`
}

func (t *Tracker) Stats(occupantID int64) (*Stats, error) {
	occ, err := t.registry.Occupant(occupantID)
	if err != nil {
		return nil, err
	}
	if occ == nil {
		return nil, fmt.Errorf("occupant %d: %w", occupantID, ErrNotFound)
	}

	total, completed, missed, pending, err := t.schedules.OccupantStats(occupantID)
	if err != nil {
		return nil, err
	}

	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return &Stats{
		Total:          total,
		Completed:      completed,
		Missed:         missed,
		Pending:        pending,
		CompletionRate: rate,
	}, nil
}

// TodaysChores is the answer to "what is due today" for one tenancy.
type TodaysChores struct {
	IsChoreDay bool                     `json:"is_chore_day"`
	Occupants  []model.Occupant         `json:"occupants"`
	Chores     []store.CompletionDetail `json:"chores"`
}

// TodaysChores returns the completion records due today for the tenant's
// occupants. When no occupant of the tenant has a chore today it returns
// IsChoreDay=false without touching any schedule, so idle polls never
// materialize weeks.
func (t *Tracker) TodaysChores(tenantID int64, now time.Time) (*TodaysChores, error) {
	tenant, err := t.registry.Tenant(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %d: %w", tenantID, ErrNotFound)
	}

	occupants, err := t.registry.OccupantsByTenant(tenantID)
	if err != nil {
		return nil, err
	}

	today := int(now.Weekday())
	var due []model.Occupant
	for _, o := range occupants {
		if o.ChoreDay == today {
			due = append(due, o)
		}
	}
	if len(due) == 0 {
		return &TodaysChores{Occupants: []model.Occupant{}, Chores: []store.CompletionDetail{}}, nil
	}

	unit, err := t.registry.TenantUnit(tenantID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("unit for tenant %d: %w", tenantID, ErrNotFound)
	}

	sched, err := t.materializer.EnsureSchedule(week.Identifier(now), week.Start(now), unit.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(due))
	for i, o := range due {
		ids[i] = o.ID
	}
	details, err := t.schedules.CompletionsDetailed(sched.ID, ids)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = []store.CompletionDetail{}
	}

	return &TodaysChores{IsChoreDay: true, Occupants: due, Chores: details}, nil
}
