package model

import "time"

type CompletionStatus string

const (
	StatusPending   CompletionStatus = "PENDING"
	StatusCompleted CompletionStatus = "COMPLETED"
	StatusMissed    CompletionStatus = "MISSED"
)

// ScheduleWeek is the materialized chore schedule for one calendar week.
// WeekID is globally unique — not scoped per unit. The first unit to
// materialize a week owns the row; it is immutable afterwards.
type ScheduleWeek struct {
	ID        int64     `json:"id"`
	WeekID    string    `json:"week_id"`
	WeekStart time.Time `json:"week_start"`
	CreatedAt time.Time `json:"created_at"`
}

// CompletionRecord is one occupant's obligation for one chore in one week.
// Records are never deleted; they are the audit trail. Status is terminal
// once COMPLETED or MISSED.
type CompletionRecord struct {
	ID          int64            `json:"id"`
	ScheduleID  int64            `json:"schedule_id"`
	OccupantID  int64            `json:"occupant_id"`
	ChoreID     int64            `json:"chore_id"`
	Status      CompletionStatus `json:"status"`
	CompletedAt *time.Time       `json:"completed_at"`
	PhotoRefs   []string         `json:"photo_refs"`
	Notes       *string          `json:"notes"`
	CreatedAt   time.Time        `json:"created_at"`
}
