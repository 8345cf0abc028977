package model

import "time"

type SwapStatus string

const (
	SwapPending   SwapStatus = "PENDING"
	SwapApproved  SwapStatus = "APPROVED"
	SwapRejected  SwapStatus = "REJECTED"
	SwapCancelled SwapStatus = "CANCELLED"
	SwapExpired   SwapStatus = "EXPIRED"
)

// SwapRequest is a proposal by one occupant to trade their entire week's
// chore assignments with another occupant. PENDING is the only non-terminal
// state. At most one PENDING request exists per (requester, target, schedule).
type SwapRequest struct {
	ID                  int64      `json:"id"`
	RequesterOccupantID int64      `json:"requester_occupant_id"`
	TargetOccupantID    int64      `json:"target_occupant_id"`
	ScheduleID          int64      `json:"schedule_id"`
	Reason              *string    `json:"reason"`
	Status              SwapStatus `json:"status"`
	RespondedAt         *time.Time `json:"responded_at"`
	CreatedAt           time.Time  `json:"created_at"`
}

// TemporaryReassignment is an audit record written when a tenancy ends.
// OccupantID is the remaining occupant nominally covering the vacated day.
// It does not move any completion records.
type TemporaryReassignment struct {
	ID          int64     `json:"id"`
	OccupantID  int64     `json:"occupant_id"`
	OriginalDay int       `json:"original_day"`
	WeekID      string    `json:"week_id"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}
