package model

import "time"

// ChoreDefinition is a recurring task scoped to a housing unit. Definitions
// are soft-deactivated rather than deleted while completion records still
// reference them.
type ChoreDefinition struct {
	ID        int64     `json:"id"`
	UnitID    int64     `json:"unit_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
