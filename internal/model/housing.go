package model

import "time"

type HousingUnit struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Room struct {
	ID     int64  `json:"id"`
	UnitID int64  `json:"unit_id"`
	Name   string `json:"name"`
}

// Tenant is a tenancy: a person renting a room in a housing unit.
type Tenant struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"room_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Occupant is a person living under a tenancy who takes part in the chore
// rotation. ChoreDay is the day of week (0=Sunday) their chores are due;
// within one unit, active occupants of active tenancies hold distinct days.
type Occupant struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	Name      string    `json:"name"`
	ChoreDay  int       `json:"chore_day"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type UnitAdmin struct {
	ID     int64  `json:"id"`
	UnitID int64  `json:"unit_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
