// Package rotation is the chore rotation and completion engine: weekly
// schedule materialization, the completion state machine, the
// occupant-to-occupant swap protocol, and the time-driven jobs that advance
// state.
package rotation

import (
	"errors"

	"github.com/okantomi/chorewheel/internal/model"
)

var (
	// ErrNotFound marks an unknown schedule, completion, occupant, or swap id.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate pending swap request.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState marks an action on a terminal-state swap or by a party
	// not entitled to perform it.
	ErrInvalidState = errors.New("invalid state")
)

// Registry is the read-only unit/tenant/occupant collaborator. The engine
// never traverses relationships itself; all resolution goes through these
// id-based lookups.
type Registry interface {
	Units() ([]model.HousingUnit, error)
	Unit(id int64) (*model.HousingUnit, error)
	Tenant(id int64) (*model.Tenant, error)
	TenantUnit(tenantID int64) (*model.HousingUnit, error)
	Occupant(id int64) (*model.Occupant, error)
	ActiveOccupants(unitID int64) ([]model.Occupant, error)
	OccupantsByTenant(tenantID int64) ([]model.Occupant, error)
	OccupantsByChoreDay(day int) ([]model.Occupant, error)
	ActiveChores(unitID int64) ([]model.ChoreDefinition, error)
	UnitAdmins(unitID int64) ([]model.UnitAdmin, error)
}

// CompletionSummary is one line of an admin's daily report.
type CompletionSummary struct {
	OccupantName string `json:"occupant_name"`
	ChoreName    string `json:"chore_name"`
	Status       string `json:"status"`
}

// Notifier is the outbound notification collaborator. Delivery is
// at-least-once; every downstream state change is idempotent.
type Notifier interface {
	Reminder(tenantID int64, occupantName, dateLabel string) error
	SwapProposed(targetTenantID int64, requesterName, targetName, weekID string) error
	SwapResolved(requesterTenantID int64, responderName string, approved bool) error
	AdminReport(adminEmail, adminName, unitName, dateLabel string, completions []CompletionSummary) error
}
