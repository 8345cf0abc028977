package rotation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/okantomi/chorewheel/internal/model"
	"github.com/okantomi/chorewheel/internal/store"
	"github.com/okantomi/chorewheel/internal/week"
)

// Deactivator ends tenancies and occupants in the registry.
type Deactivator interface {
	DeactivateTenant(id int64) error
	DeactivateOccupant(id int64) error
}

// Vacancies handles the end of a tenancy: it deactivates the tenancy and its
// occupants and records coverage. The coverage record is audit-only: it names
// the remaining occupant nominally covering the vacated chore day and moves
// no completion records.
type Vacancies struct {
	registry      Registry
	deactivator   Deactivator
	reassignments *store.ReassignmentStore
	logger        *slog.Logger
}

func NewVacancies(registry Registry, deactivator Deactivator, reassignments *store.ReassignmentStore, logger *slog.Logger) *Vacancies {
	return &Vacancies{
		registry:      registry,
		deactivator:   deactivator,
		reassignments: reassignments,
		logger:        logger,
	}
}

// EndTenancy deactivates a tenancy and its occupants. Coverage is recorded
// for each departing occupant before any deactivation takes effect, so the
// covering candidates still include everyone active at the moment of
// departure.
func (v *Vacancies) EndTenancy(tenantID int64, now time.Time) ([]model.TemporaryReassignment, error) {
	tenant, err := v.registry.Tenant(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %d: %w", tenantID, ErrNotFound)
	}
	if !tenant.IsActive {
		return nil, fmt.Errorf("tenant %d already ended: %w", tenantID, ErrInvalidState)
	}

	occupants, err := v.registry.OccupantsByTenant(tenantID)
	if err != nil {
		return nil, err
	}

	var records []model.TemporaryReassignment
	for _, o := range occupants {
		rec, err := v.RecordTenancyEnd(o.ID, now)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
		if err := v.deactivator.DeactivateOccupant(o.ID); err != nil {
			return nil, err
		}
	}

	if err := v.deactivator.DeactivateTenant(tenantID); err != nil {
		return nil, err
	}
	return records, nil
}

// RecordTenancyEnd writes a TemporaryReassignment for a departed occupant.
// The covering occupant is the remaining active occupant of the unit with
// the nearest following chore day. If the unit has no remaining occupants,
// nothing is written.
func (v *Vacancies) RecordTenancyEnd(departedOccupantID int64, now time.Time) (*model.TemporaryReassignment, error) {
	departed, err := v.registry.Occupant(departedOccupantID)
	if err != nil {
		return nil, err
	}
	if departed == nil {
		return nil, fmt.Errorf("occupant %d: %w", departedOccupantID, ErrNotFound)
	}

	unit, err := v.registry.TenantUnit(departed.TenantID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("unit for occupant %d: %w", departedOccupantID, ErrNotFound)
	}

	remaining, err := v.registry.ActiveOccupants(unit.ID)
	if err != nil {
		return nil, err
	}

	var covering *model.Occupant
	bestGap := 8
	for i := range remaining {
		o := remaining[i]
		if o.ID == departed.ID {
			continue
		}
		gap := (o.ChoreDay - departed.ChoreDay + 7) % 7
		if gap == 0 {
			gap = 7
		}
		if gap < bestGap {
			bestGap = gap
			covering = &remaining[i]
		}
	}
	if covering == nil {
		v.logger.Info("tenancy end: no remaining occupant to cover", "occupant_id", departed.ID, "unit_id", unit.ID)
		return nil, nil
	}

	reason := fmt.Sprintf("covering for %s (tenancy ended)", departed.Name)
	return v.reassignments.Create(covering.ID, departed.ChoreDay, week.Identifier(now), reason)
}
