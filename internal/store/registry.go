package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/okantomi/chorewheel/internal/model"
)

// ErrChoreDayTaken is returned when an occupant would collide with another
// active occupant's chore day in the same unit.
var ErrChoreDayTaken = errors.New("chore day already taken in this unit")

// RegistryStore holds the unit/room/tenant/occupant registry. The rotation
// engine consumes it read-only; the create/deactivate methods exist for
// administration and seeding.
type RegistryStore struct {
	db *sql.DB
}

func NewRegistryStore(db *sql.DB) *RegistryStore {
	return &RegistryStore{db: db}
}

// --- Units ---

func scanUnit(scanner interface{ Scan(...any) error }) (*model.HousingUnit, error) {
	var u model.HousingUnit
	if err := scanner.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *RegistryStore) CreateUnit(name string) (*model.HousingUnit, error) {
	result, err := s.db.Exec(`INSERT INTO housing_units (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert unit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Unit(id)
}

func (s *RegistryStore) Unit(id int64) (*model.HousingUnit, error) {
	row := s.db.QueryRow(`SELECT id, name, created_at FROM housing_units WHERE id = ?`, id)
	u, err := scanUnit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return u, nil
}

func (s *RegistryStore) Units() ([]model.HousingUnit, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at FROM housing_units ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []model.HousingUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

// --- Rooms ---

func (s *RegistryStore) CreateRoom(unitID int64, name string) (*model.Room, error) {
	result, err := s.db.Exec(`INSERT INTO rooms (unit_id, name) VALUES (?, ?)`, unitID, name)
	if err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &model.Room{ID: id, UnitID: unitID, Name: name}, nil
}

// --- Tenants ---

func scanTenant(scanner interface{ Scan(...any) error }) (*model.Tenant, error) {
	var t model.Tenant
	if err := scanner.Scan(&t.ID, &t.RoomID, &t.Name, &t.Email, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

const tenantCols = `id, room_id, name, email, is_active, created_at`

func (s *RegistryStore) CreateTenant(roomID int64, name, email string) (*model.Tenant, error) {
	result, err := s.db.Exec(`INSERT INTO tenants (room_id, name, email) VALUES (?, ?, ?)`, roomID, name, email)
	if err != nil {
		return nil, fmt.Errorf("insert tenant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Tenant(id)
}

func (s *RegistryStore) Tenant(id int64) (*model.Tenant, error) {
	row := s.db.QueryRow(`SELECT `+tenantCols+` FROM tenants WHERE id = ?`, id)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

// TenantUnit resolves the housing unit a tenant's room belongs to.
func (s *RegistryStore) TenantUnit(tenantID int64) (*model.HousingUnit, error) {
	row := s.db.QueryRow(
		`SELECT u.id, u.name, u.created_at
		 FROM housing_units u
		 JOIN rooms r ON r.unit_id = u.id
		 JOIN tenants t ON t.room_id = r.id
		 WHERE t.id = ?`, tenantID)
	u, err := scanUnit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tenant unit: %w", err)
	}
	return u, nil
}

func (s *RegistryStore) DeactivateTenant(id int64) error {
	_, err := s.db.Exec(`UPDATE tenants SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate tenant: %w", err)
	}
	return nil
}

// --- Occupants ---

func scanOccupant(scanner interface{ Scan(...any) error }) (*model.Occupant, error) {
	var o model.Occupant
	if err := scanner.Scan(&o.ID, &o.TenantID, &o.Name, &o.ChoreDay, &o.IsActive, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

const occupantCols = `id, tenant_id, name, chore_day, is_active, created_at`

// CreateOccupant enforces chore-day uniqueness among active occupants of
// active tenancies in the same unit. There is no persistent constraint; the
// check happens only here, at creation time.
func (s *RegistryStore) CreateOccupant(tenantID int64, name string, choreDay int) (*model.Occupant, error) {
	var taken int
	err := s.db.QueryRow(
		`SELECT COUNT(*)
		 FROM occupants o
		 JOIN tenants t ON t.id = o.tenant_id
		 JOIN rooms r ON r.id = t.room_id
		 WHERE o.chore_day = ? AND o.is_active = 1 AND t.is_active = 1
		   AND r.unit_id = (SELECT r2.unit_id FROM rooms r2 JOIN tenants t2 ON t2.room_id = r2.id WHERE t2.id = ?)`,
		choreDay, tenantID,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("check chore day: %w", err)
	}
	if taken > 0 {
		return nil, ErrChoreDayTaken
	}

	result, err := s.db.Exec(
		`INSERT INTO occupants (tenant_id, name, chore_day) VALUES (?, ?, ?)`,
		tenantID, name, choreDay,
	)
	if err != nil {
		return nil, fmt.Errorf("insert occupant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Occupant(id)
}

func (s *RegistryStore) Occupant(id int64) (*model.Occupant, error) {
	row := s.db.QueryRow(`SELECT `+occupantCols+` FROM occupants WHERE id = ?`, id)
	o, err := scanOccupant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get occupant: %w", err)
	}
	return o, nil
}

func (s *RegistryStore) DeactivateOccupant(id int64) error {
	_, err := s.db.Exec(`UPDATE occupants SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate occupant: %w", err)
	}
	return nil
}

func (s *RegistryStore) scanOccupants(rows *sql.Rows) ([]model.Occupant, error) {
	defer rows.Close()
	var occupants []model.Occupant
	for rows.Next() {
		o, err := scanOccupant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occupant: %w", err)
		}
		occupants = append(occupants, *o)
	}
	return occupants, rows.Err()
}

// ActiveOccupants returns active occupants of active tenancies in a unit,
// ordered by name.
func (s *RegistryStore) ActiveOccupants(unitID int64) ([]model.Occupant, error) {
	rows, err := s.db.Query(
		`SELECT o.id, o.tenant_id, o.name, o.chore_day, o.is_active, o.created_at
		 FROM occupants o
		 JOIN tenants t ON t.id = o.tenant_id
		 JOIN rooms r ON r.id = t.room_id
		 WHERE r.unit_id = ? AND o.is_active = 1 AND t.is_active = 1
		 ORDER BY o.name ASC`, unitID)
	if err != nil {
		return nil, fmt.Errorf("list active occupants: %w", err)
	}
	return s.scanOccupants(rows)
}

// OccupantsByTenant returns a tenant's active occupants. An inactive tenancy
// yields none.
func (s *RegistryStore) OccupantsByTenant(tenantID int64) ([]model.Occupant, error) {
	rows, err := s.db.Query(
		`SELECT o.id, o.tenant_id, o.name, o.chore_day, o.is_active, o.created_at
		 FROM occupants o
		 JOIN tenants t ON t.id = o.tenant_id
		 WHERE o.tenant_id = ? AND o.is_active = 1 AND t.is_active = 1
		 ORDER BY o.name ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list occupants by tenant: %w", err)
	}
	return s.scanOccupants(rows)
}

// OccupantsByChoreDay returns every active occupant (of an active tenancy,
// across all units) whose chore day is the given weekday.
func (s *RegistryStore) OccupantsByChoreDay(day int) ([]model.Occupant, error) {
	rows, err := s.db.Query(
		`SELECT o.id, o.tenant_id, o.name, o.chore_day, o.is_active, o.created_at
		 FROM occupants o
		 JOIN tenants t ON t.id = o.tenant_id
		 WHERE o.chore_day = ? AND o.is_active = 1 AND t.is_active = 1
		 ORDER BY o.name ASC`, day)
	if err != nil {
		return nil, fmt.Errorf("list occupants by chore day: %w", err)
	}
	return s.scanOccupants(rows)
}

// --- Chore definitions ---

func scanChoreDef(scanner interface{ Scan(...any) error }) (*model.ChoreDefinition, error) {
	var c model.ChoreDefinition
	if err := scanner.Scan(&c.ID, &c.UnitID, &c.Name, &c.SortOrder, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

const choreDefCols = `id, unit_id, name, sort_order, is_active, created_at`

func (s *RegistryStore) CreateChore(unitID int64, name string, sortOrder int) (*model.ChoreDefinition, error) {
	result, err := s.db.Exec(
		`INSERT INTO chore_definitions (unit_id, name, sort_order) VALUES (?, ?, ?)`,
		unitID, name, sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+choreDefCols+` FROM chore_definitions WHERE id = ?`, id)
	return scanChoreDef(row)
}

func (s *RegistryStore) DeactivateChore(id int64) error {
	_, err := s.db.Exec(`UPDATE chore_definitions SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate chore: %w", err)
	}
	return nil
}

// ActiveChores returns a unit's active chore definitions in sort order.
func (s *RegistryStore) ActiveChores(unitID int64) ([]model.ChoreDefinition, error) {
	rows, err := s.db.Query(
		`SELECT `+choreDefCols+` FROM chore_definitions
		 WHERE unit_id = ? AND is_active = 1
		 ORDER BY sort_order ASC, name ASC`, unitID)
	if err != nil {
		return nil, fmt.Errorf("list active chores: %w", err)
	}
	defer rows.Close()

	var chores []model.ChoreDefinition
	for rows.Next() {
		c, err := scanChoreDef(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// --- Unit admins ---

func (s *RegistryStore) CreateAdmin(unitID int64, name, email string) (*model.UnitAdmin, error) {
	result, err := s.db.Exec(`INSERT INTO unit_admins (unit_id, name, email) VALUES (?, ?, ?)`, unitID, name, email)
	if err != nil {
		return nil, fmt.Errorf("insert admin: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &model.UnitAdmin{ID: id, UnitID: unitID, Name: name, Email: email}, nil
}

func (s *RegistryStore) UnitAdmins(unitID int64) ([]model.UnitAdmin, error) {
	rows, err := s.db.Query(`SELECT id, unit_id, name, email FROM unit_admins WHERE unit_id = ? ORDER BY name ASC`, unitID)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []model.UnitAdmin
	for rows.Next() {
		var a model.UnitAdmin
		if err := rows.Scan(&a.ID, &a.UnitID, &a.Name, &a.Email); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}
