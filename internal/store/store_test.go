package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okantomi/chorewheel/internal/database"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateOccupantChoreDayCollision(t *testing.T) {
	db := testDB(t)
	registry := NewRegistryStore(db)

	unit, err := registry.CreateUnit("12 Elm St")
	if err != nil {
		t.Fatalf("create unit: %v", err)
	}
	roomA, err := registry.CreateRoom(unit.ID, "Room A")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	roomB, err := registry.CreateRoom(unit.ID, "Room B")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	tenantA, err := registry.CreateTenant(roomA.ID, "A", "a@example.com")
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	tenantB, err := registry.CreateTenant(roomB.ID, "B", "b@example.com")
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	if _, err := registry.CreateOccupant(tenantA.ID, "Alice", 1); err != nil {
		t.Fatalf("create occupant: %v", err)
	}

	// Same chore day in the same unit collides, even across tenancies.
	_, err = registry.CreateOccupant(tenantB.ID, "Bob", 1)
	if !errors.Is(err, ErrChoreDayTaken) {
		t.Errorf("err = %v, want ErrChoreDayTaken", err)
	}

	// Freeing the day by deactivating the tenancy lifts the collision.
	if err := registry.DeactivateTenant(tenantA.ID); err != nil {
		t.Fatalf("deactivate tenant: %v", err)
	}
	if _, err := registry.CreateOccupant(tenantB.ID, "Bob", 1); err != nil {
		t.Errorf("create after deactivation: %v", err)
	}
}

func TestCreateOccupantChoreDayFreeAcrossUnits(t *testing.T) {
	db := testDB(t)
	registry := NewRegistryStore(db)

	for i, name := range []string{"12 Elm St", "34 Oak Ave"} {
		unit, err := registry.CreateUnit(name)
		if err != nil {
			t.Fatalf("create unit: %v", err)
		}
		room, err := registry.CreateRoom(unit.ID, "Room 1")
		if err != nil {
			t.Fatalf("create room: %v", err)
		}
		tenant, err := registry.CreateTenant(room.ID, "T", "t@example.com")
		if err != nil {
			t.Fatalf("create tenant: %v", err)
		}
		if _, err := registry.CreateOccupant(tenant.ID, "Occ", 2); err != nil {
			t.Errorf("unit %d: same chore day across units should be fine: %v", i, err)
		}
	}
}

func TestCreateScheduleDuplicateWeekFallsBack(t *testing.T) {
	db := testDB(t)
	schedules := NewScheduleStore(db)

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	first, created, err := schedules.CreateSchedule("2026-W09", weekStart, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created {
		t.Error("first create should report created")
	}

	second, created, err := schedules.CreateSchedule("2026-W09", weekStart, nil)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if created {
		t.Error("duplicate create should not report created")
	}
	if second.ID != first.ID {
		t.Errorf("expected the existing row, got %d and %d", first.ID, second.ID)
	}
}
