package rotation

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okantomi/chorewheel/internal/database"
	"github.com/okantomi/chorewheel/internal/model"
	"github.com/okantomi/chorewheel/internal/store"
)

// monday is the reference clock for the engine tests: Monday 2026-03-02.
var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	db            *sql.DB
	registry      *store.RegistryStore
	schedules     *store.ScheduleStore
	swapStore     *store.SwapStore
	reassignments *store.ReassignmentStore
	notifier      *fakeNotifier

	materializer *Materializer
	tracker      *Tracker
	swaps        *SwapService
	jobs         *Jobs
	vacancies    *Vacancies

	unit     *model.HousingUnit
	aliceTen *model.Tenant
	bobTen   *model.Tenant
	alice    *model.Occupant // chore day Monday
	bob      *model.Occupant // chore day Wednesday
	kitchen  *model.ChoreDefinition
	bathroom *model.ChoreDefinition
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:            db,
		registry:      store.NewRegistryStore(db),
		schedules:     store.NewScheduleStore(db),
		swapStore:     store.NewSwapStore(db),
		reassignments: store.NewReassignmentStore(db),
		notifier:      newFakeNotifier(),
	}

	logger := slog.Default()
	f.materializer = NewMaterializer(f.registry, f.schedules)
	f.tracker = NewTracker(f.registry, f.schedules, f.materializer)
	f.swaps = NewSwapService(f.registry, f.schedules, f.swapStore, f.notifier, logger)
	f.jobs = NewJobs(f.registry, f.materializer, f.schedules, f.swapStore, f.notifier, logger)
	f.vacancies = NewVacancies(f.registry, f.registry, f.reassignments, logger)

	f.seedHousehold(t)
	return f
}

// seedHousehold creates one unit with two tenancies: Alice (chore day Monday)
// and Bob (chore day Wednesday), and two chores.
func (f *fixture) seedHousehold(t *testing.T) {
	t.Helper()

	unit, err := f.registry.CreateUnit("12 Elm St")
	if err != nil {
		t.Fatalf("create unit: %v", err)
	}
	f.unit = unit

	roomA, err := f.registry.CreateRoom(unit.ID, "Room A")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	roomB, err := f.registry.CreateRoom(unit.ID, "Room B")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	f.aliceTen, err = f.registry.CreateTenant(roomA.ID, "Alice Tenancy", "alice@example.com")
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	f.bobTen, err = f.registry.CreateTenant(roomB.ID, "Bob Tenancy", "bob@example.com")
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	f.alice, err = f.registry.CreateOccupant(f.aliceTen.ID, "Alice", int(time.Monday))
	if err != nil {
		t.Fatalf("create occupant: %v", err)
	}
	f.bob, err = f.registry.CreateOccupant(f.bobTen.ID, "Bob", int(time.Wednesday))
	if err != nil {
		t.Fatalf("create occupant: %v", err)
	}

	f.kitchen, err = f.registry.CreateChore(unit.ID, "Kitchen", 1)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	f.bathroom, err = f.registry.CreateChore(unit.ID, "Bathroom", 2)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
}

// materialize creates the schedule for the week containing monday.
func (f *fixture) materialize(t *testing.T) *model.ScheduleWeek {
	t.Helper()
	sched, err := f.materializer.CurrentSchedule(f.unit.ID, monday)
	if err != nil {
		t.Fatalf("materialize schedule: %v", err)
	}
	if sched == nil {
		t.Fatal("expected a schedule")
	}
	return sched
}

// completionFor finds the completion record for an (occupant, chore) pair.
func (f *fixture) completionFor(t *testing.T, scheduleID, occupantID, choreID int64) *model.CompletionRecord {
	t.Helper()
	completions, err := f.schedules.CompletionsBySchedule(scheduleID)
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	for i := range completions {
		if completions[i].OccupantID == occupantID && completions[i].ChoreID == choreID {
			return &completions[i]
		}
	}
	t.Fatalf("no completion for occupant %d chore %d", occupantID, choreID)
	return nil
}

// --- fake notifier ---

type reminderCall struct {
	TenantID     int64
	OccupantName string
}

type reportCall struct {
	AdminEmail  string
	UnitName    string
	Completions []CompletionSummary
}

// fakeNotifier records calls and can be told to fail for specific tenants or
// admin emails.
type fakeNotifier struct {
	mu            sync.Mutex
	reminders     []reminderCall
	proposals     []int64 // target tenant ids
	resolutions   []bool  // approved flags
	reports       []reportCall
	failTenants   map[int64]bool
	failAdminMail map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		failTenants:   make(map[int64]bool),
		failAdminMail: make(map[string]bool),
	}
}

var errDeliveryFailed = errors.New("delivery failed")

func (n *fakeNotifier) Reminder(tenantID int64, occupantName, dateLabel string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failTenants[tenantID] {
		return errDeliveryFailed
	}
	n.reminders = append(n.reminders, reminderCall{TenantID: tenantID, OccupantName: occupantName})
	return nil
}

func (n *fakeNotifier) SwapProposed(targetTenantID int64, requesterName, targetName, weekID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failTenants[targetTenantID] {
		return errDeliveryFailed
	}
	n.proposals = append(n.proposals, targetTenantID)
	return nil
}

func (n *fakeNotifier) SwapResolved(requesterTenantID int64, responderName string, approved bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failTenants[requesterTenantID] {
		return errDeliveryFailed
	}
	n.resolutions = append(n.resolutions, approved)
	return nil
}

func (n *fakeNotifier) AdminReport(adminEmail, adminName, unitName, dateLabel string, completions []CompletionSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failAdminMail[adminEmail] {
		return errDeliveryFailed
	}
	n.reports = append(n.reports, reportCall{AdminEmail: adminEmail, UnitName: unitName, Completions: completions})
	return nil
}
