package rotation

import (
	"errors"
	"testing"
	"time"

	"github.com/okantomi/chorewheel/internal/model"
	"github.com/okantomi/chorewheel/internal/week"
)

func TestMarkComplete(t *testing.T) {
	f := newFixture(t)
	sched := f.materialize(t)
	pending := f.completionFor(t, sched.ID, f.alice.ID, f.kitchen.ID)

	done, err := f.tracker.MarkComplete(pending.ID, CompleteOptions{}, monday)
	if err != nil {
		t.Fatalf("mark complete: %v", err)
	}

	if done.Status != model.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatal("expected completedAt to be stamped")
	}
	if len(done.PhotoRefs) != 0 {
		t.Errorf("expected no photo refs, got %v", done.PhotoRefs)
	}
	if done.Notes != nil {
		t.Errorf("expected no notes, got %q", *done.Notes)
	}
}

func TestMarkCompleteKeepsProofOnRecomplete(t *testing.T) {
	f := newFixture(t)
	sched := f.materialize(t)
	pending := f.completionFor(t, sched.ID, f.alice.ID, f.kitchen.ID)

	notes := "scrubbed the stove"
	first, err := f.tracker.MarkComplete(pending.ID, CompleteOptions{
		PhotoRefs: []string{"photos/stove.jpg"},
		Notes:     &notes,
	}, monday)
	if err != nil {
		t.Fatalf("mark complete: %v", err)
	}
	if len(first.PhotoRefs) != 1 || first.PhotoRefs[0] != "photos/stove.jpg" {
		t.Fatalf("photo refs = %v", first.PhotoRefs)
	}

	// Re-completing without attachments refreshes the stamp but must not
	// erase the earlier proof.
	later := monday.Add(time.Hour)
	second, err := f.tracker.MarkComplete(pending.ID, CompleteOptions{}, later)
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if len(second.PhotoRefs) != 1 {
		t.Errorf("photo refs erased on re-complete: %v", second.PhotoRefs)
	}
	if second.Notes == nil || *second.Notes != notes {
		t.Error("notes erased on re-complete")
	}
	if second.CompletedAt == nil || !second.CompletedAt.After(*first.CompletedAt) {
		t.Error("expected completedAt to be refreshed")
	}
}

func TestMarkCompleteMissedIsTerminal(t *testing.T) {
	f := newFixture(t)
	sched := f.materialize(t)

	if _, err := f.jobs.SweepMissed(monday); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	missed := f.completionFor(t, sched.ID, f.alice.ID, f.kitchen.ID)
	if missed.Status != model.StatusMissed {
		t.Fatalf("status = %s, want MISSED", missed.Status)
	}

	_, err := f.tracker.MarkComplete(missed.ID, CompleteOptions{}, monday)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("completing a MISSED record: err = %v, want ErrInvalidState", err)
	}

	got, err := f.schedules.Completion(missed.ID)
	if err != nil {
		t.Fatalf("get completion: %v", err)
	}
	if got.Status != model.StatusMissed {
		t.Errorf("status = %s, MISSED record must stay MISSED", got.Status)
	}
	if got.CompletedAt != nil {
		t.Error("completedAt stamped on a MISSED record")
	}
}

func TestMarkCompleteUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.MarkComplete(9999, CompleteOptions{}, monday)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	sched := f.materialize(t)

	kitchen := f.completionFor(t, sched.ID, f.alice.ID, f.kitchen.ID)
	if _, err := f.tracker.MarkComplete(kitchen.ID, CompleteOptions{}, monday); err != nil {
		t.Fatalf("mark complete: %v", err)
	}

	stats, err := f.tracker.Stats(f.alice.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Stats{Total: 2, Completed: 1, Missed: 0, Pending: 1, CompletionRate: 50}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}

	// Sweep Alice's chore day: her remaining PENDING chore goes MISSED.
	if _, err := f.jobs.SweepMissed(monday); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	stats, err = f.tracker.Stats(f.alice.ID)
	if err != nil {
		t.Fatalf("stats after sweep: %v", err)
	}
	want = Stats{Total: 2, Completed: 1, Missed: 1, Pending: 0, CompletionRate: 50}
	if *stats != want {
		t.Errorf("stats after sweep = %+v, want %+v", *stats, want)
	}
}

func TestStatsNoRecords(t *testing.T) {
	f := newFixture(t)

	stats, err := f.tracker.Stats(f.alice.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 0 || stats.CompletionRate != 0 {
		t.Errorf("stats = %+v, want all zero", *stats)
	}
}

func TestStatsUnknownOccupant(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.Stats(9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTodaysChoresOnChoreDay(t *testing.T) {
	f := newFixture(t)

	today, err := f.tracker.TodaysChores(f.aliceTen.ID, monday)
	if err != nil {
		t.Fatalf("todays chores: %v", err)
	}
	if !today.IsChoreDay {
		t.Fatal("expected Monday to be Alice's chore day")
	}
	if len(today.Occupants) != 1 || today.Occupants[0].ID != f.alice.ID {
		t.Errorf("occupants = %+v, want just Alice", today.Occupants)
	}
	if len(today.Chores) != 2 {
		t.Fatalf("expected 2 chores, got %d", len(today.Chores))
	}
	if today.Chores[0].ChoreName != "Kitchen" || today.Chores[1].ChoreName != "Bathroom" {
		t.Errorf("chores out of sort order: %s, %s", today.Chores[0].ChoreName, today.Chores[1].ChoreName)
	}
}

// An off-day poll must answer without materializing anything; otherwise idle
// clients would create schedule rows for weeks nobody works in.
func TestTodaysChoresOffDayDoesNotMaterialize(t *testing.T) {
	f := newFixture(t)

	tuesday := monday.AddDate(0, 0, 1)
	today, err := f.tracker.TodaysChores(f.aliceTen.ID, tuesday)
	if err != nil {
		t.Fatalf("todays chores: %v", err)
	}
	if today.IsChoreDay {
		t.Error("Tuesday is nobody's chore day")
	}
	if len(today.Occupants) != 0 || len(today.Chores) != 0 {
		t.Errorf("expected empty occupants and chores, got %+v", today)
	}

	sched, err := f.schedules.ScheduleByWeekID(week.Identifier(tuesday))
	if err != nil {
		t.Fatalf("lookup schedule: %v", err)
	}
	if sched != nil {
		t.Error("off-day poll materialized a schedule")
	}
}

func TestTodaysChoresUnknownTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.TodaysChores(9999, monday)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
