package week

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 4, 5, 0, time.Local)
}

func TestStartIsMondayMidnight(t *testing.T) {
	// One date for every weekday
	for i := 0; i < 7; i++ {
		d := date(2026, time.March, 9).AddDate(0, 0, i) // Mon Mar 9 .. Sun Mar 15
		start := Start(d)
		if start.Weekday() != time.Monday {
			t.Errorf("Start(%s).Weekday() = %s, want Monday", d.Format("2006-01-02"), start.Weekday())
		}
		h, m, s := start.Clock()
		if h != 0 || m != 0 || s != 0 {
			t.Errorf("Start(%s) = %s, want midnight", d.Format("2006-01-02"), start)
		}
	}
}

func TestStartSundayRollsBackSixDays(t *testing.T) {
	sunday := date(2026, time.March, 15)
	start := Start(sunday)
	want := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.Local)
	if !start.Equal(want) {
		t.Errorf("Start(Sunday) = %s, want %s", start, want)
	}
}

func TestIdentifierAgreesWithStart(t *testing.T) {
	d := date(2026, time.January, 2)
	for i := 0; i < 400; i++ {
		if got, want := Identifier(Start(d)), Identifier(d); got != want {
			t.Fatalf("Identifier(Start(%s)) = %q, Identifier = %q", d.Format("2006-01-02"), got, want)
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestIdentifierStableWithinWeek(t *testing.T) {
	monday := date(2026, time.June, 1) // a Monday
	want := Identifier(monday)
	for i := 1; i < 7; i++ {
		got := Identifier(monday.AddDate(0, 0, i))
		if got != want {
			t.Errorf("day %d of week: Identifier = %q, want %q", i, got, want)
		}
	}
}

func TestIdentifierDiffersAcrossWeeks(t *testing.T) {
	d := date(2026, time.February, 4)
	for i := 0; i < 60; i++ {
		this := Identifier(d)
		next := Identifier(d.AddDate(0, 0, 7))
		if this == next {
			t.Errorf("weeks of %s and +7d share identifier %q", d.Format("2006-01-02"), this)
		}
		d = d.AddDate(0, 0, 7)
	}
}

func TestParseIdentifierRoundTrip(t *testing.T) {
	d := date(2025, time.November, 20)
	for i := 0; i < 400; i++ {
		id := Identifier(d)
		monday, err := ParseIdentifier(id)
		if err != nil {
			t.Fatalf("ParseIdentifier(%q): %v", id, err)
		}
		if !monday.Equal(Start(d)) {
			t.Fatalf("ParseIdentifier(%q) = %s, want %s", id, monday, Start(d))
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestParseIdentifierRejectsInvalid(t *testing.T) {
	for _, id := range []string{"", "garbage", "2026-W00", "2026-W60", "2026-W1", "2026W01"} {
		if _, err := ParseIdentifier(id); err == nil {
			t.Errorf("ParseIdentifier(%q) accepted an invalid key", id)
		}
	}
}

func TestIdentifierFormat(t *testing.T) {
	got := Identifier(time.Date(2026, time.January, 7, 0, 0, 0, 0, time.Local))
	// Monday of that week is Jan 5, day-of-year 5 → week 1
	if got != "2026-W01" {
		t.Errorf("Identifier = %q, want %q", got, "2026-W01")
	}
}
