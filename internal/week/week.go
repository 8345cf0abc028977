// Package week maps calendar dates to the week keys used to deduplicate
// schedule materialization.
package week

import (
	"fmt"
	"time"
)

// Start returns the Monday at local midnight of the week containing d.
// Sunday maps to the Monday six days earlier.
func Start(d time.Time) time.Time {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Identifier returns the week key for d, formatted "YYYY-Www".
//
// The week number is simple day-of-year arithmetic anchored at January 1st
// of the Monday's year. This is deliberately NOT ISO-8601 week numbering:
// weeks that straddle a year boundary get no correction. Persisted week keys
// depend on this formula, so it must not be swapped for a standards-compliant
// one.
func Identifier(d time.Time) string {
	monday := Start(d)
	num := (monday.YearDay()-1)/7 + 1
	return fmt.Sprintf("%d-W%02d", monday.Year(), num)
}

// ParseIdentifier returns the Monday at local midnight for a week key in
// canonical Identifier form. Each key covers a run of seven days of the
// year, which contains exactly one Monday; keys that do not round-trip
// through Identifier are rejected.
func ParseIdentifier(id string) (time.Time, error) {
	var year, num int
	if _, err := fmt.Sscanf(id, "%d-W%d", &year, &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid week identifier %q", id)
	}
	if num < 1 || num > 53 {
		return time.Time{}, fmt.Errorf("invalid week identifier %q", id)
	}

	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local).AddDate(0, 0, (num-1)*7)
	for i := 0; i < 7; i++ {
		d := first.AddDate(0, 0, i)
		if d.Weekday() != time.Monday {
			continue
		}
		if Identifier(d) != id {
			break
		}
		return d, nil
	}
	return time.Time{}, fmt.Errorf("no week starts at %q", id)
}
