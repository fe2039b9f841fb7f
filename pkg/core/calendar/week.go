package calendar

import (
	"fmt"
	"time"
)

// WeekKey identifies a calendar week by the day-number of its Monday
// (days since the Unix epoch). All capacity bookkeeping keys on this
// integer; a step of 7 moves exactly one week.
type WeekKey int

const daySeconds = 24 * 60 * 60

// KeyFor returns the WeekKey of the week containing t.
// The time's own location is ignored; only the calendar date matters.
func KeyFor(t time.Time) WeekKey {
	// Monday-based weekday offset (Go's Weekday starts at Sunday)
	offset := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	monday = monday.AddDate(0, 0, -offset)
	return WeekKey(monday.Unix() / daySeconds)
}

// NextWeekStart returns the WeekKey of the first week starting on or
// after t. A Monday maps to its own week; any other day rolls forward.
// Quota overrides become effective at week boundaries, never mid-week.
func NextWeekStart(t time.Time) WeekKey {
	key := KeyFor(t)
	if t.Weekday() == time.Monday {
		return key
	}
	return key.Add(1)
}

// Time returns the Monday this key identifies, at midnight UTC.
func (k WeekKey) Time() time.Time {
	return time.Unix(int64(k)*daySeconds, 0).UTC()
}

// Add moves the key forward (or backward, for negative n) by whole weeks.
func (k WeekKey) Add(weeks int) WeekKey {
	return k + WeekKey(7*weeks)
}

// Label renders the week for humans as "{ISO year}-W{ISO week}",
// e.g. "2026-W07". This is the only form that crosses the interface
// boundary; the raw integer stays internal.
func (k WeekKey) Label() string {
	year, week := k.Time().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
