package capacity

import (
	"math"

	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
)

// DefaultHorizonWeeks is how far past the minimum week a profile is
// projected when no merged data reaches further.
const DefaultHorizonWeeks = 26

// TargetResolver supplies the fortnightly target for any week.
// quota.Resolver satisfies this.
type TargetResolver interface {
	WeeklyTarget(week calendar.WeekKey) int
}

// Profile is a dense, chronologically ordered capacity table for one
// adviser: one WeekRecord per week over the projection horizon, no gaps.
// Rows are fixed once BuildProfile returns.
type Profile struct {
	weeks []calendar.WeekKey
	rows  map[calendar.WeekKey]*WeekRecord
}

// Weeks returns the profiled weeks in ascending order.
func (p *Profile) Weeks() []calendar.WeekKey {
	return p.weeks
}

// Record returns the row for a week, or nil if the week is outside the
// profiled range.
func (p *Profile) Record(week calendar.WeekKey) *WeekRecord {
	return p.rows[week]
}

// MinWeek returns the first profiled week.
func (p *Profile) MinWeek() calendar.WeekKey {
	return p.weeks[0]
}

// MaxWeek returns the last profiled week.
func (p *Profile) MaxWeek() calendar.WeekKey {
	return p.weeks[len(p.weeks)-1]
}

// Len returns the number of profiled weeks.
func (p *Profile) Len() int {
	return len(p.weeks)
}

// NearestNonFullBefore returns the closest week strictly before the
// given week whose attendance is not Full, which may be more than one
// week back. ok is false when no such week exists in the profile.
func (p *Profile) NearestNonFullBefore(week calendar.WeekKey) (calendar.WeekKey, *WeekRecord, bool) {
	for w := week.Add(-1); w >= p.MinWeek(); w = w.Add(-1) {
		if r := p.rows[w]; r != nil && !r.Attendance.IsFull() {
			return w, r, true
		}
	}
	return 0, nil, false
}

// NearestNonFullFrom returns the closest week at or after the given week
// whose attendance is not Full. ok is false when the scan runs off the
// end of the profile.
func (p *Profile) NearestNonFullFrom(week calendar.WeekKey) (calendar.WeekKey, *WeekRecord, bool) {
	for w := week; w <= p.MaxWeek(); w = w.Add(1) {
		if r := p.rows[w]; r != nil && !r.Attendance.IsFull() {
			return w, r, true
		}
	}
	return 0, nil, false
}

// BuildProfile materializes the dense capacity table from the sparse
// merged schedule. The table spans minWeek through the later of the last
// merged week and minWeek+horizonWeeks, with missing weeks filled with
// zero counts and a No classification, then computes the three derived
// columns. Building twice from the same inputs yields identical
// profiles.
func BuildProfile(
	merged map[calendar.WeekKey]*WeekRecord,
	minWeek calendar.WeekKey,
	horizonWeeks int,
	targets TargetResolver,
) *Profile {
	if horizonWeeks <= 0 {
		horizonWeeks = DefaultHorizonWeeks
	}

	horizonEnd := minWeek.Add(horizonWeeks)
	for week := range merged {
		if week > horizonEnd {
			horizonEnd = week
		}
	}

	p := &Profile{rows: make(map[calendar.WeekKey]*WeekRecord)}
	for week := minWeek; week <= horizonEnd; week = week.Add(1) {
		row := &WeekRecord{}
		if src, ok := merged[week]; ok {
			// Copy so the builder owns its rows; merged input stays intact.
			*row = *src
		}
		p.weeks = append(p.weeks, week)
		p.rows[week] = row
	}

	p.computeTargets(targets)
	p.computeActuals()

	for _, week := range p.weeks {
		row := p.rows[week]
		row.Difference = row.ActualCapacity - row.TargetCapacity
	}

	return p
}

// computeTargets fills the attendance-adjusted target column. A fully
// absent week contributes nothing; a heavy partial absence (3-4 days)
// halves the target; lighter absence leaves it untouched.
func (p *Profile) computeTargets(targets TargetResolver) {
	for _, week := range p.weeks {
		row := p.rows[week]
		target := float64(targets.WeeklyTarget(week))
		half := math.Ceil(target / 2)

		switch {
		case row.Attendance.IsFull():
			row.TargetCapacity = 0
		case row.Attendance.DaysAbsent == 3 || row.Attendance.DaysAbsent == 4:
			row.TargetCapacity = half
		default:
			row.TargetCapacity = target
		}
	}
}

// computeActuals fills the rolling two-week clarify column. Full weeks
// carry zero; any other week adds its own clarify count to that of the
// nearest earlier non-Full week, skipping over fully absent weeks.
func (p *Profile) computeActuals() {
	for i, week := range p.weeks {
		row := p.rows[week]

		if i == 0 {
			row.ActualCapacity = float64(row.ClarifyCount)
			continue
		}

		if row.Attendance.IsFull() {
			row.ActualCapacity = 0
			continue
		}

		actual := float64(row.ClarifyCount)
		for j := i - 1; j >= 0; j-- {
			prior := p.rows[p.weeks[j]]
			if prior.Attendance.IsFull() {
				continue
			}
			actual += float64(prior.ClarifyCount)
			break
		}
		row.ActualCapacity = actual
	}
}
