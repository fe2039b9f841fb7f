package scheduler

import (
	"math"

	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
	"github.com/kestrelfp/deal-allocator/pkg/core/capacity"
)

const (
	// LeadTimeWeeks is the minimum notice before a new client's first
	// meeting; no week inside this window is ever offered.
	LeadTimeWeeks = 2

	// HardWeeklyLimit caps how many backlog deals may be newly booked
	// into a single week, regardless of modeled slack.
	HardWeeklyLimit = 2

	// openWeekThreshold is the minimum post-assignment capacity a week
	// must retain to count as open.
	openWeekThreshold = 0.5
)

// Params bound the forward walk for one adviser and one deal.
type Params struct {
	// NowWeek anchors the two-week lead time.
	NowWeek calendar.WeekKey

	// AvailabilityStartWeek is the pre-start bound for advisers who have
	// not started yet. Ignored unless HasAvailabilityStart.
	AvailabilityStartWeek calendar.WeekKey
	HasAvailabilityStart  bool

	// AgreementWeek is one week after the deal's agreement start.
	// Ignored unless HasAgreementWeek.
	AgreementWeek    calendar.WeekKey
	HasAgreementWeek bool

	// HardWeeklyLimit overrides the default per-week booking ceiling
	// when positive.
	HardWeeklyLimit float64

	// Targets supplies the fortnightly target for the horizon-exhaustion
	// fallback projection.
	Targets capacity.TargetResolver
}

// Result is the scheduler's answer for one adviser: the first stable
// open week plus the profile it was derived from.
type Result struct {
	AdviserEmail     string
	EarliestOpenWeek calendar.WeekKey
	Profile          *capacity.Profile
}

// FindEarliestOpenWeek walks the capacity profile forward from the lower
// bound, draining the deal backlog against weekly slack, and returns the
// first week that is stable: backlog cleared, real capacity left over,
// and cumulative target ahead of cumulative clarify load.
func FindEarliestOpenWeek(profile *capacity.Profile, params Params) calendar.WeekKey {
	hardLimit := params.HardWeeklyLimit
	if hardLimit <= 0 {
		hardLimit = HardWeeklyLimit
	}

	start := lowerBound(profile, params)
	remaining := seedBacklog(profile, start)
	clarifyAccum, targetAccum := seedAccumulators(profile, start)

	var assignedPrev float64

	for _, week := range profile.Weeks() {
		if week < start {
			continue
		}
		row := profile.Record(week)

		// Fully absent weeks neither consume nor advance state.
		if row.Attendance.IsFull() {
			continue
		}

		// Deals agreed a fortnight ago surface as backlog this week.
		if arrival := profile.Record(week.Add(-2)); arrival != nil {
			remaining += float64(arrival.DealsWithoutClarify)
		}

		var prevClarify, prevDiff float64
		if _, prev, ok := profile.NearestNonFullBefore(week); ok {
			prevClarify = float64(prev.ClarifyCount)
			prevDiff = prev.Difference
		}

		_, next, ok := profile.NearestNonFullFrom(week.Add(1))
		if !ok {
			// No structural view of the following week; the walk is done.
			break
		}

		clarify := float64(row.ClarifyCount)
		blockTarget := row.TargetCapacity

		capacityThisWeek := blockTarget - prevClarify - clarify - assignedPrev
		capacityNextWeek := -next.Difference

		// Never promise more this week than next week can support.
		actualCapacity := math.Min(capacityThisWeek, capacityNextWeek)

		weekLimit := hardLimit - clarify

		assigned := actualCapacity
		for _, bound := range []float64{weekLimit, remaining, -prevDiff, -next.Difference} {
			assigned = math.Min(assigned, bound)
		}
		if assigned < 0 {
			assigned = 0
		}

		remaining -= assigned
		assignedPrev = assigned
		finalCapacity := actualCapacity - assigned

		// Unconsumed overflow rolls back into the backlog.
		remaining += math.Max(clarify, assigned) - blockTarget/2

		clarifyAccum += clarify + float64(row.DealsWithoutClarify)
		targetAccum += blockTarget / 2

		if remaining <= 0 && finalCapacity > openWeekThreshold && targetAccum > clarifyAccum {
			if week < start {
				return start
			}
			return week
		}
	}

	return fallbackWeek(profile, params, start, remaining)
}

// lowerBound establishes the earliest week the walk may offer: at least
// two weeks out from now, never inside an adviser's pre-start window,
// and never before one week after the deal's agreement start.
func lowerBound(profile *capacity.Profile, params Params) calendar.WeekKey {
	start := profile.MinWeek()
	if w := params.NowWeek.Add(LeadTimeWeeks); w > start {
		start = w
	}
	if params.HasAvailabilityStart && params.AvailabilityStartWeek > start {
		start = params.AvailabilityStartWeek
	}
	if params.HasAgreementWeek && params.AgreementWeek > start {
		start = params.AgreementWeek
	}
	return start
}

// seedBacklog totals the backlog standing before the walk begins: every
// deal agreed strictly more than a fortnight before the starting week,
// plus overflow from the three weeks leading in. The one-week and
// two-week lookback terms deliberately go unfloored while the three-week
// term is floored at zero; downstream totals depend on the asymmetry, so
// it is preserved as-is.
func seedBacklog(profile *capacity.Profile, start calendar.WeekKey) float64 {
	var remaining float64

	cutoff := start.Add(-2)
	for _, week := range profile.Weeks() {
		if week >= cutoff {
			break
		}
		remaining += float64(profile.Record(week).DealsWithoutClarify)
	}

	for weeksBack := 1; weeksBack <= 3; weeksBack++ {
		row := profile.Record(start.Add(-weeksBack))
		if row == nil {
			continue
		}
		overflow := float64(row.ClarifyCount) - row.TargetCapacity/2
		if weeksBack == 3 && overflow < 0 {
			overflow = 0
		}
		remaining += overflow
	}

	return remaining
}

// seedAccumulators totals clarify load and fortnightly target over the
// profiled weeks before the start point. The walk extends these running
// totals; the termination check compares them to judge whether the
// adviser is structurally ahead of or behind quota.
func seedAccumulators(profile *capacity.Profile, start calendar.WeekKey) (clarifyAccum, targetAccum float64) {
	for _, week := range profile.Weeks() {
		if week >= start {
			break
		}
		row := profile.Record(week)
		if row.Attendance.IsFull() {
			continue
		}
		clarifyAccum += float64(row.ClarifyCount + row.DealsWithoutClarify)
		targetAccum += row.TargetCapacity / 2
	}
	return clarifyAccum, targetAccum
}

// fallbackWeek handles horizon exhaustion: estimate the fortnights needed
// to clear what remains at the current fortnightly target, project that
// far past the profiled horizon, then look for the first week from there
// whose own and predecessor's difference are both under quota. With no
// such week in view, the projection itself is the answer.
func fallbackWeek(profile *capacity.Profile, params Params, start calendar.WeekKey, remaining float64) calendar.WeekKey {
	lastWeek := profile.MaxWeek()

	target := 1.0
	if params.Targets != nil {
		if t := params.Targets.WeeklyTarget(lastWeek); t > 1 {
			target = float64(t)
		}
	}

	fortnights := math.Ceil(remaining / target)
	if fortnights < 0 {
		fortnights = 0
	}
	projected := lastWeek.Add(int(fortnights) * 2)

	for week := projected; week <= lastWeek; week = week.Add(1) {
		row := profile.Record(week)
		prev := profile.Record(week.Add(-1))
		if row == nil || prev == nil {
			continue
		}
		if row.Difference < 0 && prev.Difference < 0 {
			projected = week
			break
		}
	}

	if projected < start {
		return start
	}
	return projected
}
