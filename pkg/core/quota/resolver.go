package quota

import (
	"sort"
	"time"

	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
	"github.com/kestrelfp/deal-allocator/pkg/core/model"
)

// OverrideEntry is a manually entered quota override for one adviser.
// Entries are admin-owned: the scheduler only ever reads them.
type OverrideEntry struct {
	AdviserEmail  string
	EffectiveWeek calendar.WeekKey
	MonthlyLimit  int
	PodType       string
	Notes         string
}

// EffectiveWeekFor converts an override's stated effective date into the
// week it actually takes effect: the first Monday on or after the date.
// Overrides never change a quota mid-week.
func EffectiveWeekFor(effectiveDate time.Time) calendar.WeekKey {
	return calendar.NextWeekStart(effectiveDate)
}

// Resolver answers quota questions for a single adviser: the effective
// monthly limit at any week, combining the tenure/pod-adjusted base with
// the adviser's override schedule.
type Resolver struct {
	base      int
	overrides []OverrideEntry // ascending by EffectiveWeek
}

// NewResolver builds a resolver for one adviser. The override slice is
// copied and sorted; the caller's slice is not modified. Overrides with
// a non-positive limit are dropped up front.
func NewResolver(adviser model.AdviserProfile, overrides []OverrideEntry, now time.Time) *Resolver {
	kept := make([]OverrideEntry, 0, len(overrides))
	for _, o := range overrides {
		if o.MonthlyLimit > 0 {
			kept = append(kept, o)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].EffectiveWeek < kept[j].EffectiveWeek
	})

	return &Resolver{
		base:      adviser.MonthlyLimitBase(now),
		overrides: kept,
	}
}

// MonthlyLimit returns the effective monthly client quota at the given
// week: the base limit updated by every override effective at or before
// that week, last one winning.
func (r *Resolver) MonthlyLimit(week calendar.WeekKey) int {
	limit := r.base
	for _, o := range r.overrides {
		if o.EffectiveWeek > week {
			break
		}
		limit = o.MonthlyLimit
	}
	if limit < 0 {
		limit = 0
	}
	return limit
}

// WeeklyTarget returns the fortnightly working target for the given
// week: half the monthly limit, floored. Advisers typically take on
// about half their monthly quota per two-week window.
func (r *Resolver) WeeklyTarget(week calendar.WeekKey) int {
	return r.MonthlyLimit(week) / 2
}
