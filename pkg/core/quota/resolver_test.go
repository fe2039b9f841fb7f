package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
	"github.com/kestrelfp/deal-allocator/pkg/core/model"
)

var testNow = time.Date(2026, time.February, 16, 10, 0, 0, 0, time.UTC) // a Monday

func adviser(podType string, startDaysAgo int) model.AdviserProfile {
	return model.AdviserProfile{
		Email:     "adviser@kestrelfp.com",
		PodType:   podType,
		StartDate: testNow.AddDate(0, 0, -startDaysAgo),
	}
}

func TestMonthlyLimit_DefaultBase(t *testing.T) {
	r := NewResolver(adviser("Pod A", 365), nil, testNow)
	assert.Equal(t, 6, r.MonthlyLimit(calendar.KeyFor(testNow)))
}

func TestMonthlyLimit_ReducedForShortTenure(t *testing.T) {
	r := NewResolver(adviser("Pod A", 30), nil, testNow)
	assert.Equal(t, 4, r.MonthlyLimit(calendar.KeyFor(testNow)))
}

func TestMonthlyLimit_ReducedForSoloAdviser(t *testing.T) {
	r := NewResolver(adviser(model.PodTypeSolo, 500), nil, testNow)
	assert.Equal(t, 4, r.MonthlyLimit(calendar.KeyFor(testNow)))
}

func TestMonthlyLimit_LastEffectiveOverrideWins(t *testing.T) {
	now := calendar.KeyFor(testNow)
	overrides := []OverrideEntry{
		{EffectiveWeek: now.Add(-8), MonthlyLimit: 2},
		{EffectiveWeek: now.Add(-4), MonthlyLimit: 8},
		{EffectiveWeek: now.Add(4), MonthlyLimit: 3}, // still in the future
	}

	r := NewResolver(adviser("Pod A", 365), overrides, testNow)

	assert.Equal(t, 6, r.MonthlyLimit(now.Add(-10)), "before any override")
	assert.Equal(t, 2, r.MonthlyLimit(now.Add(-6)))
	assert.Equal(t, 8, r.MonthlyLimit(now), "future override must not apply yet")
	assert.Equal(t, 3, r.MonthlyLimit(now.Add(4)))
}

func TestMonthlyLimit_UnsortedOverridesAreSorted(t *testing.T) {
	now := calendar.KeyFor(testNow)
	overrides := []OverrideEntry{
		{EffectiveWeek: now.Add(-2), MonthlyLimit: 8},
		{EffectiveWeek: now.Add(-6), MonthlyLimit: 2},
	}

	r := NewResolver(adviser("Pod A", 365), overrides, testNow)
	assert.Equal(t, 8, r.MonthlyLimit(now))
}

func TestMonthlyLimit_IgnoresNonPositiveOverrides(t *testing.T) {
	now := calendar.KeyFor(testNow)
	overrides := []OverrideEntry{
		{EffectiveWeek: now.Add(-4), MonthlyLimit: 0},
		{EffectiveWeek: now.Add(-2), MonthlyLimit: -3},
	}

	r := NewResolver(adviser("Pod A", 365), overrides, testNow)
	assert.Equal(t, 6, r.MonthlyLimit(now))
}

func TestWeeklyTarget_HalfOfMonthlyFloored(t *testing.T) {
	now := calendar.KeyFor(testNow)

	r := NewResolver(adviser("Pod A", 365), nil, testNow)
	assert.Equal(t, 3, r.WeeklyTarget(now))

	r = NewResolver(adviser("Pod A", 365), []OverrideEntry{
		{EffectiveWeek: now.Add(-1), MonthlyLimit: 5},
	}, testNow)
	assert.Equal(t, 2, r.WeeklyTarget(now))
}

func TestEffectiveWeekFor_MidWeekDateSnapsToNextMonday(t *testing.T) {
	// Wednesday 2026-02-18 -> Monday 2026-02-23
	wednesday := time.Date(2026, time.February, 18, 0, 0, 0, 0, time.UTC)
	week := EffectiveWeekFor(wednesday)
	assert.Equal(t, time.Date(2026, time.February, 23, 0, 0, 0, 0, time.UTC), week.Time())

	// A Monday stays where it is
	monday := time.Date(2026, time.February, 16, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, EffectiveWeekFor(monday).Time())
}

func TestOverrideEffectiveNextMondayScenario(t *testing.T) {
	// An override dated mid-week must not change the limit until the
	// following Monday.
	wednesday := time.Date(2026, time.February, 18, 0, 0, 0, 0, time.UTC)
	overrides := []OverrideEntry{
		{EffectiveWeek: EffectiveWeekFor(wednesday), MonthlyLimit: 10},
	}

	r := NewResolver(adviser("Pod A", 365), overrides, testNow)

	weekOfOverride := calendar.KeyFor(wednesday)
	assert.Equal(t, 6, r.MonthlyLimit(weekOfOverride), "limit unchanged in the week the date falls in")
	assert.Equal(t, 10, r.MonthlyLimit(weekOfOverride.Add(1)), "limit changes from the next Monday")
}

func TestFilterByAdviser(t *testing.T) {
	entries := []OverrideEntry{
		{AdviserEmail: "a@kestrelfp.com", MonthlyLimit: 4},
		{AdviserEmail: "b@kestrelfp.com", MonthlyLimit: 8},
		{AdviserEmail: "a@kestrelfp.com", MonthlyLimit: 6},
	}

	filtered := FilterByAdviser(entries, "a@kestrelfp.com")
	assert.Len(t, filtered, 2)
	for _, e := range filtered {
		assert.Equal(t, "a@kestrelfp.com", e.AdviserEmail)
	}
}
