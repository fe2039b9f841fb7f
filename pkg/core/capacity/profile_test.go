package capacity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelfp/deal-allocator/pkg/core/attendance"
	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
)

// fixedTarget resolves every week to the same fortnightly target.
type fixedTarget int

func (f fixedTarget) WeeklyTarget(calendar.WeekKey) int { return int(f) }

var baseWeek = calendar.KeyFor(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))

func TestBuildProfile_DenseAndOrdered(t *testing.T) {
	merged := map[calendar.WeekKey]*WeekRecord{
		baseWeek.Add(3): {ClarifyCount: 1},
	}

	p := BuildProfile(merged, baseWeek, 10, fixedTarget(3))

	require.Equal(t, 11, p.Len())
	weeks := p.Weeks()
	for i := 1; i < len(weeks); i++ {
		assert.Equal(t, weeks[i-1].Add(1), weeks[i], "weeks must be consecutive")
	}
	assert.Equal(t, baseWeek, p.MinWeek())
	assert.Equal(t, baseWeek.Add(10), p.MaxWeek())

	// Gap weeks get zero counts and a No classification
	gap := p.Record(baseWeek.Add(1))
	require.NotNil(t, gap)
	assert.Equal(t, 0, gap.ClarifyCount)
	assert.Equal(t, attendance.No, gap.Attendance)
}

func TestBuildProfile_HorizonExtendsToLastMergedWeek(t *testing.T) {
	merged := map[calendar.WeekKey]*WeekRecord{
		baseWeek.Add(40): {ClarifyCount: 1},
	}

	p := BuildProfile(merged, baseWeek, 26, fixedTarget(3))
	assert.Equal(t, baseWeek.Add(40), p.MaxWeek())
}

func TestBuildProfile_TargetColumn(t *testing.T) {
	merged := map[calendar.WeekKey]*WeekRecord{
		baseWeek:        {Attendance: attendance.No},
		baseWeek.Add(1): {Attendance: attendance.Full},
		baseWeek.Add(2): {Attendance: attendance.Partial(3)},
		baseWeek.Add(3): {Attendance: attendance.Partial(4)},
		baseWeek.Add(4): {Attendance: attendance.Partial(1)},
		baseWeek.Add(5): {Attendance: attendance.Partial(2)},
	}

	p := BuildProfile(merged, baseWeek, 5, fixedTarget(3))

	assert.Equal(t, 3.0, p.Record(baseWeek).TargetCapacity)
	assert.Equal(t, 0.0, p.Record(baseWeek.Add(1)).TargetCapacity, "Full week carries no target")
	assert.Equal(t, 2.0, p.Record(baseWeek.Add(2)).TargetCapacity, "heavy partial absence halves the target, ceiling")
	assert.Equal(t, 2.0, p.Record(baseWeek.Add(3)).TargetCapacity)
	assert.Equal(t, 3.0, p.Record(baseWeek.Add(4)).TargetCapacity, "light partial absence keeps the target")
	assert.Equal(t, 3.0, p.Record(baseWeek.Add(5)).TargetCapacity)
}

func TestBuildProfile_ActualColumnRollingFortnight(t *testing.T) {
	merged := map[calendar.WeekKey]*WeekRecord{
		baseWeek:        {ClarifyCount: 2},
		baseWeek.Add(1): {ClarifyCount: 1},
		baseWeek.Add(2): {ClarifyCount: 3},
	}

	p := BuildProfile(merged, baseWeek, 2, fixedTarget(3))

	assert.Equal(t, 2.0, p.Record(baseWeek).ActualCapacity, "first week stands alone")
	assert.Equal(t, 3.0, p.Record(baseWeek.Add(1)).ActualCapacity)
	assert.Equal(t, 4.0, p.Record(baseWeek.Add(2)).ActualCapacity)
}

func TestBuildProfile_ActualColumnSkipsFullWeeks(t *testing.T) {
	// A Full week between two No weeks: the later week reaches back past
	// the Full week for its fortnight partner.
	merged := map[calendar.WeekKey]*WeekRecord{
		baseWeek:        {ClarifyCount: 2},
		baseWeek.Add(1): {ClarifyCount: 1, Attendance: attendance.Full},
		baseWeek.Add(2): {ClarifyCount: 3},
	}

	p := BuildProfile(merged, baseWeek, 2, fixedTarget(3))

	assert.Equal(t, 0.0, p.Record(baseWeek.Add(1)).ActualCapacity, "Full week contributes nothing")
	assert.Equal(t, 0.0, p.Record(baseWeek.Add(1)).TargetCapacity)
	assert.Equal(t, 5.0, p.Record(baseWeek.Add(2)).ActualCapacity, "3 own + 2 from the week before the Full week")
}

func TestBuildProfile_DifferenceSignConvention(t *testing.T) {
	merged := map[calendar.WeekKey]*WeekRecord{
		baseWeek:        {ClarifyCount: 0},
		baseWeek.Add(1): {ClarifyCount: 5},
	}

	p := BuildProfile(merged, baseWeek, 1, fixedTarget(3))

	// Week under target: negative difference (spare capacity)
	assert.Equal(t, -3.0, p.Record(baseWeek).Difference)
	// Week over target: positive difference
	assert.Equal(t, 2.0, p.Record(baseWeek.Add(1)).Difference)
}

func TestBuildProfile_ColumnsNeverNegative(t *testing.T) {
	merged := map[calendar.WeekKey]*WeekRecord{
		baseWeek.Add(1): {ClarifyCount: 4, Attendance: attendance.Full},
		baseWeek.Add(3): {Attendance: attendance.Partial(4)},
	}

	p := BuildProfile(merged, baseWeek, 8, fixedTarget(3))

	for _, week := range p.Weeks() {
		row := p.Record(week)
		assert.GreaterOrEqual(t, row.TargetCapacity, 0.0)
		assert.GreaterOrEqual(t, row.ActualCapacity, 0.0)
	}
}

func TestBuildProfile_Idempotent(t *testing.T) {
	merged := map[calendar.WeekKey]*WeekRecord{
		baseWeek:        {ClarifyCount: 2, DealsWithoutClarify: 1},
		baseWeek.Add(2): {Attendance: attendance.Full},
		baseWeek.Add(4): {ClarifyCount: 1, KickoffCount: 2},
	}

	first := BuildProfile(merged, baseWeek, 12, fixedTarget(3))
	second := BuildProfile(merged, baseWeek, 12, fixedTarget(3))

	require.Equal(t, first.Len(), second.Len())
	for _, week := range first.Weeks() {
		assert.Equal(t, *first.Record(week), *second.Record(week))
	}
}

func TestBuildProfile_DoesNotMutateInput(t *testing.T) {
	src := &WeekRecord{ClarifyCount: 2}
	merged := map[calendar.WeekKey]*WeekRecord{baseWeek: src}

	BuildProfile(merged, baseWeek, 4, fixedTarget(3))

	assert.Equal(t, 0.0, src.TargetCapacity)
	assert.Equal(t, 0.0, src.ActualCapacity)
}

func TestNearestNonFull_Navigation(t *testing.T) {
	merged := map[calendar.WeekKey]*WeekRecord{
		baseWeek.Add(1): {Attendance: attendance.Full},
		baseWeek.Add(2): {Attendance: attendance.Full},
	}

	p := BuildProfile(merged, baseWeek, 4, fixedTarget(3))

	w, _, ok := p.NearestNonFullBefore(baseWeek.Add(3))
	require.True(t, ok)
	assert.Equal(t, baseWeek, w, "skips back over consecutive Full weeks")

	w, _, ok = p.NearestNonFullFrom(baseWeek.Add(1))
	require.True(t, ok)
	assert.Equal(t, baseWeek.Add(3), w, "skips forward over consecutive Full weeks")

	_, _, ok = p.NearestNonFullBefore(baseWeek)
	assert.False(t, ok, "nothing before the first week")
}
