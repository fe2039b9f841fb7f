package capacity

import (
	"github.com/kestrelfp/deal-allocator/pkg/core/attendance"
)

// MeetingCounts holds the capacity-consuming meeting totals for one week.
type MeetingCounts struct {
	Clarify int
	Kickoff int
}

// WeekRecord is one week's row in a capacity profile. The first four
// fields are raw inputs from the schedule merge; the last three are
// derived by the profile builder and immutable afterwards.
type WeekRecord struct {
	ClarifyCount        int
	KickoffCount        int
	Attendance          attendance.Classification
	DealsWithoutClarify int

	// TargetCapacity is the attendance-adjusted fortnightly target.
	TargetCapacity float64

	// ActualCapacity is the rolling two-week clarify total, skipping
	// fully absent weeks.
	ActualCapacity float64

	// Difference is ActualCapacity - TargetCapacity. Negative means the
	// week ran under target, i.e. spare capacity exists. The scheduler
	// depends on this sign convention.
	Difference float64
}
