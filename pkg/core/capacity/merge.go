package capacity

import (
	"github.com/kestrelfp/deal-allocator/pkg/core/attendance"
	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
	"github.com/kestrelfp/deal-allocator/pkg/core/model"
)

// CountMeetingsByWeek buckets meetings into per-week clarify/kickoff
// totals. Meetings with an unknown activity type are ignored.
func CountMeetingsByWeek(meetings []model.Meeting) map[calendar.WeekKey]MeetingCounts {
	counts := make(map[calendar.WeekKey]MeetingCounts)
	for _, m := range meetings {
		if m.StartsAt.IsZero() {
			continue
		}
		week := calendar.KeyFor(m.StartsAt)
		c := counts[week]
		switch m.Activity {
		case model.ActivityClarify:
			c.Clarify++
		case model.ActivityKickOff:
			c.Kickoff++
		default:
			continue
		}
		counts[week] = c
	}
	return counts
}

// BacklogByWeek buckets pipeline deals lacking a Clarify meeting by
// their agreement-start week. Deals without an agreement date are
// skipped; they cannot be placed on the timeline.
func BacklogByWeek(deals []model.Deal) map[calendar.WeekKey]int {
	backlog := make(map[calendar.WeekKey]int)
	for _, d := range deals {
		if d.AgreementStart.IsZero() {
			continue
		}
		backlog[calendar.KeyFor(d.AgreementStart)]++
	}
	return backlog
}

// MergeSchedule combines the three sparse per-week sources into one map
// of raw week records. A week appearing in any source gets a row, with
// zero counts and a No classification filled in for the fields the other
// sources don't supply. Gap-filling between weeks is the profile
// builder's job, not done here.
func MergeSchedule(
	meetings map[calendar.WeekKey]MeetingCounts,
	oooWeeks map[calendar.WeekKey]attendance.Classification,
	backlog map[calendar.WeekKey]int,
) map[calendar.WeekKey]*WeekRecord {
	merged := make(map[calendar.WeekKey]*WeekRecord)

	row := func(week calendar.WeekKey) *WeekRecord {
		if r, ok := merged[week]; ok {
			return r
		}
		r := &WeekRecord{Attendance: attendance.No}
		merged[week] = r
		return r
	}

	for week, counts := range meetings {
		r := row(week)
		r.ClarifyCount = counts.Clarify
		r.KickoffCount = counts.Kickoff
	}

	for week, classification := range oooWeeks {
		row(week).Attendance = classification
	}

	for week, count := range backlog {
		row(week).DealsWithoutClarify = count
	}

	return merged
}
