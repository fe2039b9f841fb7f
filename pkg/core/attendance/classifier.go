package attendance

import (
	"time"

	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
)

// Interval is a raw out-of-office date range, inclusive of both ends.
// Leave requests and office closures both arrive in this shape.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval has usable dates. Records with a
// missing or inverted range are skipped by the classifier rather than
// failing the whole computation.
func (i Interval) Valid() bool {
	return !i.Start.IsZero() && !i.End.IsZero() && !i.End.Before(i.Start)
}

// ClassifyIntervals converts raw date ranges into a per-week attendance
// classification. Each business day (Mon-Fri) covered by any interval
// increments that week's absent-day counter; five absent days make the
// week Full. Invalid intervals are ignored.
func ClassifyIntervals(intervals []Interval) map[calendar.WeekKey]Classification {
	daysAbsent := make(map[calendar.WeekKey]int)

	for _, iv := range intervals {
		if !iv.Valid() {
			continue
		}

		day := time.Date(iv.Start.Year(), iv.Start.Month(), iv.Start.Day(), 0, 0, 0, 0, time.UTC)
		end := time.Date(iv.End.Year(), iv.End.Month(), iv.End.Day(), 0, 0, 0, 0, time.UTC)

		for !day.After(end) {
			if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
				daysAbsent[calendar.KeyFor(day)]++
			}
			day = day.AddDate(0, 0, 1)
		}
	}

	classified := make(map[calendar.WeekKey]Classification, len(daysAbsent))
	for week, n := range daysAbsent {
		classified[week] = Partial(n)
	}
	return classified
}

// CombineWeeks merges per-week classifications from multiple sources
// (personal leave, office closures) under the severity-max rule.
func CombineWeeks(sources ...map[calendar.WeekKey]Classification) map[calendar.WeekKey]Classification {
	combined := make(map[calendar.WeekKey]Classification)
	for _, source := range sources {
		for week, c := range source {
			combined[week] = Combine(combined[week], c)
		}
	}
	return combined
}
