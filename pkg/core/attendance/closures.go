package attendance

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// ExpandClosureRules materializes recurring office closures into concrete
// single-day intervals within [from, until]. Each rule is an RFC 5545
// RRULE string (e.g. "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25"); rule
// syntax is validated at config load, so a parse failure here is an error
// rather than a skip.
func ExpandClosureRules(rules []string, from, until time.Time) ([]Interval, error) {
	var intervals []Interval

	for i, raw := range rules {
		r, err := rrule.StrToRRule(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid closure rule [%d] %q: %w", i, raw, err)
		}

		// Anchor the recurrence at the window start so unbounded rules
		// don't enumerate from their DTSTART default.
		r.DTStart(from)

		for _, occurrence := range r.Between(from, until, true) {
			intervals = append(intervals, Interval{Start: occurrence, End: occurrence})
		}
	}

	return intervals, nil
}
