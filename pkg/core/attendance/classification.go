package attendance

import "fmt"

// Classification describes how much of a week an adviser is out of
// office: none of it, some business days, or all five.
type Classification struct {
	// DaysAbsent is the number of business days (Mon-Fri) absent,
	// in the range 0..5.
	DaysAbsent int
}

// The business week is five days; a full week out means all five.
const BusinessDaysPerWeek = 5

var (
	// No means fully present for the week.
	No = Classification{DaysAbsent: 0}

	// Full means absent for every business day of the week.
	Full = Classification{DaysAbsent: BusinessDaysPerWeek}
)

// Partial returns a classification for n business days absent.
// Values are clamped into the valid 0..5 range.
func Partial(n int) Classification {
	if n < 0 {
		n = 0
	}
	if n > BusinessDaysPerWeek {
		n = BusinessDaysPerWeek
	}
	return Classification{DaysAbsent: n}
}

// IsFull reports whether the whole week is out of office.
func (c Classification) IsFull() bool {
	return c.DaysAbsent >= BusinessDaysPerWeek
}

// IsAbsent reports whether any business day of the week is out of office.
func (c Classification) IsAbsent() bool {
	return c.DaysAbsent > 0
}

// Combine merges two classifications for the same week. The more severe
// one wins; overlapping records never stack beyond a full week.
func Combine(a, b Classification) Classification {
	if b.DaysAbsent > a.DaysAbsent {
		a = b
	}
	if a.DaysAbsent > BusinessDaysPerWeek {
		return Full
	}
	return a
}

func (c Classification) String() string {
	switch {
	case c.DaysAbsent <= 0:
		return "No"
	case c.IsFull():
		return "Full"
	default:
		return fmt.Sprintf("Partial(%d)", c.DaysAbsent)
	}
}
