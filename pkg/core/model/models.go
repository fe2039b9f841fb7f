package model

import (
	"time"

	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
)

// Activity is a client meeting type. Only Clarify and Kick Off meetings
// consume adviser capacity.
type Activity string

const (
	ActivityClarify Activity = "Clarify"
	ActivityKickOff Activity = "Kick Off"
)

func (a Activity) IsValid() bool {
	return a == ActivityClarify || a == ActivityKickOff
}

const (
	// DefaultMonthlyLimit is the standard monthly new-client quota.
	DefaultMonthlyLimit = 6

	// ReducedMonthlyLimit applies to recently started advisers and
	// advisers running a solo pod.
	ReducedMonthlyLimit = 4

	// TenureRampDays is how long a new adviser stays on the reduced limit.
	TenureRampDays = 90

	// PodTypeSolo identifies advisers without pod support staff.
	PodTypeSolo = "Solo Adviser"

	// PrestartWeeks is how far before a future start date an adviser may
	// already be scheduled for new clients.
	PrestartWeeks = 2
)

// AdviserProfile is an immutable snapshot of one adviser's roster entry.
// It is read once per allocation pass and never mutated in flight.
type AdviserProfile struct {
	Email            string
	OwnerID          string
	StartDate        time.Time
	PodType          string
	BaseMonthlyLimit int // 0 means derive from tenure and pod type
	ServicePackages  []string
	HouseholdTypes   []string
	AcceptingClients bool
}

// MonthlyLimitBase returns the adviser's base monthly quota at the
// reference time, before any manual overrides. An explicit
// BaseMonthlyLimit wins; otherwise the default drops to the reduced
// limit for advisers inside their tenure ramp or running a solo pod.
func (a AdviserProfile) MonthlyLimitBase(now time.Time) int {
	if a.BaseMonthlyLimit > 0 {
		return a.BaseMonthlyLimit
	}
	if a.PodType == PodTypeSolo {
		return ReducedMonthlyLimit
	}
	if !a.StartDate.IsZero() && now.Sub(a.StartDate) < TenureRampDays*24*time.Hour {
		return ReducedMonthlyLimit
	}
	return DefaultMonthlyLimit
}

// AvailabilityStartWeek returns the earliest week an adviser with a
// future start date may be scheduled for, and whether that bound
// applies at all.
func (a AdviserProfile) AvailabilityStartWeek(now time.Time) (calendar.WeekKey, bool) {
	if a.StartDate.IsZero() || !a.StartDate.After(now) {
		return 0, false
	}
	return calendar.KeyFor(a.StartDate).Add(-PrestartWeeks), true
}

// OffersPackage reports whether the adviser serves the given service
// package.
func (a AdviserProfile) OffersPackage(pkg string) bool {
	for _, p := range a.ServicePackages {
		if p == pkg {
			return true
		}
	}
	return false
}

// AcceptsHousehold reports whether the adviser takes the given household
// type. An adviser with no configured preference accepts all.
func (a AdviserProfile) AcceptsHousehold(household string) bool {
	if len(a.HouseholdTypes) == 0 {
		return true
	}
	for _, h := range a.HouseholdTypes {
		if h == household {
			return true
		}
	}
	return false
}

// Meeting is a capacity-consuming client meeting from the CRM.
type Meeting struct {
	OwnerID  string
	Activity Activity
	StartsAt time.Time
}

// Deal is a pipeline deal awaiting adviser assignment. Deals without a
// booked Clarify meeting form the scheduler's backlog.
type Deal struct {
	ID             string
	AdviserEmail   string
	ServicePackage string
	HouseholdType  string
	AgreementStart time.Time
}

// AgreementWeek returns the earliest week this deal may be scheduled
// into (one week after the agreement start), and whether an agreement
// start was supplied.
func (d Deal) AgreementWeek() (calendar.WeekKey, bool) {
	if d.AgreementStart.IsZero() {
		return 0, false
	}
	return calendar.KeyFor(d.AgreementStart).Add(1), true
}
