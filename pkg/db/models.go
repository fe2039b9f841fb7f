package db

import "time"

// QuotaOverride is a stored admin-entered quota override row.
// EffectiveDate is the stated date; the resolver snaps it to the first
// Monday on or after it.
type QuotaOverride struct {
	ID            string
	AdviserEmail  string
	EffectiveDate time.Time
	MonthlyLimit  int
	PodType       string
	Notes         string
}

// Allocation is the audit record of one completed deal allocation.
type Allocation struct {
	ID               string
	DealID           string
	AdviserEmail     string
	OpenWeek         string // rendered week label, e.g. "2026-W12"
	RankedCandidates string // comma-separated adviser emails, best first
	CreatedAt        time.Time
}
