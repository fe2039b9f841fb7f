package db

import "context"

// OverrideStore defines the database operations for quota override rows.
type OverrideStore interface {
	GetQuotaOverrides(ctx context.Context) ([]QuotaOverride, error)
	InsertQuotaOverride(ctx context.Context, override *QuotaOverride) error
}

// AllocationStore defines the database operations for allocation audit
// records.
type AllocationStore interface {
	GetAllocations(ctx context.Context) ([]Allocation, error)
	InsertAllocation(ctx context.Context, allocation *Allocation) error
}

// Database defines all database operations. The Postgres-backed
// postgres.DB implements this interface.
type Database interface {
	OverrideStore
	AllocationStore
}
