package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/kestrelfp/deal-allocator/pkg/core/quota"
	"github.com/kestrelfp/deal-allocator/pkg/db"
)

// GetQuotaOverrides retrieves all quota override rows, ordered so the
// resolver's last-one-wins scan behaves predictably.
func (d *DB) GetQuotaOverrides(ctx context.Context) ([]db.QuotaOverride, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, adviser_email, effective_date, monthly_limit, pod_type, notes
		FROM quota_override
		ORDER BY adviser_email, effective_date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quota overrides: %w", err)
	}
	defer rows.Close()

	var overrides []db.QuotaOverride
	for rows.Next() {
		var o db.QuotaOverride
		var podType, notes *string
		if err := rows.Scan(&o.ID, &o.AdviserEmail, &o.EffectiveDate, &o.MonthlyLimit, &podType, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan quota override: %w", err)
		}
		if podType != nil {
			o.PodType = *podType
		}
		if notes != nil {
			o.Notes = *notes
		}
		overrides = append(overrides, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quota overrides: %w", err)
	}

	return overrides, nil
}

// InsertQuotaOverride inserts a new admin-entered override row.
func (d *DB) InsertQuotaOverride(ctx context.Context, o *db.QuotaOverride) error {
	var podType, notes *string
	if o.PodType != "" {
		podType = &o.PodType
	}
	if o.Notes != "" {
		notes = &o.Notes
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO quota_override (id, adviser_email, effective_date, monthly_limit, pod_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, o.ID, o.AdviserEmail, o.EffectiveDate, o.MonthlyLimit, podType, notes)
	if err != nil {
		return fmt.Errorf("failed to insert quota override: %w", err)
	}

	return nil
}

// OverrideRepository adapts the override table to the quota resolver's
// repository contract, caching the loaded schedule until Refresh is
// called by the admin-update path.
type OverrideRepository struct {
	store db.OverrideStore

	mu     sync.Mutex
	cached []quota.OverrideEntry
	loaded bool
}

// NewOverrideRepository wraps an override store.
func NewOverrideRepository(store db.OverrideStore) *OverrideRepository {
	return &OverrideRepository{store: store}
}

// LoadOverrides returns the override schedule, from cache when warm.
// Stated effective dates are snapped to the first Monday on or after
// them.
func (r *OverrideRepository) LoadOverrides(ctx context.Context) ([]quota.OverrideEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.cached, nil
	}

	rows, err := r.store.GetQuotaOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quota overrides: %w", err)
	}

	entries := make([]quota.OverrideEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, quota.OverrideEntry{
			AdviserEmail:  row.AdviserEmail,
			EffectiveWeek: quota.EffectiveWeekFor(row.EffectiveDate),
			MonthlyLimit:  row.MonthlyLimit,
			PodType:       row.PodType,
			Notes:         row.Notes,
		})
	}

	r.cached = entries
	r.loaded = true
	return entries, nil
}

// Refresh discards the cached schedule; the next LoadOverrides rereads
// the table.
func (r *OverrideRepository) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
	r.loaded = false
	return nil
}
