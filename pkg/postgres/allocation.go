package postgres

import (
	"context"
	"fmt"

	"github.com/kestrelfp/deal-allocator/pkg/db"
)

// GetAllocations retrieves all allocation audit records.
func (d *DB) GetAllocations(ctx context.Context) ([]db.Allocation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, deal_id, adviser_email, open_week, ranked_candidates, created_at
		FROM allocation
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var allocations []db.Allocation
	for rows.Next() {
		var a db.Allocation
		var ranked *string
		if err := rows.Scan(&a.ID, &a.DealID, &a.AdviserEmail, &a.OpenWeek, &ranked, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		if ranked != nil {
			a.RankedCandidates = *ranked
		}
		allocations = append(allocations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocations: %w", err)
	}

	return allocations, nil
}

// InsertAllocation records the audit trail of one completed allocation.
func (d *DB) InsertAllocation(ctx context.Context, a *db.Allocation) error {
	var ranked *string
	if a.RankedCandidates != "" {
		ranked = &a.RankedCandidates
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO allocation (id, deal_id, adviser_email, open_week, ranked_candidates)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.DealID, a.AdviserEmail, a.OpenWeek, ranked)
	if err != nil {
		return fmt.Errorf("failed to insert allocation: %w", err)
	}

	return nil
}
