package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelfp/deal-allocator/pkg/db"
)

// stubOverrideStore serves canned rows and counts reads.
type stubOverrideStore struct {
	rows  []db.QuotaOverride
	reads int
}

func (s *stubOverrideStore) GetQuotaOverrides(ctx context.Context) ([]db.QuotaOverride, error) {
	s.reads++
	return s.rows, nil
}

func (s *stubOverrideStore) InsertQuotaOverride(ctx context.Context, o *db.QuotaOverride) error {
	s.rows = append(s.rows, *o)
	return nil
}

func TestOverrideRepository_SnapsEffectiveDateToMonday(t *testing.T) {
	store := &stubOverrideStore{rows: []db.QuotaOverride{
		{
			AdviserEmail:  "a@kestrelfp.com",
			EffectiveDate: time.Date(2026, time.February, 18, 0, 0, 0, 0, time.UTC), // Wednesday
			MonthlyLimit:  8,
		},
	}}

	repo := NewOverrideRepository(store)
	entries, err := repo.LoadOverrides(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, time.Date(2026, time.February, 23, 0, 0, 0, 0, time.UTC), entries[0].EffectiveWeek.Time())
	assert.Equal(t, 8, entries[0].MonthlyLimit)
}

func TestOverrideRepository_CachesUntilRefresh(t *testing.T) {
	store := &stubOverrideStore{}
	repo := NewOverrideRepository(store)
	ctx := context.Background()

	_, err := repo.LoadOverrides(ctx)
	require.NoError(t, err)
	_, err = repo.LoadOverrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads, "second load must hit the cache")

	require.NoError(t, repo.Refresh(ctx))
	_, err = repo.LoadOverrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.reads, "refresh must force a reread")
}
