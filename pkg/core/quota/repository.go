package quota

import "context"

// OverrideRepository loads the admin-managed quota override schedule.
// Implementations own any caching; Refresh is the explicit invalidation
// hook the admin-update path calls after writing new entries.
type OverrideRepository interface {
	// LoadOverrides returns every override entry, across all advisers.
	LoadOverrides(ctx context.Context) ([]OverrideEntry, error)

	// Refresh discards any cached state so the next LoadOverrides sees
	// fresh data.
	Refresh(ctx context.Context) error
}

// FilterByAdviser returns the subset of entries belonging to one adviser.
func FilterByAdviser(entries []OverrideEntry, email string) []OverrideEntry {
	var filtered []OverrideEntry
	for _, e := range entries {
		if e.AdviserEmail == email {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
