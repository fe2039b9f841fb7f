package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RefreshOverridesCmd creates the refreshOverrides command
func RefreshOverridesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refreshOverrides",
		Short: "Drop the cached quota overrides and reload them from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Overrides.Refresh(app.Ctx); err != nil {
				return fmt.Errorf("failed to refresh overrides: %w", err)
			}

			entries, err := app.Overrides.LoadOverrides(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to reload overrides: %w", err)
			}

			fmt.Printf("\n✓ Quota overrides refreshed (%d entries)\n\n", len(entries))
			for _, entry := range entries {
				fmt.Printf("- %s: limit %d from week %s", entry.AdviserEmail, entry.MonthlyLimit, entry.EffectiveWeek.Label())
				if entry.Notes != "" {
					fmt.Printf(" (%s)", entry.Notes)
				}
				fmt.Println()
			}
			fmt.Println()

			return nil
		},
	}
}
