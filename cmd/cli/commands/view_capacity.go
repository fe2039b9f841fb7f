package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelfp/deal-allocator/pkg/core/services"
)

// ViewCapacityCmd creates the viewCapacity command
func ViewCapacityCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewCapacity <adviser_email>",
		Short: "Show an adviser's weekly capacity profile and earliest open week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := services.ViewCapacity(
				app.Ctx,
				app.CRMClient,
				app.CalendarClient,
				app.Overrides,
				app.Cfg,
				app.Logger,
				args[0],
			)
			if err != nil {
				return err
			}

			fmt.Printf("\nCapacity profile for %s\n\n", view.Adviser.Email)
			fmt.Printf("%-10s %8s %8s %10s %8s %8s %8s\n",
				"Week", "Clarify", "KickOff", "Absence", "Target", "Actual", "Diff")

			for _, week := range view.Profile.Weeks() {
				row := view.Profile.Record(week)
				marker := "  "
				if week == view.EarliestOpenWeek {
					marker = "→ "
				}
				fmt.Printf("%s%-8s %8d %8d %10s %8.1f %8.1f %+8.1f\n",
					marker,
					week.Label(),
					row.ClarifyCount,
					row.KickoffCount,
					row.Attendance,
					row.TargetCapacity,
					row.ActualCapacity,
					row.Difference,
				)
			}

			fmt.Printf("\nEarliest open week: %s\n\n", view.EarliestOpenWeek.Label())

			return nil
		},
	}
}
