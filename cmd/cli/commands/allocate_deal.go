package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelfp/deal-allocator/pkg/core/model"
	"github.com/kestrelfp/deal-allocator/pkg/core/services"
)

// AllocateDealCmd creates the allocateDeal command
func AllocateDealCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocateDeal <deal_id> <service_package>",
		Short: "Allocate a deal to the adviser who can take it earliest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			householdType, _ := cmd.Flags().GetString("household")
			agreementStart, _ := cmd.Flags().GetString("agreement-start")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			deal := model.Deal{
				ID:             args[0],
				ServicePackage: args[1],
				HouseholdType:  householdType,
			}

			if agreementStart != "" {
				parsed, err := time.ParseInLocation("2006-01-02", agreementStart, time.UTC)
				if err != nil {
					return fmt.Errorf("agreement-start must be YYYY-MM-DD: %w", err)
				}
				deal.AgreementStart = parsed
			}

			result, err := services.AllocateDeal(
				app.Ctx,
				app.CRMClient,
				app.CalendarClient,
				app.Overrides,
				app.Database,
				app.Cfg,
				app.Logger,
				deal,
				dryRun,
			)
			if err != nil {
				return err
			}

			// Display results
			if result.DryRun {
				fmt.Printf("\n✓ Allocation computed (DRY RUN - nothing saved)\n\n")
			} else {
				fmt.Printf("\n✓ Deal allocated successfully!\n\n")
			}
			fmt.Printf("Deal ID:    %s\n", result.Allocation.DealID)
			fmt.Printf("Adviser:    %s\n", result.Allocation.AdviserEmail)
			fmt.Printf("Open Week:  %s\n\n", result.Allocation.OpenWeek)

			fmt.Printf("Ranked candidates:\n")
			for i, candidate := range result.Outcome.Ranked {
				fmt.Printf("  %2d. %s (week %s)\n", i+1, candidate.AdviserEmail, candidate.EarliestOpenWeek.Label())
			}

			if len(result.Outcome.Failures) > 0 {
				fmt.Printf("\n⚠️  %d adviser(s) excluded after computation failures:\n", len(result.Outcome.Failures))
				for _, failure := range result.Outcome.Failures {
					fmt.Printf("  ✗ %s: %v\n", failure.AdviserEmail, failure.Err)
				}
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("household", "", "Household type of the deal")
	cmd.Flags().String("agreement-start", "", "Agreement start date (YYYY-MM-DD)")
	cmd.Flags().Bool("dry-run", false, "Compute the allocation without saving it")

	return cmd
}
