package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ListAdvisersCmd creates the listAdvisers command
func ListAdvisersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listAdvisers",
		Short: "List all advisers from the CRM roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			advisers, err := app.CRMClient.ListAdvisers(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list advisers: %w", err)
			}

			app.Logger.Info("Advisers fetched successfully", zap.Int("count", len(advisers)))

			fmt.Printf("\nFound %d advisers:\n\n", len(advisers))
			for _, a := range advisers {
				status := "accepting clients"
				if !a.AcceptingClients {
					status = "not accepting"
				}
				podInfo := ""
				if a.PodType != "" {
					podInfo = fmt.Sprintf(" [%s]", a.PodType)
				}
				fmt.Printf("- %s (%s) - %s%s - %s\n",
					a.Email,
					a.OwnerID,
					status,
					podInfo,
					strings.Join(a.ServicePackages, ", "),
				)
			}

			return nil
		},
	}
}
