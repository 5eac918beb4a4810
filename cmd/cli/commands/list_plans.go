package commands

import (
	"github.com/spf13/cobra"

	"github.com/jakechorley/supply-board/pkg/core/services"
)

// ListPlansCmd creates the listPlans command
func ListPlansCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listPlans",
		Short: "List stored plans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := services.ListPlans(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return err
			}

			if len(plans) == 0 {
				app.printf("No plans stored yet. Run generatePlan first.\n")
				return nil
			}

			app.printf("%-36s  %-19s  %5s  %10s  %s\n", "Plan ID", "Created", "Items", "Unassigned", "Note")
			for _, p := range plans {
				app.printf("%-36s  %-19s  %5d  %10d  %s\n",
					p.ID, p.CreatedAt.Format("2006-01-02 15:04:05"), p.ItemCount, p.UnassignedCount, p.Note)
			}
			return nil
		},
	}
}
