package commands

import (
	"github.com/spf13/cobra"

	"github.com/jakechorley/supply-board/pkg/core/services"
)

// PublishPlanCmd creates the publishPlan command
func PublishPlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publishPlan [planID]",
		Short: "Publish a plan's summary to Google Sheets",
		Long:  "Append a plan's per-item summary to a tab of the configured spreadsheet. If no planID is provided, publishes the latest plan.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID := ""
			if len(args) > 0 {
				planID = args[0]
			}
			tab, _ := cmd.Flags().GetString("tab")

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			rows, err := services.PublishPlan(app.Ctx, app.Database, client, app.Cfg, app.Logger, planID, tab)
			if err != nil {
				return err
			}

			app.printf("\nPublished %d rows to tab %q of %s\n\n", rows, tab, app.Cfg.Sheets.SpreadsheetID)
			return nil
		},
	}

	cmd.Flags().String("tab", "Plan", "Spreadsheet tab to append to")

	return cmd
}
