package commands

import (
	"github.com/spf13/cobra"

	"github.com/jakechorley/supply-board/pkg/core/services"
)

// ShowPlanCmd creates the showPlan command
func ShowPlanCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "showPlan [planID]",
		Short: "Show a plan's lanes, penalties and transport",
		Long:  "Show a plan's lanes, penalties and transport. If no planID is provided, shows the latest plan.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID := ""
			if len(args) > 0 {
				planID = args[0]
			}

			result, err := services.GetPlanReport(app.Ctx, app.Database, app.Cfg, app.Logger, planID)
			if err != nil {
				return err
			}

			app.printf("\n")
			printPlan(app, result)
			return nil
		},
	}
}
