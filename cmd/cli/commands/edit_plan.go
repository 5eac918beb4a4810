package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/supply-board/pkg/core/edits"
	"github.com/jakechorley/supply-board/pkg/core/model"
	"github.com/jakechorley/supply-board/pkg/core/services"
)

// EditPlanCmd creates the editPlan command
func EditPlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "editPlan <itemKey>",
		Short: "Edit an item's name, amount or shift limits, storing the result as a new plan",
		Long: `Edit an item given as <id>/<F|M>. The name and shift limits are shared with the
correlated sibling; the amount only changes on the item itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := model.ParseItemKey(args[0])
			if err != nil {
				return err
			}

			var patch edits.Patch
			flags := cmd.Flags()
			if flags.Changed("name") {
				name, _ := flags.GetString("name")
				patch.Name = &name
			}
			if flags.Changed("amount") {
				amount, _ := flags.GetInt("amount")
				patch.Amount = &amount
			}
			if flags.Changed("early") {
				early, _ := flags.GetInt("early")
				patch.EarlyShiftMax = &early
			}
			if flags.Changed("late") {
				late, _ := flags.GetInt("late")
				patch.LateShiftMax = &late
			}
			if patch == (edits.Patch{}) {
				return fmt.Errorf("nothing to edit: pass at least one of --name, --amount, --early or --late")
			}

			planID, _ := flags.GetString("plan")
			result, err := services.EditPlanItem(app.Ctx, app.Database, app.Cfg, app.Logger, planID, key, patch)
			if err != nil {
				return fmt.Errorf("failed to edit item: %w", err)
			}

			app.printf("\nItem edited, new plan stored\n\n")
			printPlan(app, result)
			return nil
		},
	}

	cmd.Flags().String("plan", "", "Plan to edit (defaults to the latest plan)")
	cmd.Flags().String("name", "", "New producer name")
	cmd.Flags().Int("amount", 0, "New amount")
	cmd.Flags().Int("early", 0, "Maximum weeks the item may start early")
	cmd.Flags().Int("late", 0, "Maximum weeks the item may start late")

	return cmd
}
