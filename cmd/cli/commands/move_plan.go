package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/model"
	"github.com/jakechorley/supply-board/pkg/core/services"
)

// MovePlanCmd creates the movePlan command
func MovePlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movePlan <itemKey>",
		Short: "Move an item to another week or supplier, storing the result as a new plan",
		Long: `Move an item, given as <id>/<F|M>, to another week or supplier. Its correlated sibling
follows to the same week. Capacity is not checked; overruns are reported.

Either --start/--supplier or --dx/--dy (a drag in board units) must be given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := model.ParseItemKey(args[0])
			if err != nil {
				return err
			}

			planID, _ := cmd.Flags().GetString("plan")
			startLabel, _ := cmd.Flags().GetString("start")
			supplierID, _ := cmd.Flags().GetString("supplier")
			dx, _ := cmd.Flags().GetFloat64("dx")
			dy, _ := cmd.Flags().GetFloat64("dy")

			req := services.MoveRequest{
				PlanID:     planID,
				Key:        key,
				SupplierID: supplierID,
				Drag:       cmd.Flags().Changed("dx") || cmd.Flags().Changed("dy"),
				DX:         dx,
				DY:         dy,
			}
			if startLabel != "" {
				if req.Start, err = calendar.Parse(startLabel); err != nil {
					return err
				}
			}
			if req.Drag && (startLabel != "" || supplierID != "") {
				return fmt.Errorf("--dx/--dy cannot be combined with --start or --supplier")
			}
			if !req.Drag && startLabel == "" && supplierID == "" {
				return fmt.Errorf("one of --start, --supplier or --dx/--dy is required")
			}

			app.Logger.Debug("movePlan command", zap.Stringer("item", key), zap.String("plan_id", planID))

			result, err := services.MovePlanItem(app.Ctx, app.Database, app.Cfg, app.Logger, req)
			if err != nil {
				return fmt.Errorf("failed to move item: %w", err)
			}

			app.printf("\nItem moved, new plan stored\n\n")
			printPlan(app, result)
			return nil
		},
	}

	cmd.Flags().String("plan", "", "Plan to move from (defaults to the latest plan)")
	cmd.Flags().String("start", "", "New start week, e.g. 2024-W12")
	cmd.Flags().String("supplier", "", "New supplier id")
	cmd.Flags().Float64("dx", 0, "Horizontal drag distance in board units")
	cmd.Flags().Float64("dy", 0, "Vertical drag distance in board units")

	return cmd
}
