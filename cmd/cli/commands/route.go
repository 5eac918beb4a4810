package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/services"
)

// RouteCmd creates the route command
func RouteCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route <supplierID> [stop...]",
		Short: "Find the shortest delivery run from a supplier",
		Long: `Find the shortest delivery run from a supplier through a set of producers, using the
distance tables stored with the plan. With --week the stops are the producers of every
item the supplier starts that week.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, _ := cmd.Flags().GetString("plan")
			weekLabel, _ := cmd.Flags().GetString("week")

			req := services.RouteRequest{PlanID: planID, SupplierID: args[0], Stops: args[1:]}
			if weekLabel != "" {
				if len(req.Stops) > 0 {
					return fmt.Errorf("stops cannot be combined with --week")
				}
				week, err := calendar.Parse(weekLabel)
				if err != nil {
					return err
				}
				req.Start = week
			} else if len(req.Stops) == 0 {
				return fmt.Errorf("give at least one stop or --week")
			}

			result, err := services.SolveRoute(app.Ctx, app.Database, app.Cfg, app.Logger, req)
			if err != nil {
				return err
			}

			if !result.Route.Found {
				app.printf("\nNo route from %s: a required distance is missing\n", req.SupplierID)
				return nil
			}

			app.printf("\nRoute:   %s\n", strings.Join(append([]string{result.Route.Origin}, result.Route.Stops...), " -> "))
			app.printf("Time:    %.1f min\n", result.Route.TotalMinutes)
			app.printf("Length:  %.1f km\n", result.Route.TotalKm)
			app.printf("Cost:    %s\n", result.Cost.StringFixed(2))
			app.printf("Checked: %d orderings in %s\n\n", result.Route.Evaluated, result.Took)
			return nil
		},
	}

	cmd.Flags().String("plan", "", "Plan whose distances are used (defaults to the latest plan)")
	cmd.Flags().String("week", "", "Route every producer the supplier starts in this week")

	return cmd
}
