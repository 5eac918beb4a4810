package commands

import (
	"strings"

	"github.com/jakechorley/supply-board/pkg/core/services"
)

// printPlan writes the board summary and the evaluation of a plan
func printPlan(app *AppContext, result *services.PlanResult) {
	plan, rep := result.Plan, result.Report

	app.printf("Plan ID:  %s\n", plan.ID)
	if plan.ParentID != "" {
		app.printf("Parent:   %s\n", plan.ParentID)
	}
	app.printf("Note:     %s\n", plan.Note)
	app.printf("Created:  %s\n", plan.CreatedAt.Format("2006-01-02 15:04:05"))
	if len(result.Layout.View) > 0 {
		app.printf("Weeks:    %s .. %s\n", result.Layout.View[0], result.Layout.View[len(result.Layout.View)-1])
	}
	app.printf("\n")

	app.printf("%-12s  %-20s  %8s  %8s\n", "Supplier", "Name", "Capacity", "Peak")
	app.printf("------------  --------------------  --------  --------\n")
	for _, s := range plan.Suppliers {
		marker := ""
		if s.IsOverrun() {
			marker = "  over capacity"
		}
		app.printf("%-12s  %-20s  %8d  %8d%s\n", s.ID, s.Name, s.Capacity, s.PeakUsage, marker)
	}
	app.printf("\n")

	app.printf("Penalties (%d):\n", rep.PenaltyCount())
	app.printf("  Shift weeks:       %d (%d items)\n", rep.ShiftPenaltyWeeks, len(rep.ShiftViolations))
	app.printf("  Unassigned:        %d items, amount %d\n", rep.UnassignedCount, rep.UnassignedAmount)
	app.printf("  Over production:   %d\n", rep.OverProduction)
	app.printf("  Under production:  %d\n", rep.UnderProduction)
	app.printf("\n")

	if len(rep.Transport) == 0 {
		return
	}
	app.printf("Transport:\n")
	for _, group := range rep.Transport {
		stops := strings.Join(group.Stops, ", ")
		if group.Route.Found && len(group.Route.Stops) > 0 {
			stops = strings.Join(group.Route.Stops, " -> ")
		}
		app.printf("  %-8s  %-12s  %-10s  %7.1f km  %7.1f min  %8s  %s\n",
			group.Start, group.SupplierID, group.Status, group.Route.TotalKm, group.Route.TotalMinutes, group.Cost.StringFixed(2), stops)
	}
	app.printf("  Total: %.1f km, %.1f min, cost %s (%d unroutable, %d skipped)\n\n",
		rep.TotalKm, rep.TotalMinutes, rep.TransportCost.StringFixed(2), rep.Unroutable, rep.Skipped)
}
