package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/pkg/core/services"
)

// GeneratePlanCmd creates the generatePlan command
func GeneratePlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generatePlan",
		Short: "Assign every demand item to a supplier and store the plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			app.Logger.Debug("generatePlan command", zap.Bool("dry_run", dryRun))

			source, err := app.Source()
			if err != nil {
				return err
			}

			result, err := services.GeneratePlan(app.Ctx, app.Database, source, app.Cfg, app.Logger, dryRun)
			if err != nil {
				return fmt.Errorf("failed to generate plan: %w", err)
			}

			if result.Stored {
				app.printf("\nPlan generated and stored\n\n")
			} else {
				app.printf("\nPlan generated (DRY RUN, not stored)\n\n")
			}
			printPlan(app, result.PlanResult)

			if len(result.Assignment.Unassigned) > 0 {
				app.printf("Unassigned items:\n")
				for _, key := range result.Assignment.Unassigned {
					app.printf("  %s\n", key)
				}
				app.printf("\n")
			}
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Generate without storing the plan")

	return cmd
}
