package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/supply-board/pkg/core/services"
)

// ExportPlanCmd creates the exportPlan command
func ExportPlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exportPlan [planID]",
		Short: "Export a plan as board JSON or as a CSV summary",
		Long:  "Export a plan as board JSON or as a CSV summary. If no planID is provided, exports the latest plan.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID := ""
			if len(args) > 0 {
				planID = args[0]
			}
			format, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("out")

			var w io.Writer = app.Out
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}

			result, err := services.ExportPlan(app.Ctx, app.Database, app.Cfg, app.Logger, planID, format, w)
			if err != nil {
				return err
			}

			if outPath != "" {
				app.printf("Plan %s written to %s\n", result.Plan.ID, outPath)
			}
			return nil
		},
	}

	cmd.Flags().String("format", services.FormatJSON, "Output format: json or csv")
	cmd.Flags().String("out", "", "Output file (defaults to stdout)")

	return cmd
}
