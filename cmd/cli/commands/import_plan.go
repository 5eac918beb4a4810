package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/supply-board/pkg/core/services"
)

// ImportPlanCmd creates the importPlan command
func ImportPlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "importPlan <file>",
		Short: "Store an edited board JSON file as a new plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, _ := cmd.Flags().GetString("note")

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			result, err := services.ImportPlan(app.Ctx, app.Database, app.Cfg, app.Logger, f, note)
			if err != nil {
				return err
			}

			app.printf("\nBoard imported, new plan stored\n\n")
			printPlan(app, result)
			return nil
		},
	}

	cmd.Flags().String("note", "", "Note stored with the plan")

	return cmd
}
