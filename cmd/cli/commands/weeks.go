package commands

import (
	"github.com/spf13/cobra"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
)

// WeeksCmd creates the weeks command
func WeeksCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "weeks <from> <to>",
		Short: "List the ISO weeks between two weeks with their Mondays",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := calendar.Parse(args[0])
			if err != nil {
				return err
			}
			to, err := calendar.Parse(args[1])
			if err != nil {
				return err
			}
			count, err := calendar.CountInclusive(from, to)
			if err != nil {
				return err
			}

			weeks := calendar.RangeInclusive(from, to)
			for _, span := range calendar.YearSpans(weeks) {
				app.printf("%d: %d weeks\n", span.Year, span.Count)
			}
			app.printf("\n")
			for _, w := range weeks {
				app.printf("%s  %s\n", w, w.Monday().Format("2006-01-02"))
			}
			app.printf("\n%d weeks\n", count)
			return nil
		},
	}
}
