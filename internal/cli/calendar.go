package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/regional-events/internal/calendar"
	"github.com/pfrederiksen/regional-events/internal/logger"
)

func newCalendarCmd(a *app) *cobra.Command {
	var (
		base    string
		target  string
		output  string
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Export the target region schedule as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filters.build()
			if err != nil {
				return err
			}
			table, err := a.buildTable(base, target)
			if err != nil {
				return err
			}
			table = f.Apply(table)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating calendar file: %w", err)
				}
				defer file.Close() // nolint:errcheck
				w = file
			}

			if err := calendar.WriteICS(w, table, time.Now()); err != nil {
				return fmt.Errorf("writing calendar: %w", err)
			}
			if output != "" && output != "-" {
				logger.Info("Wrote calendar", logger.Fields{"output": output, "events": len(table.Rows)})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Base region")
	cmd.Flags().StringVar(&target, "target", "", "Target region")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	filters.register(cmd)

	return cmd
}
