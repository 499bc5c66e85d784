package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pfrederiksen/regional-events/internal/compare"
)

// TextRenderer writes an aligned plain text table
type TextRenderer struct{}

func (TextRenderer) Render(w io.Writer, table *compare.Table, opts Options) error {
	views := Views(table, opts)
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No events found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tTitle\t%s\t%s\tOffset\n", table.Base.Label(), table.Target.Label())

	for _, v := range views {
		title := v.BaseTitle
		if v.TargetTitle != "" {
			title = v.TargetTitle + " / " + v.BaseTitle
		}

		target := v.TargetStart
		if v.TargetDuration != "" {
			target += " (" + v.TargetDuration + ")"
		}
		switch v.Trend {
		case "excess":
			target += " +"
		case "under":
			target += " -"
		}

		fmt.Fprintf(tw, "%d\t%s\t%s (%s)\t%s\t%s\n", v.Number, title, v.BaseStart, v.BaseDuration, target, v.Offset)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d events, %d predicted\n", len(views), countPredicted(views))
	return err
}

func countPredicted(views []RowView) int {
	n := 0
	for _, v := range views {
		if v.Predicted {
			n++
		}
	}
	return n
}
