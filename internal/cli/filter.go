package cli

import (
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/regional-events/internal/filter"
	"github.com/pfrederiksen/regional-events/internal/logger"
)

// filterFlags are the row selection flags shared by table and calendar
type filterFlags struct {
	types     string
	title     string
	dateRange string
	kind      string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ff.types, "type", "", "Only these event types, comma-separated (e.g. challenge,team)")
	cmd.Flags().StringVar(&ff.title, "title", "", "Only events whose title contains this text")
	cmd.Flags().StringVar(&ff.dateRange, "range", "", "Only target dates in range: 2024-01-10..2024-02-20, 2024-03 or 2024")
	cmd.Flags().StringVar(&ff.kind, "kind", "", "Only 'dated' or 'predicted' rows")
}

func (ff *filterFlags) build() (*filter.Filter, error) {
	f, err := filter.Parse(ff.types, ff.title, ff.dateRange, ff.kind)
	if err != nil {
		return nil, err
	}
	if !f.IsEmpty() {
		logger.Debug("Filtering rows", logger.Fields{"filter": f.String()})
	}
	return f, nil
}
