package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/regional-events/internal/compare"
	"github.com/pfrederiksen/regional-events/internal/logger"
	"github.com/pfrederiksen/regional-events/internal/render"
)

func newTableCmd(a *app) *cobra.Command {
	var (
		base        string
		target      string
		format      string
		oldestFirst bool
		filters     filterFlags
	)

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Render the comparison table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			renderer, err := render.New(outFormat)
			if err != nil {
				return err
			}

			f, err := filters.build()
			if err != nil {
				return err
			}

			table, err := a.buildTable(base, target)
			if err != nil {
				return err
			}
			table = f.Apply(table)

			if err := renderer.Render(cmd.OutOrStdout(), table, render.Options{OldestFirst: oldestFirst}); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			a.dumpMetrics()
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Base region (japan, taiwan, korea, global, china)")
	cmd.Flags().StringVar(&target, "target", "", "Target region (japan, taiwan, korea, global, china)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or html")
	cmd.Flags().BoolVar(&oldestFirst, "oldest-first", false, "List events in dataset order instead of newest first")
	filters.register(cmd)

	return cmd
}

// buildTable loads the dataset and compares base to target
func (a *app) buildTable(base, target string) (*compare.Table, error) {
	b, t, err := a.regions(base, target)
	if err != nil {
		return nil, err
	}

	store, err := a.store()
	if err != nil {
		return nil, err
	}
	records, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	logger.Debug("Loaded dataset", logger.Fields{"path": store.Path(), "records": len(records)})

	start := time.Now()
	table, err := compare.Build(records, b, t)
	logger.RecordTiming("cli.build_table", time.Since(start))
	if err != nil {
		return nil, err
	}
	logger.Debug("Built table", logger.Fields{"base": b, "target": t, "rows": len(table.Rows)})
	return table, nil
}
