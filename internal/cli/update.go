package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/regional-events/internal/logger"
	"github.com/pfrederiksen/regional-events/internal/notifier"
	"github.com/pfrederiksen/regional-events/internal/scraper"
)

func newUpdateCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:       "update [japan|global]...",
		Short:     "Refresh the dataset from the upstream sources",
		Long:      `Update runs the japan notice scraper and/or the global wiki scraper in the given order (both when none is named) and saves the dataset when anything changed.`,
		ValidArgs: []string{"japan", "global"},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updaters, err := a.updaters(args...)
			if err != nil {
				return err
			}

			store, err := a.store()
			if err != nil {
				return err
			}
			records, err := store.Load()
			if err != nil {
				return fmt.Errorf("loading dataset: %w", err)
			}

			out := cmd.OutOrStdout()
			report := notifier.NewWriterNotifier(out)
			total := 0
			for _, u := range updaters {
				logger.Info("Updating dataset", logger.Fields{"source": u.Name()})
				result, err := scraper.Run(cmd.Context(), u, records)
				if err != nil {
					return fmt.Errorf("updating %s: %w", u.Name(), err)
				}
				records = result.Records
				if err := report.Notify(u.Name(), result.Changes); err != nil {
					return err
				}
				total += len(result.Changes)
			}

			a.dumpMetrics()

			if total == 0 {
				fmt.Fprintln(out, "No changes.")
				return nil
			}
			if dryRun {
				fmt.Fprintf(out, "\n%d changes (dry run, not saved)\n", total)
				return nil
			}
			if err := store.Save(records); err != nil {
				return fmt.Errorf("saving dataset: %w", err)
			}
			fmt.Fprintf(out, "\n%d changes saved to %s\n", total, store.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without saving the dataset")

	return cmd
}
