package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/regional-events/internal/notifier"
	"github.com/pfrederiksen/regional-events/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		listen  string
		refresh string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison table over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Listen
			}
			if !cmd.Flags().Changed("refresh") {
				refresh = a.cfg.RefreshCron
			}

			base, target, err := a.regions("", "")
			if err != nil {
				return err
			}
			store, err := a.store()
			if err != nil {
				return err
			}
			updaters, err := a.updaters()
			if err != nil {
				return err
			}

			server, err := web.New(store, web.Options{
				Listen:      listen,
				Base:        base,
				Target:      target,
				RefreshCron: refresh,
				Updaters:    updaters,
				Notifier: notifier.Multi{
					notifier.NewLogNotifier(),
					notifier.NewWriterNotifier(cmd.OutOrStdout()),
				},
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config: 127.0.0.1:8080)")
	cmd.Flags().StringVar(&refresh, "refresh", "", "Cron schedule for dataset refresh, empty to disable")

	return cmd
}
