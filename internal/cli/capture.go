package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/regional-events/internal/capture"
)

func newCaptureCmd(a *app) *cobra.Command {
	opts := capture.Options{}

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Save a PNG screenshot of the served table",
		Long: `Capture loads the table page of a running "serve" instance in headless
Chromium and writes a full-page PNG screenshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.URL == "" {
				opts.URL = "http://" + a.cfg.Listen + "/"
			}
			return capture.PNG(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "", "Page to capture (default: the configured listen address)")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "table.png", "PNG output path")
	cmd.Flags().IntVar(&opts.Width, "width", capture.DefaultWidth, "Viewport width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", capture.DefaultHeight, "Viewport height in pixels")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Maximum time for the capture")

	return cmd
}
