package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/regional-events/internal/config"
	"github.com/pfrederiksen/regional-events/internal/event"
	"github.com/pfrederiksen/regional-events/internal/logger"
	"github.com/pfrederiksen/regional-events/internal/scraper"
	"github.com/pfrederiksen/regional-events/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// app holds the state shared by all subcommands of one invocation
type app struct {
	configPath string
	dataFile   string
	verbose    bool

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "regional-events",
		Short: "Compare game event release dates across regions",
		Long: `A tool to compare event release dates between two regional editions.
Events already released in the target region are shown with their real dates;
later events get a predicted target date projected from the latest release.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&a.dataFile, "data", "", "Dataset file (default from config: static/data.json)")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newTableCmd(a),
		newCalendarCmd(a),
		newServeCmd(a),
		newCaptureCmd(a),
		newUpdateCmd(a),
	)

	return cmd
}

// setup loads the configuration and installs the default logger
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataFile != "" {
		cfg.DataFile = a.dataFile
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	a.cfg = cfg

	logger.SetDefault(logger.New(logger.ParseLevel(cfg.LogLevel), cmd.ErrOrStderr()))
	logger.Debug("Loaded configuration", logger.Fields{"config": a.configPath, "data_file": cfg.DataFile})
	return nil
}

func (a *app) store() (*storage.Storage, error) {
	store, err := storage.New(a.cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

// regions resolves the base and target flags, falling back to the configured defaults
func (a *app) regions(base, target string) (event.Region, event.Region, error) {
	if base == "" {
		base = a.cfg.Base
	}
	if target == "" {
		target = a.cfg.Target
	}
	b, err := event.ParseRegion(base)
	if err != nil {
		return "", "", err
	}
	t, err := event.ParseRegion(target)
	if err != nil {
		return "", "", err
	}
	return b, t, nil
}

func (a *app) client() *scraper.Client {
	return scraper.NewClient(scraper.Options{
		UserAgent:         a.cfg.Scraper.UserAgent,
		Timeout:           a.cfg.Scraper.Timeout,
		RequestsPerSecond: a.cfg.Scraper.RequestsPerSecond,
	})
}

// updaters returns the scrapers for names, or all of them when names is empty
func (a *app) updaters(names ...string) ([]scraper.Updater, error) {
	client := a.client()
	all := []scraper.Updater{
		scraper.NewNoticeScraper(client, a.cfg.Scraper.NoticeAPIURL, a.cfg.Scraper.NoticeBaseURL),
		scraper.NewWikiScraper(client, a.cfg.Scraper.WikiBaseURL),
	}
	if len(names) == 0 {
		return all, nil
	}

	var selected []scraper.Updater
	for _, name := range names {
		found := false
		for _, u := range all {
			if u.Name() == strings.ToLower(name) {
				selected = append(selected, u)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown source: %s (must be 'japan' or 'global')", name)
		}
	}
	return selected, nil
}

// dumpMetrics logs the collected metrics at debug level
func (a *app) dumpMetrics() {
	if a.verbose {
		logger.Debug("Metrics", logger.GetMetricsSnapshot())
	}
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
