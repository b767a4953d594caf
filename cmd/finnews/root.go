package main

import (
	"fmt"
	"log/slog"

	"github.com/auriorajaa/safe/app"
	"github.com/auriorajaa/safe/config"
	"github.com/auriorajaa/safe/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions is shared by every subcommand. cfg and logger are filled in
// by the root command's PersistentPreRunE.
type rootOptions struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "finnews",
		Short: "Financial news scraping and aggregation",
		Long: `finnews extracts financial news articles and aggregates news feeds.

Example usage:
  finnews serve                                   # Run the HTTP API
  finnews scrape https://www.businessinsider.com/some-story
  finnews news --category "stock market" --category indonesian-investment
  finnews categories list                         # Show keyword category queries`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default is $FINNEWS_CONFIG or ~/.finnews/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newServeCmd(opts),
		newScrapeCmd(opts),
		newNewsCmd(opts),
		newCategoriesCmd(opts),
	)
	return cmd
}

// load reads .env, the config file and the environment, then builds the
// logger on the command's stderr.
func (o *rootOptions) load(cmd *cobra.Command) error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}

	o.cfg = cfg
	o.logger = logging.New(cfg.Log, cmd.ErrOrStderr())
	return nil
}

func (o *rootOptions) build() (*app.App, error) {
	return app.Build(o.cfg, o.logger)
}
