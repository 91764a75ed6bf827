package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jota-rss/jota-feed-harvester/internal/app"
	"github.com/jota-rss/jota-feed-harvester/internal/config"
	"github.com/jota-rss/jota-feed-harvester/internal/logger"
	"github.com/jota-rss/jota-feed-harvester/internal/scraper"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "harvester start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("harvester", pflag.ContinueOnError)
	flags.StringSlice("tags", nil, "tags to scrape (comma separated)")
	flags.String("tags_file", "", "path to a file with one tag per line")
	flags.String("tags_env_var", "", "environment variable holding a comma separated tag list")
	flags.String("output_dir", "public", "directory where feed XML files are written")
	flags.Int("max_pages", scraper.DefaultMaxPages, "maximum listing pages fetched per tag")
	flags.String("log_level", "info", "log level (debug, info, warn, error)")
	flags.String("publishers_file", "", "optional publishers registry file (YAML or JSON)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("harvester starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	harvester, err := app.NewHarvester(ctx, cfg, logger.Default())
	if err != nil {
		logger.ErrorObj("failed to initialize harvester", "error", err.Error())
		return err
	}
	defer harvester.Close()

	if err := harvester.Run(ctx); err != nil {
		return fmt.Errorf("harvester run: %w", err)
	}

	return nil
}
