// Package cmd implements the swecron command line.
package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swecron/config"
	"swecron/internal/extractor"
	"swecron/internal/filter"
	"swecron/internal/metrics"
	"swecron/logger"
	"swecron/services/worker"

	"github.com/spf13/cobra"
)

type options struct {
	write    bool
	company  string
	schedule string
	sites    string
	listings string
	engine   string
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand(os.Stdout).ExecuteContext(context.Background())
}

// NewRootCommand builds the swecron command. Dry-run output goes to stdout.
func NewRootCommand(stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "swecron",
		Short: "Scrape career pages for internship and new-grad postings",
		Long: `swecron visits the configured career pages, keeps postings whose title
matches the keyword set and, with --write, notifies about postings it has
not seen before and records them in the listing store.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, stdout)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.write, "write", false, "notify about new postings and update the listing store")
	flags.StringVar(&opts.company, "company", "", "only scrape the named site (case-insensitive)")
	flags.StringVar(&opts.schedule, "schedule", "", "cron spec; run repeatedly instead of once (overrides SCHEDULE)")
	flags.StringVar(&opts.sites, "sites", "", "site configuration file (overrides SITES_PATH)")
	flags.StringVar(&opts.listings, "listings", "", "listing snapshot file (overrides LISTINGS_PATH)")
	flags.StringVar(&opts.engine, "engine", "", "extraction engine: playwright, chromedp or static (overrides ENGINE)")

	return cmd
}

// loadConfig reads the environment and applies flag overrides
func loadConfig(opts *options) *config.Config {
	cfg := config.LoadConfig()
	if opts.schedule != "" {
		cfg.Schedule = opts.schedule
	}
	if opts.sites != "" {
		cfg.SitesPath = opts.sites
	}
	if opts.listings != "" {
		cfg.ListingsPath = opts.listings
	}
	if opts.engine != "" {
		cfg.Engine = opts.engine
	}
	return cfg
}

func run(cmd *cobra.Command, opts *options, stdout io.Writer) error {
	ctx := cmd.Context()
	log := logger.ForPipeline()

	cfg := loadConfig(opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	sites, err := config.LoadSites(cfg.SitesPath)
	if err != nil {
		return err
	}
	sites, err = config.FilterSites(sites, opts.company)
	if err != nil {
		return err
	}
	if opts.company != "" {
		log.Info().Msgf("Scraping only: %s", sites[0].Name)
	}

	services, err := initializeServices(ctx, cfg, opts.write)
	if err != nil {
		return err
	}
	defer services.Cleanup()

	ext, err := extractor.New(cfg.Engine, services.Blocklist)
	if err != nil {
		return err
	}

	relevance := filter.NewRelevance(cfg.Keywords)
	m := metrics.New()
	w := worker.NewWorker(
		sites,
		ext,
		relevance,
		services.Store,
		services.Notifier,
		m,
		stdout,
		worker.Options{
			Write:             opts.write,
			RetentionDays:     cfg.RetentionDays,
			NavigationTimeout: cfg.NavigationTimeout,
			SettleDelay:       cfg.SettleDelay,
			SelectorTimeout:   cfg.SelectorTimeout,
		},
	)

	log.Info().
		Str("environment", cfg.Environment).
		Str("engine", cfg.Engine).
		Bool("write", opts.write).
		Int("sites", len(sites)).
		Strs("keywords", relevance.Keywords()).
		Msg("Starting swecron")

	if cfg.Schedule != "" {
		return runScheduled(ctx, cfg, w, m)
	}

	result, err := w.RunOnce(ctx)
	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if pushErr := m.Push(pushCtx, cfg.PushgatewayURL); pushErr != nil {
			logger.LogError("metrics", pushErr, "Failed to push metrics to %s", cfg.PushgatewayURL)
		}
		cancel()
	}
	if err != nil {
		return err
	}

	log.Debug().
		Int("found", result.Found).
		Int("new", result.New).
		Int("total", result.Total).
		Bool("notified", result.Notified).
		Msg("Run complete")
	return nil
}

// runScheduled runs the worker on the cron spec until SIGINT or SIGTERM
func runScheduled(ctx context.Context, cfg *config.Config, w *worker.Worker, m *metrics.Metrics) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		server := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.LogInfo("metrics", "Serving metrics on %s/metrics", cfg.MetricsAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.LogError("metrics", err, "Metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	scheduler := worker.NewScheduler(w, cfg.Schedule)
	if err := scheduler.Run(ctx); err != nil {
		return err
	}
	logger.ForScheduler().Info().Msg("Shutting down gracefully...")
	return nil
}
