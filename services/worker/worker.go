package worker

import (
	"context"
	"fmt"
	"io"
	"time"

	"swecron/config"
	"swecron/internal/extractor"
	"swecron/internal/filter"
	"swecron/internal/metrics"
	"swecron/internal/posting"
	"swecron/internal/selector"
	"swecron/logger"
	apperrors "swecron/pkg/errors"
	"swecron/services/notifier"
	"swecron/services/store"
)

// Options controls one run
type Options struct {
	// Write enables persist-and-notify mode; otherwise the run is a dry run
	Write bool
	// RetentionDays prunes dated postings older than this; 0 disables pruning
	RetentionDays int

	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	SelectorTimeout   time.Duration
}

// Result summarises one run
type Result struct {
	// Found is the number of distinct relevant postings scraped
	Found int
	// New is the number of postings absent from the store
	New int
	// Total is the store size after the run
	Total int
	// Notified is true when the notification reached at least one transport
	Notified bool
}

// Worker handles the scraping, change detection and notification of a run
type Worker struct {
	sites     []config.Site
	extractor extractor.Extractor
	relevance *filter.Relevance
	store     store.Store
	notifier  notifier.Notifier
	metrics   *metrics.Metrics
	out       io.Writer
	now       func() time.Time
	opts      Options
}

// NewWorker creates a new worker. st and n may be nil for dry runs; out
// receives the dry-run listing.
func NewWorker(
	sites []config.Site,
	ext extractor.Extractor,
	relevance *filter.Relevance,
	st store.Store,
	n notifier.Notifier,
	m *metrics.Metrics,
	out io.Writer,
	opts Options,
) *Worker {
	if m == nil {
		m = metrics.New()
	}
	if relevance == nil {
		relevance = filter.NewRelevance(nil)
	}
	return &Worker{
		sites:     sites,
		extractor: ext,
		relevance: relevance,
		store:     st,
		notifier:  n,
		metrics:   m,
		out:       out,
		now:       time.Now,
		opts:      opts,
	}
}

func (w *Worker) mode() string {
	if w.opts.Write {
		return "write"
	}
	return "dry-run"
}

// RunOnce scrapes every site once. In write mode new postings are notified
// and merged into the store; a dry run only prints what was found.
func (w *Worker) RunOnce(ctx context.Context) (Result, error) {
	start := w.now()
	result, err := w.run(ctx)

	status := "success"
	if err != nil {
		status = "error"
	} else {
		w.metrics.LastSuccessTimestamp.Set(float64(w.now().Unix()))
	}
	w.metrics.RunsTotal.WithLabelValues(w.mode(), status).Inc()
	w.metrics.RunDurationSeconds.Observe(w.now().Sub(start).Seconds())

	return result, err
}

func (w *Worker) run(ctx context.Context) (Result, error) {
	var result Result
	log := logger.ForPipeline()

	if w.opts.Write && w.store == nil {
		return result, apperrors.NewConfiguration("write mode requires a listing store", nil)
	}

	if err := w.extractor.Start(ctx); err != nil {
		if apperrors.TypeOf(err) == "" {
			err = apperrors.NewDependency("extraction engine unavailable", err)
		}
		return result, err
	}
	defer func() {
		if err := w.extractor.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close extraction engine")
		}
	}()

	scraped, err := w.scrape(ctx)
	if err != nil {
		return result, err
	}
	unique := posting.Dedupe(scraped)
	result.Found = len(unique)

	if !w.opts.Write {
		w.printDryRun(unique)
		return result, nil
	}

	existing, err := w.store.Load(ctx)
	if err != nil {
		return result, err
	}
	result.Total = len(existing)
	w.metrics.StoredPostings.Set(float64(len(existing)))

	newPostings := posting.Diff(unique, existing)
	result.New = len(newPostings)
	if len(newPostings) == 0 {
		log.Info().Msg("No new intern postings found.")
		return result, nil
	}
	w.metrics.NewPostingsTotal.Add(float64(len(newPostings)))
	log.Info().Int("new", len(newPostings)).Msgf("%d new intern job postings found", len(newPostings))

	result.Notified = w.notify(ctx, newPostings)

	merged := store.MergeAndPrune(newPostings, existing, w.opts.RetentionDays, w.now())
	if err := w.store.Save(ctx, merged); err != nil {
		return result, err
	}
	result.Total = len(merged)
	w.metrics.StoredPostings.Set(float64(len(merged)))
	log.Info().Int("total", len(merged)).Msgf("Listings saved. Total postings: %d", len(merged))

	return result, nil
}

// scrape visits every site in order. Per-site failures are logged and the
// site contributes nothing.
func (w *Worker) scrape(ctx context.Context) ([]posting.Posting, error) {
	var all []posting.Posting
	for _, site := range w.sites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log := logger.ForSite(site.Name)
		log.Info().Msgf("Visiting %s", site.Name)

		query, ok := selector.Normalize(site.Tag)
		if site.Link == "" || !ok {
			log.Warn().Msgf("Skipping %s: missing link or tag", site.Name)
			w.metrics.SitesFailedTotal.WithLabelValues(site.Name, "config").Inc()
			continue
		}
		w.metrics.SitesVisitedTotal.Inc()

		candidates, err := w.extractor.Extract(ctx, extractor.Request{
			Site:              site.Name,
			URL:               site.Link,
			Selector:          query,
			NavigationTimeout: w.opts.NavigationTimeout,
			SettleDelay:       w.opts.SettleDelay,
			SelectorTimeout:   w.opts.SelectorTimeout,
		})
		if err != nil {
			log.Error().Err(err).Msgf("Failed to scrape %s", site.Name)
			w.metrics.SitesFailedTotal.WithLabelValues(site.Name, "extraction").Inc()
			continue
		}
		log.Info().Int("elements", len(candidates)).Msgf("Found %d postings", len(candidates))

		postings := extractor.Postings(site.Name, site.Link, candidates, w.relevance)
		w.metrics.PostingsFoundTotal.WithLabelValues(site.Name).Add(float64(len(postings)))
		all = append(all, postings...)
	}
	return all, nil
}

func (w *Worker) printDryRun(postings []posting.Posting) {
	if len(postings) == 0 {
		fmt.Fprintln(w.out, "No intern postings found (scraped results empty).")
		return
	}
	fmt.Fprintf(w.out, "\n%d intern job postings (scraped):\n", len(postings))
	for _, p := range postings {
		fmt.Fprintf(w.out, "- [%s] %s -> %s\n", p.Site, p.Title, p.Link())
	}
}

// notify sends the new postings. Failures are logged only; the store update
// always follows.
func (w *Worker) notify(ctx context.Context, postings []posting.Posting) bool {
	if w.notifier == nil {
		return false
	}
	log := logger.ForNotifier(w.notifier.Name())

	message := notifier.FormatMessage(postings)
	log.Debug().Str("message", message).Msg("Sending notification")

	if err := w.notifier.Notify(ctx, message); err != nil {
		log.Error().Err(err).Msg("Error sending notification")
		w.metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return false
	}
	w.metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	return true
}
