// Package metrics provides Prometheus metrics for scrape runs.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	// MetricsNamespace is the namespace for all metrics.
	MetricsNamespace = "swecron"

	// pushJob is the job label used with the Pushgateway.
	pushJob = "swecron"
)

// Metrics holds the counters and gauges updated by every run.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal            *prometheus.CounterVec
	RunDurationSeconds   prometheus.Histogram
	SitesVisitedTotal    prometheus.Counter
	SitesFailedTotal     *prometheus.CounterVec
	PostingsFoundTotal   *prometheus.CounterVec
	NewPostingsTotal     prometheus.Counter
	NotificationsTotal   *prometheus.CounterVec
	StoredPostings       prometheus.Gauge
	LastSuccessTimestamp prometheus.Gauge
}

// New creates metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "runs_total",
			Help:      "Total number of runs by mode and outcome",
		}, []string{"mode", "status"}),
		RunDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a full run in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68min
		}),
		SitesVisitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "sites_visited_total",
			Help:      "Total number of career pages visited",
		}),
		SitesFailedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "sites_failed_total",
			Help:      "Total number of site extractions that failed or were skipped",
		}, []string{"site", "reason"}),
		PostingsFoundTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "postings_found_total",
			Help:      "Total number of relevant postings extracted",
		}, []string{"site"}),
		NewPostingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "new_postings_total",
			Help:      "Total number of postings not seen before",
		}),
		NotificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "notifications_total",
			Help:      "Total number of notification attempts by outcome",
		}, []string{"status"}),
		StoredPostings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "stored_postings",
			Help:      "Number of postings in the listing store after the last save",
		}),
		LastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
	}
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Push sends the current values to a Pushgateway
func (m *Metrics) Push(ctx context.Context, url string) error {
	return push.New(url, pushJob).Gatherer(m.registry).PushContext(ctx)
}
