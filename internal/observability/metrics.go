package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	RecordsLoaded      prometheus.Counter
	UnknownMonthDays   prometheus.Counter
	DegenerateTrends   prometheus.Gauge
	SnapshotReady      prometheus.Gauge
	LoadDuration       prometheus.Histogram
	LoadFailures       prometheus.Counter
	TrendsPublished    prometheus.Counter
	TrendPublishErrors prometheus.Counter

	// Rendering metrics.
	FiguresRendered *prometheus.CounterVec   // labels: kind, lib
	RenderErrors    *prometheus.CounterVec   // labels: kind, reason={params,unsupported,empty,internal,panic}
	RenderDuration  *prometheus.HistogramVec // labels: kind

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RecordsLoaded,
		m.UnknownMonthDays,
		m.DegenerateTrends,
		m.SnapshotReady,
		m.LoadDuration,
		m.LoadFailures,
		m.TrendsPublished,
		m.TrendPublishErrors,
		m.FiguresRendered,
		m.RenderErrors,
		m.RenderDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_dashboard",
			Name:      "records_loaded_total",
			Help:      "Total fire records read from the dataset across all loads.",
		}),
		UnknownMonthDays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_dashboard",
			Name:      "unknown_month_records_total",
			Help:      "Records whose day of year fell outside the calendar year.",
		}),
		DegenerateTrends: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire_dashboard",
			Name:      "undefined_trends",
			Help:      "States in the current snapshot with fewer than two observed years.",
		}),
		SnapshotReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire_dashboard",
			Name:      "snapshot_ready",
			Help:      "1 when a dataset snapshot is loaded, 0 otherwise.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire_dashboard",
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete load-aggregate-fit cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_dashboard",
			Name:      "load_failures_total",
			Help:      "Dataset loads that failed.",
		}),
		TrendsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_dashboard",
			Name:      "trends_published_total",
			Help:      "Trend coefficients written to the sink topic.",
		}),
		TrendPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_dashboard",
			Name:      "trend_publish_errors_total",
			Help:      "Failed trend publish attempts.",
		}),
		FiguresRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_dashboard",
			Name:      "figures_rendered_total",
			Help:      "Figures rendered by kind and charting library.",
		}, []string{"kind", "lib"}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_dashboard",
			Name:      "render_errors_total",
			Help:      "Figure requests that failed by kind and reason.",
		}, []string{"kind", "reason"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wildfire_dashboard",
			Name:      "render_duration_seconds",
			Help:      "Figure rendering duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"kind"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_dashboard",
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_dashboard",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire_dashboard",
			Name:      "geocode_enabled",
			Help:      "1 when county geocoding is enabled, 0 otherwise.",
		}),
	}
}
