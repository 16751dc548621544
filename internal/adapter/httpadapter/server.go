package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
	"github.com/couchcryptid/wildfire-dashboard/internal/pipeline"
)

// Dashboard is the snapshot holder the server reads from. *pipeline.Pipeline
// implements it.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Snapshot() (*pipeline.Snapshot, error)
	Load(ctx context.Context) (*pipeline.Snapshot, error)
}

// Options tune request handling.
type Options struct {
	// ScatterMaxPoints caps points in scatter maps, GeoJSON and the static map.
	ScatterMaxPoints int
	// ReloadTimeout bounds a POST /api/reload.
	ReloadTimeout time.Duration
}

// Server exposes the dashboard page, its JSON and PNG APIs, and the health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	opts       Options
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with every dashboard route registered.
func NewServer(addr string, dashboard Dashboard, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if opts.ScatterMaxPoints <= 0 {
		opts.ScatterMaxPoints = 50000
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = 5 * time.Minute
	}

	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           chain(logger, metrics, mux),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      opts.ReloadTimeout + 10*time.Second,
			IdleTimeout:       60 * time.Second,
		},
		dashboard: dashboard,
		opts:      opts,
		metrics:   metrics,
		logger:    logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/dataset", s.handleDataset)
	mux.HandleFunc("GET /api/figures/{kind}", s.handleFigure)
	mux.HandleFunc("GET /api/aggregates/{by}", s.handleAggregates)
	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.HandleFunc("GET /api/fires.geojson", s.handleGeoJSON)
	mux.HandleFunc("GET /api/maps/static.png", s.handleStaticMap)
	mux.HandleFunc("GET /api/trends.png", s.handleTrendChart)
	mux.HandleFunc("POST /api/reload", s.handleReload)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(dashboard))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
