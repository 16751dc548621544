package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-dashboard/internal/pipeline"
	"github.com/couchcryptid/wildfire-dashboard/internal/render"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeGeoJSON = "application/geo+json"
	contentTypePNG     = "image/png"
	contentTypeHTML    = "text/html; charset=utf-8"
)

// request resolves the current snapshot and the widget parameters. It writes
// the error response and returns false when either is unavailable.
func (s *Server) request(w http.ResponseWriter, r *http.Request, kind string) (*pipeline.Snapshot, render.Params, bool) {
	snap, err := s.dashboard.Snapshot()
	if err != nil {
		s.fail(w, kind, err)
		return nil, render.Params{}, false
	}
	p, err := render.ParseParams(r.URL.Query(), render.Defaults{
		From:  snap.MinYear,
		To:    snap.MaxYear,
		Limit: s.opts.ScatterMaxPoints,
	})
	if err != nil {
		s.fail(w, kind, err)
		return nil, render.Params{}, false
	}
	return snap, p, true
}

func renderData(snap *pipeline.Snapshot, p render.Params) render.Data {
	return render.Data{
		Fires:        snap.Fires,
		ByStateYear:  snap.ByStateYear,
		ByStateMonth: snap.ByStateMonth,
		Trends:       snap.TrendsBetween(p.From, p.To),
	}
}

func summaryOf(snap *pipeline.Snapshot) render.DatasetSummary {
	return render.Summarize(render.SummaryInput{
		Source:        snap.Source,
		LoadedAt:      snap.LoadedAt,
		Fires:         snap.Fires,
		States:        len(snap.ByState),
		MinYear:       snap.MinYear,
		MaxYear:       snap.MaxYear,
		UnknownMonths: snap.UnknownMonths,
		Calendar:      snap.Calendar,
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	const kind = "page"
	snap, p, ok := s.request(w, r, kind)
	if !ok {
		return
	}
	defer s.observe(kind, time.Now())

	var buf bytes.Buffer
	err := render.Page(&buf, summaryOf(snap), renderData(snap, p), p)
	status := http.StatusOK
	switch {
	case errors.Is(err, render.ErrUnsupportedLibrary):
		status = http.StatusNotImplemented
		s.metrics.RenderErrors.WithLabelValues(kind, "unsupported").Inc()
	case err != nil:
		s.fail(w, kind, err)
		return
	default:
		s.metrics.FiguresRendered.WithLabelValues(kind, string(p.Lib)).Inc()
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleDataset(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.dashboard.Snapshot()
	if err != nil {
		s.fail(w, "dataset", err)
		return
	}
	writeJSON(w, http.StatusOK, summaryOf(snap))
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	kind, ok := render.ParseKind(r.PathValue("kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown figure kind "+r.PathValue("kind"))
		return
	}
	snap, p, ok := s.request(w, r, string(kind))
	if !ok {
		return
	}
	defer s.observe(string(kind), time.Now())

	fig, err := render.Build(kind, renderData(snap, p), p)
	if err != nil {
		s.fail(w, string(kind), err)
		return
	}
	s.metrics.FiguresRendered.WithLabelValues(string(kind), string(p.Lib)).Inc()
	writeJSON(w, http.StatusOK, fig)
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	by := r.PathValue("by")
	snap, p, ok := s.request(w, r, "aggregates")
	if !ok {
		return
	}

	switch by {
	case "state":
		writeJSON(w, http.StatusOK, stateCountsBetween(snap, p.From, p.To))
	case "year":
		out := make([]domain.StateYearCount, 0, len(snap.ByStateYear))
		for _, c := range snap.ByStateYear {
			if c.Year >= p.From && c.Year <= p.To {
				out = append(out, c)
			}
		}
		writeJSON(w, http.StatusOK, out)
	case "month":
		out := make([]domain.StateMonthCount, 0, len(snap.ByStateMonth))
		for _, c := range snap.ByStateMonth {
			if c.Year >= p.From && c.Year <= p.To {
				out = append(out, c)
			}
		}
		writeJSON(w, http.StatusOK, out)
	default:
		writeError(w, http.StatusNotFound, "unknown aggregate "+by)
	}
}

// stateCountsBetween sums per-year counts, keeping ByState order.
func stateCountsBetween(snap *pipeline.Snapshot, from, to int) []domain.StateCount {
	if from <= snap.MinYear && to >= snap.MaxYear {
		return snap.ByState
	}
	sums := make(map[string]int, len(snap.ByState))
	for _, c := range snap.ByStateYear {
		if c.Year >= from && c.Year <= to {
			sums[c.State] += c.Count
		}
	}
	out := make([]domain.StateCount, 0, len(sums))
	for _, c := range snap.ByState {
		if n := sums[c.State]; n > 0 {
			out = append(out, domain.StateCount{State: c.State, Count: n})
		}
	}
	return out
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	snap, p, ok := s.request(w, r, "trends")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.TrendsBetween(p.From, p.To))
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	const kind = "geojson"
	snap, p, ok := s.request(w, r, kind)
	if !ok {
		return
	}
	defer s.observe(kind, time.Now())

	data, err := render.FeatureCollection(snap.Fires, snap.Calendar, p)
	if err != nil {
		s.fail(w, kind, err)
		return
	}
	s.metrics.FiguresRendered.WithLabelValues(kind, "geojson").Inc()
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	_, _ = w.Write(data)
}

func (s *Server) handleStaticMap(w http.ResponseWriter, r *http.Request) {
	const kind = "static_map"
	snap, p, ok := s.request(w, r, kind)
	if !ok {
		return
	}
	defer s.observe(kind, time.Now())

	var buf bytes.Buffer
	if err := render.StaticMapPNG(&buf, snap.Fires, p); err != nil {
		s.fail(w, kind, err)
		return
	}
	s.metrics.FiguresRendered.WithLabelValues(kind, "gonum").Inc()
	writePNG(w, &buf)
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	const kind = "trend_chart"
	snap, p, ok := s.request(w, r, kind)
	if !ok {
		return
	}
	defer s.observe(kind, time.Now())

	var buf bytes.Buffer
	if err := render.TrendBarsPNG(&buf, snap.TrendsBetween(p.From, p.To)); err != nil {
		s.fail(w, kind, err)
		return
	}
	s.metrics.FiguresRendered.WithLabelValues(kind, "go-chart").Inc()
	writePNG(w, &buf)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.ReloadTimeout)
	defer cancel()

	snap, err := s.dashboard.Load(ctx)
	if err != nil {
		s.logger.Error("reload failed", "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "reloaded",
		"records":   len(snap.Fires),
		"loaded_at": snap.LoadedAt,
	})
}

// fail maps an error to its status code and records it.
func (s *Server) fail(w http.ResponseWriter, kind string, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, render.ErrInvalidParams):
		s.metrics.RenderErrors.WithLabelValues(kind, "params").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, render.ErrUnsupportedLibrary):
		s.metrics.RenderErrors.WithLabelValues(kind, "unsupported").Inc()
		writeError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, render.ErrNoData):
		s.metrics.RenderErrors.WithLabelValues(kind, "empty").Inc()
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.metrics.RenderErrors.WithLabelValues(kind, "internal").Inc()
		s.logger.Error("render failed", "kind", kind, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) observe(kind string, start time.Time) {
	s.metrics.RenderDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writePNG(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", contentTypePNG)
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}
