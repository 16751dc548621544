package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
)

// ErrNotReady is returned while no snapshot has been loaded.
var ErrNotReady = errors.New("dataset not loaded yet")

// Extractor reads the full fire dataset from its source.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.FireRecord, error)
}

// TrendPublisher ships freshly computed trend coefficients downstream.
type TrendPublisher interface {
	PublishTrends(ctx context.Context, trends []domain.TrendCoefficient) error
}

// Options tune how a snapshot is derived from the raw records.
type Options struct {
	Calendar   domain.Calendar
	TrendScale domain.TrendScale

	// Geocoder fills missing counties when non-nil. At most MaxLookups
	// records are sent to it per load.
	Geocoder   domain.Geocoder
	MaxLookups int
}

// Pipeline loads the dataset, derives every aggregate the dashboard serves,
// and publishes the result as an immutable Snapshot.
type Pipeline struct {
	extractor Extractor
	publisher TrendPublisher
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics

	current atomic.Pointer[Snapshot]
	loadMu  sync.Mutex

	// Trend publishing runs in the background, bound to the pipeline's
	// lifetime rather than the caller of Load.
	publishCtx    context.Context
	publishCancel context.CancelFunc
	publishMu     sync.Mutex
	publishWG     sync.WaitGroup
}

// New creates a Pipeline. publisher may be nil to disable trend publishing.
func New(e Extractor, publisher TrendPublisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		extractor:     e,
		publisher:     publisher,
		opts:          opts,
		logger:        logger,
		metrics:       metrics,
		publishCtx:    ctx,
		publishCancel: cancel,
	}
}

// Wait blocks until every background trend publish has finished.
func (p *Pipeline) Wait() {
	p.publishWG.Wait()
}

// Close cancels in-flight trend publishes and waits for them to return.
func (p *Pipeline) Close() {
	p.publishCancel()
	p.publishWG.Wait()
}

// CheckReadiness returns nil once a snapshot is available.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.current.Load() == nil {
		return ErrNotReady
	}
	return nil
}

// Snapshot returns the current snapshot or ErrNotReady.
func (p *Pipeline) Snapshot() (*Snapshot, error) {
	s := p.current.Load()
	if s == nil {
		return nil, ErrNotReady
	}
	return s, nil
}

// Load extracts the dataset, builds a snapshot and swaps it in. Concurrent
// calls are serialized; readers keep the previous snapshot until the swap.
// A failed load leaves the previous snapshot in place. Trends are published
// in the background once the snapshot is live.
func (p *Pipeline) Load(ctx context.Context) (*Snapshot, error) {
	snap, err := p.build(ctx)
	if err != nil {
		return nil, err
	}
	p.publishAsync(snap.Trends)
	return snap, nil
}

func (p *Pipeline) build(ctx context.Context) (*Snapshot, error) {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	start := time.Now()
	records, err := p.extractor.Extract(ctx)
	if err != nil {
		p.metrics.LoadFailures.Inc()
		return nil, fmt.Errorf("extract dataset: %w", err)
	}

	records = p.enrich(ctx, records)
	snap := Build(records, p.opts.Calendar, p.opts.TrendScale)
	if src, ok := p.extractor.(interface{ Path() string }); ok {
		snap.Source = src.Path()
	}

	p.current.Store(snap)

	p.metrics.RecordsLoaded.Add(float64(len(records)))
	p.metrics.UnknownMonthDays.Add(float64(snap.UnknownMonths))
	p.metrics.DegenerateTrends.Set(float64(snap.UndefinedTrends()))
	p.metrics.SnapshotReady.Set(1)
	p.metrics.LoadDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("dataset loaded",
		"source", snap.Source,
		"records", len(records),
		"states", len(snap.ByState),
		"min_year", snap.MinYear,
		"max_year", snap.MaxYear,
		"unknown_months", snap.UnknownMonths,
		"duration", time.Since(start),
	)
	return snap, nil
}

// publishAsync ships trends without holding up the caller. Publishes never
// overlap.
func (p *Pipeline) publishAsync(trends []domain.TrendCoefficient) {
	if p.publisher == nil || len(trends) == 0 {
		return
	}
	p.publishWG.Add(1)
	go func() {
		defer p.publishWG.Done()
		p.publishMu.Lock()
		defer p.publishMu.Unlock()
		p.publish(p.publishCtx, trends)
	}()
}

// enrich fills missing counties through the geocoder, up to MaxLookups.
func (p *Pipeline) enrich(ctx context.Context, records []domain.FireRecord) []domain.FireRecord {
	if p.opts.Geocoder == nil || p.opts.MaxLookups <= 0 {
		return records
	}
	lookups := 0
	for i := range records {
		if lookups >= p.opts.MaxLookups || ctx.Err() != nil {
			break
		}
		if !domain.NeedsCounty(records[i]) {
			continue
		}
		records[i] = domain.EnrichWithGeocoding(ctx, records[i], p.opts.Geocoder, p.logger)
		lookups++
	}
	if lookups > 0 {
		p.logger.Info("county geocoding finished", "lookups", lookups, "limit", p.opts.MaxLookups)
	}
	return records
}

const publishAttempts = 3

// publish sends trends with exponential backoff. Failures are logged and
// counted but never fail the load.
func (p *Pipeline) publish(ctx context.Context, trends []domain.TrendCoefficient) {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			p.logger.Warn("trend publish cancelled", "attempt", attempt, "trends", len(trends))
			return
		}
		err := p.publisher.PublishTrends(ctx, trends)
		if err == nil {
			p.metrics.TrendsPublished.Add(float64(len(trends)))
			return
		}
		p.metrics.TrendPublishErrors.Inc()
		p.logger.Error("publish trends failed", "error", err, "attempt", attempt, "trends", len(trends))

		if attempt >= publishAttempts || !sleepWithContext(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
