package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/parcours-backend-go/internal/cache"
	"github.com/jengzang/parcours-backend-go/internal/logging"
	"github.com/jengzang/parcours-backend-go/internal/metrics"
	"github.com/jengzang/parcours-backend-go/internal/models"
	"github.com/jengzang/parcours-backend-go/internal/render"
	"github.com/jengzang/parcours-backend-go/internal/stats"
)

var (
	// ErrInvalidRange is returned when from is after to
	ErrInvalidRange = errors.New("from must not be after to")
	// ErrNotFound is returned when there is no sample to report
	ErrNotFound = errors.New("not found")
)

// SampleStore is the read side of the trajectory store
type SampleStore interface {
	LoadOrdered(ctx context.Context, filter models.SampleFilter) (models.Window, error)
	Last(ctx context.Context) (*models.Sample, error)
	LatestTimestamp(ctx context.Context, filter models.SampleFilter) (int64, bool, error)
}

// Renderer turns a window into an image or a debug payload
type Renderer interface {
	Render(ctx context.Context, window models.Window, params models.RenderParams) (*render.Result, error)
	Debug(window models.Window, params models.RenderParams) (*models.RenderDebug, error)
}

// Config holds the service-level defaults
type Config struct {
	UTCOffsetHours float64
	FallbackZoom   int
}

// ParcoursService answers analytics, render and export queries
type ParcoursService struct {
	store    SampleStore
	renderer Renderer
	cache    *cache.RenderCache
	metrics  *metrics.Collector
	cfg      Config
}

// NewParcoursService creates a new parcours service
func NewParcoursService(store SampleStore, renderer Renderer, c *cache.RenderCache, m *metrics.Collector, cfg Config) *ParcoursService {
	return &ParcoursService{store: store, renderer: renderer, cache: c, metrics: m, cfg: cfg}
}

func validateFilter(f models.SampleFilter) error {
	if f.From != nil && f.To != nil && *f.From > *f.To {
		return ErrInvalidRange
	}
	return nil
}

// Stats aggregates the samples in the requested range
func (s *ParcoursService) Stats(ctx context.Context, q models.StatsParams) (*models.ParcoursStats, error) {
	filter := models.SampleFilter{From: q.From, To: q.To}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	window, err := s.store.LoadOrdered(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}

	start := time.Now()
	params := stats.SanitizeParams(q.AggregateParams)
	result := stats.Aggregate(window, params)
	s.metrics.ObserveStats(time.Since(start), len(window))

	if !window.Empty() {
		result.Params = &models.StatsParams{From: q.From, To: q.To, AggregateParams: params}
	}
	return result, nil
}

// DailyDistance sums leg distances per UTC calendar day
func (s *ParcoursService) DailyDistance(ctx context.Context, filter models.SampleFilter) ([]models.DailyDistance, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	window, err := s.store.LoadOrdered(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	_, perDay := stats.Distances(window, 0)
	return perDay, nil
}

// TotalDistance sums every leg distance in the range
func (s *ParcoursService) TotalDistance(ctx context.Context, filter models.SampleFilter) (models.TotalDistance, error) {
	if err := validateFilter(filter); err != nil {
		return models.TotalDistance{}, err
	}
	window, err := s.store.LoadOrdered(ctx, filter)
	if err != nil {
		return models.TotalDistance{}, fmt.Errorf("failed to load samples: %w", err)
	}
	total, _ := stats.Distances(window, 0)
	return total, nil
}

// LastLocation returns the most recent sample
func (s *ParcoursService) LastLocation(ctx context.Context) (*models.Sample, error) {
	last, err := s.store.Last(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load last location: %w", err)
	}
	if last == nil {
		return nil, ErrNotFound
	}
	return last, nil
}

// RenderResult is an image, or a debug payload when debug was requested
type RenderResult struct {
	Body        []byte
	ContentType string
	CacheKey    string
	CacheHit    bool
	Debug       *models.RenderDebug
}

// Render draws the whole trajectory. Results are cached by parameters plus
// the latest sample timestamp, so a new sample invalidates older renders.
func (s *ParcoursService) Render(ctx context.Context, params models.RenderParams) (*RenderResult, error) {
	p, _, err := render.NormalizeParams(params)
	if err != nil {
		return nil, err
	}

	if p.Debug {
		window, err := s.store.LoadOrdered(ctx, models.SampleFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to load samples: %w", err)
		}
		d, err := s.renderer.Debug(window, p)
		if err != nil {
			return nil, err
		}
		var lastTs int64
		if !window.Empty() {
			lastTs = window.Last().Timestamp
		}
		d.CacheKey = RenderCacheKey(p, lastTs, window.Empty(), s.cfg.FallbackZoom)
		return &RenderResult{Debug: d, CacheKey: d.CacheKey}, nil
	}

	lastTs, ok, err := s.store.LatestTimestamp(ctx, models.SampleFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to read latest sample: %w", err)
	}
	key := RenderCacheKey(p, lastTs, !ok, s.cfg.FallbackZoom)

	v, hit, err := s.cache.GetOrRender(ctx, key, func(ctx context.Context) (cache.Value, error) {
		window, err := s.store.LoadOrdered(ctx, models.SampleFilter{})
		if err != nil {
			return cache.Value{}, fmt.Errorf("failed to load samples: %w", err)
		}
		res, err := s.renderer.Render(ctx, window, p)
		if err != nil {
			return cache.Value{}, err
		}
		if res.Degraded {
			logging.Ctx(ctx).Warn().Str("key", key).Msg("[Parcours] caching background-only render")
		}
		return cache.Value{Body: res.Body, ContentType: res.ContentType}, nil
	})
	if err != nil {
		return nil, err
	}
	return &RenderResult{Body: v.Body, ContentType: v.ContentType, CacheKey: key, CacheHit: hit}, nil
}

// RenderCacheKey identifies a render by every parameter that changes its
// bytes plus the latest sample timestamp
func RenderCacheKey(p models.RenderParams, lastTs int64, empty bool, fallbackZoom int) string {
	if empty {
		return fmt.Sprintf("empty:%dx%d:z%d", p.Width, p.Height, fallbackZoom)
	}
	if p.Mode == models.RenderProvider {
		return fmt.Sprintf("%dx%d:%d:geo:m%d:w%d:o%s:z%d:c%s", p.Width, p.Height, lastTs, p.Stride, p.Weight, p.Order, p.Zoom, p.Color)
	}
	return fmt.Sprintf("%dx%d:%d:srv:m%d:w%d:z%d:t%d:c%s", p.Width, p.Height, lastTs, p.Stride, p.Weight, p.Zoom, p.TileSize, p.Color)
}

// CacheStats reports the render cache state
func (s *ParcoursService) CacheStats(ctx context.Context) (cache.Stats, error) {
	return s.cache.Stats(ctx)
}

// PurgeCache drops every cached render
func (s *ParcoursService) PurgeCache(ctx context.Context) (int, error) {
	n, err := s.cache.Purge(ctx)
	if err != nil {
		return 0, err
	}
	logging.Ctx(ctx).Info().Int("entries", n).Msg("[Parcours] render cache purged")
	return n, nil
}
