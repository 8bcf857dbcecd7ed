// Package app assembles the parcours components from configuration. Both the
// HTTP server and the CLI build their services through it.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jengzang/parcours-backend-go/internal/cache"
	"github.com/jengzang/parcours-backend-go/internal/config"
	"github.com/jengzang/parcours-backend-go/internal/logging"
	"github.com/jengzang/parcours-backend-go/internal/metrics"
	"github.com/jengzang/parcours-backend-go/internal/render"
	"github.com/jengzang/parcours-backend-go/internal/repository"
	"github.com/jengzang/parcours-backend-go/internal/service"
	"github.com/jengzang/parcours-backend-go/internal/tiles"
)

// Components is everything a frontend needs
type Components struct {
	Repository *repository.LocationRepository
	Compositor *render.Compositor
	Service    *service.ParcoursService
	Metrics    *metrics.Collector

	redis *redis.Client
}

// Close releases the cache backend connection
func (c *Components) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// Build wires the repository, provider, compositor, cache and service
func Build(ctx context.Context, cfg *config.Config, db *sql.DB, m *metrics.Collector) (*Components, error) {
	repo := repository.NewLocationRepository(db)

	provider := tiles.NewGeoapify(tiles.GeoapifyConfig{
		BaseURL: cfg.GeoapifyBaseURL,
		APIKey:  cfg.GeoapifyAPIKey,
		Style:   cfg.MapStyle,
		Timeout: cfg.ProviderTimeout,
	}, m)
	if cfg.GeoapifyAPIKey == "" {
		logging.Warn().Msg("[App] GEOAPIFY_API_KEY is not set, renders will fail")
	}

	compositor := render.NewCompositor(provider, render.CompositorConfig{
		CenterLat:      cfg.CenterLat,
		CenterLon:      cfg.CenterLon,
		FallbackZoom:   cfg.MapZoom,
		UTCOffsetHours: cfg.UTCOffsetHours,
		Timeout:        cfg.RenderTimeout,
	}, m)

	comps := &Components{Repository: repo, Compositor: compositor, Metrics: m}

	var store cache.Store = cache.NewMemoryStore()
	if cfg.CacheBackend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		comps.redis = client
		store = cache.NewRedisStore(client, cache.DefaultRedisPrefix)
	}
	renderCache := cache.New(store, cache.Options{
		TTL:          cfg.CacheTTL,
		SingleFlight: cfg.CacheSingleFlight,
		Metrics:      m,
	})

	comps.Service = service.NewParcoursService(repo, compositor, renderCache, m, service.Config{
		UTCOffsetHours: cfg.UTCOffsetHours,
		FallbackZoom:   cfg.MapZoom,
	})

	logging.Info().
		Str("cache", cfg.CacheBackend).
		Dur("ttl", cfg.CacheTTL).
		Bool("singleflight", cfg.CacheSingleFlight).
		Int("zoom", cfg.MapZoom).
		Msg("[App] components ready")
	return comps, nil
}
