package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jengzang/parcours-backend-go/internal/logging"
	"github.com/jengzang/parcours-backend-go/internal/metrics"
)

// DefaultTTL is how long a rendered image stays fresh
const DefaultTTL = 60 * time.Second

// Value is what a render function produces
type Value struct {
	Body        []byte
	ContentType string
}

// RenderFunc produces a value on a cache miss
type RenderFunc func(ctx context.Context) (Value, error)

// Options configures a RenderCache
type Options struct {
	TTL time.Duration
	// SingleFlight collapses concurrent misses on one key into a single render
	SingleFlight bool
	Metrics      *metrics.Collector
	// Now overrides the clock, for tests
	Now func() time.Time
}

// RenderCache memoizes renders by key. Expired entries are only removed when
// looked up again; there is no background sweep. Failed renders are never
// stored.
type RenderCache struct {
	store   Store
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Collector

	singleFlight bool
	group        singleflight.Group
}

func New(store Store, opts Options) *RenderCache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if cs, ok := store.(interface{ setClock(func() time.Time) }); ok {
		cs.setClock(opts.Now)
	}
	return &RenderCache{
		store:        store,
		ttl:          opts.TTL,
		now:          opts.Now,
		metrics:      opts.Metrics,
		singleFlight: opts.SingleFlight,
	}
}

// GetOrRender returns the live entry for key, or calls render and stores its
// result with expiry now+TTL. The bool reports a cache hit.
func (c *RenderCache) GetOrRender(ctx context.Context, key string, render RenderFunc) (Value, bool, error) {
	if v, ok := c.lookup(ctx, key); ok {
		c.metrics.CacheHit()
		return v, true, nil
	}
	c.metrics.CacheMiss()

	if !c.singleFlight {
		v, err := c.renderAndStore(ctx, key, render)
		return v, false, err
	}

	// the shared render must outlive any single caller
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		// another caller may have published while we waited
		if v, ok := c.lookup(shared, key); ok {
			return v, nil
		}
		return c.renderAndStore(shared, key, render)
	})
	select {
	case <-ctx.Done():
		return Value{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Value{}, false, res.Err
		}
		return res.Val.(Value), false, nil
	}
}

func (c *RenderCache) lookup(ctx context.Context, key string) (Value, bool) {
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("[Cache] lookup failed, rendering")
		return Value{}, false
	}
	if !ok {
		return Value{}, false
	}
	if !c.now().Before(e.ExpiresAt) {
		if err := c.store.Delete(ctx, key); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("[Cache] failed to evict expired entry")
		}
		c.metrics.CacheEvicted()
		c.refreshGauge(ctx)
		return Value{}, false
	}
	return Value{Body: e.Body, ContentType: e.ContentType}, true
}

func (c *RenderCache) renderAndStore(ctx context.Context, key string, render RenderFunc) (Value, error) {
	v, err := render(ctx)
	if err != nil {
		return Value{}, err
	}
	e := &Entry{Body: v.Body, ContentType: v.ContentType, ExpiresAt: c.now().Add(c.ttl)}
	if err := c.store.Set(ctx, key, e); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("[Cache] failed to store render")
	}
	c.refreshGauge(ctx)
	return v, nil
}

// refreshGauge keeps the entry gauge live for the in-process store only.
// Counting Redis keys is a SCAN, so that backend updates it from Stats.
func (c *RenderCache) refreshGauge(ctx context.Context) {
	if _, ok := c.store.(*MemoryStore); !ok {
		return
	}
	if n, err := c.store.Len(ctx); err == nil {
		c.metrics.SetCacheEntries(n)
	}
}

// Stats describes the cache for the admin endpoint
type Stats struct {
	Entries      int    `json:"entries"`
	TTLSeconds   int    `json:"ttlSeconds"`
	SingleFlight bool   `json:"singleFlight"`
	Backend      string `json:"backend"`
}

// Stats reports the current entry count
func (c *RenderCache) Stats(ctx context.Context) (Stats, error) {
	n, err := c.store.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	c.metrics.SetCacheEntries(n)
	backend := "memory"
	if _, ok := c.store.(*RedisStore); ok {
		backend = "redis"
	}
	return Stats{Entries: n, TTLSeconds: int(c.ttl / time.Second), SingleFlight: c.singleFlight, Backend: backend}, nil
}

// Purge drops every entry
func (c *RenderCache) Purge(ctx context.Context) (int, error) {
	n, err := c.store.Purge(ctx)
	if err != nil {
		return 0, err
	}
	c.metrics.SetCacheEntries(0)
	return n, nil
}
