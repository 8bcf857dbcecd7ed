package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they like.
// All methods are safe on a nil *Collector.
type Collector struct {
	reg *prometheus.Registry

	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEvictions prometheus.Counter
	CacheEntries   prometheus.Gauge

	RenderDuration   *prometheus.HistogramVec // mode label: server|provider|empty|debug
	RenderFallbacks  prometheus.Counter
	ProviderRequests *prometheus.CounterVec // status label: 2xx|4xx|5xx|error|rejected

	StatsDuration prometheus.Histogram
	SamplesLoaded prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parcours_cache_hits_total",
			Help: "Render cache lookups served from a live entry.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parcours_cache_misses_total",
			Help: "Render cache lookups that invoked the renderer.",
		}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parcours_cache_evictions_total",
			Help: "Expired entries removed on lookup.",
		}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "parcours_cache_entries",
			Help: "Entries currently held by the render cache.",
		}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parcours_render_duration_seconds",
			Help:    "Duration of map renders, by mode.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"mode"}),
		RenderFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parcours_render_fallbacks_total",
			Help: "Renders that degraded to the background image only.",
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parcours_provider_requests_total",
			Help: "Requests to the map tile provider, by outcome.",
		}, []string{"status"}),
		StatsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "parcours_stats_duration_seconds",
			Help:    "Duration of trajectory aggregations.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		SamplesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "parcours_samples_loaded",
			Help: "Samples in the most recently loaded window.",
		}),
	}

	reg.MustRegister(
		c.CacheHits, c.CacheMisses, c.CacheEvictions, c.CacheEntries,
		c.RenderDuration, c.RenderFallbacks, c.ProviderRequests,
		c.StatsDuration, c.SamplesLoaded,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Registry exposes the private registry for tests
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) CacheHit() {
	if c != nil {
		c.CacheHits.Inc()
	}
}

func (c *Collector) CacheMiss() {
	if c != nil {
		c.CacheMisses.Inc()
	}
}

func (c *Collector) CacheEvicted() {
	if c != nil {
		c.CacheEvictions.Inc()
	}
}

func (c *Collector) SetCacheEntries(n int) {
	if c != nil {
		c.CacheEntries.Set(float64(n))
	}
}

func (c *Collector) ObserveRender(mode string, d time.Duration) {
	if c != nil {
		c.RenderDuration.WithLabelValues(mode).Observe(d.Seconds())
	}
}

func (c *Collector) RenderFallback() {
	if c != nil {
		c.RenderFallbacks.Inc()
	}
}

func (c *Collector) ProviderRequest(status string) {
	if c != nil {
		c.ProviderRequests.WithLabelValues(status).Inc()
	}
}

func (c *Collector) ObserveStats(d time.Duration, samples int) {
	if c != nil {
		c.StatsDuration.Observe(d.Seconds())
		c.SamplesLoaded.Set(float64(samples))
	}
}
