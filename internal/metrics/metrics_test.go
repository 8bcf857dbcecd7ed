package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector()
	c.CacheHit()
	c.CacheHit()
	c.CacheMiss()
	c.ProviderRequest("2xx")
	c.ProviderRequest("5xx")
	c.ProviderRequest("5xx")
	c.SetCacheEntries(3)

	if got := testutil.ToFloat64(c.CacheHits); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.CacheMisses); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.ProviderRequests.WithLabelValues("5xx")); got != 2 {
		t.Errorf("5xx = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.CacheEntries); got != 3 {
		t.Errorf("entries = %v, want 3", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.CacheHit()
	c.CacheMiss()
	c.CacheEvicted()
	c.SetCacheEntries(1)
	c.ObserveRender("server", time.Second)
	c.RenderFallback()
	c.ProviderRequest("error")
	c.ObserveStats(time.Millisecond, 10)
}

func TestHandlerServesRegistry(t *testing.T) {
	c := NewCollector()
	c.ObserveRender("server", 20*time.Millisecond)
	c.ObserveStats(time.Millisecond, 42)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"parcours_render_duration_seconds", "parcours_samples_loaded 42"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %q in metrics output", name)
		}
	}
}
