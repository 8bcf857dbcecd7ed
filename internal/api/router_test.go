package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/parcours-backend-go/internal/cache"
	"github.com/jengzang/parcours-backend-go/internal/config"
	"github.com/jengzang/parcours-backend-go/internal/metrics"
	"github.com/jengzang/parcours-backend-go/internal/models"
	"github.com/jengzang/parcours-backend-go/internal/render"
	"github.com/jengzang/parcours-backend-go/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type emptyStore struct{}

func (emptyStore) LoadOrdered(context.Context, models.SampleFilter) (models.Window, error) {
	return models.Window{}, nil
}
func (emptyStore) Last(context.Context) (*models.Sample, error) { return nil, nil }
func (emptyStore) LatestTimestamp(context.Context, models.SampleFilter) (int64, bool, error) {
	return 0, false, nil
}

type pngRenderer struct{}

func (pngRenderer) Render(context.Context, models.Window, models.RenderParams) (*render.Result, error) {
	return &render.Result{Body: []byte("png"), ContentType: "image/png"}, nil
}
func (pngRenderer) Debug(w models.Window, p models.RenderParams) (*models.RenderDebug, error) {
	return &models.RenderDebug{Mode: p.Mode}, nil
}

func testRouter(t *testing.T) (*gin.Engine, *metrics.Collector) {
	t.Helper()
	m := metrics.NewCollector()
	svc := service.NewParcoursService(emptyStore{}, pngRenderer{},
		cache.New(cache.NewMemoryStore(), cache.Options{Metrics: m}), m,
		service.Config{UTCOffsetHours: 4, FallbackZoom: 9})
	cfg := &config.Config{JWTSecret: "s3cret", MapZoom: 9, TileSize: 512, UTCOffsetHours: 4, RenderRatePerMin: 60}
	return SetupRouter(cfg, svc, m), m
}

func get(r *gin.Engine, target, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	r, _ := testRouter(t)

	cases := map[string]int{
		"/health":                         http.StatusOK,
		"/parcours":                       http.StatusOK,
		"/parcours.png":                   http.StatusOK,
		"/api/v1/parcours/stats":          http.StatusOK,
		"/api/v1/parcours/export.geojson": http.StatusOK,
		"/api/v1/parcours/export.gpx":     http.StatusOK,
		"/api/v1/stats/distance/daily":    http.StatusOK,
		"/api/v1/stats/distance/total":    http.StatusOK,
		"/api/v1/locations/last":          http.StatusNotFound,
		"/api/v1/admin/cache":             http.StatusUnauthorized,
		"/api/v1/parcours/does-not-exist": http.StatusNotFound,
	}
	for target, want := range cases {
		if w := get(r, target, ""); w.Code != want {
			t.Errorf("%s: got %d want %d", target, w.Code, want)
		}
	}
}

func TestAdminWithToken(t *testing.T) {
	r, _ := testRouter(t)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatal(err)
	}
	if w := get(r, "/api/v1/admin/cache", "Bearer "+tok); w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := testRouter(t)
	get(r, "/parcours.png", "")

	w := get(r, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "parcours_cache_misses_total 1") {
		t.Errorf("cache miss not exported:\n%s", w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := testRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/parcours/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("got %d %v", w.Code, w.Header())
	}
}
