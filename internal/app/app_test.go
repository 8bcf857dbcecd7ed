package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/jengzang/parcours-backend-go/internal/config"
	"github.com/jengzang/parcours-backend-go/internal/database"
	"github.com/jengzang/parcours-backend-go/internal/metrics"
	"github.com/jengzang/parcours-backend-go/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		MapZoom:           9,
		TileSize:          512,
		UTCOffsetHours:    4,
		CacheTTL:          time.Minute,
		CacheBackend:      "memory",
		CacheSingleFlight: true,
		ProviderTimeout:   time.Second,
		RenderTimeout:     time.Second,
	}
}

func TestBuildMemory(t *testing.T) {
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "p.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	comps, err := Build(context.Background(), testConfig(), db, metrics.NewCollector())
	if err != nil {
		t.Fatal(err)
	}
	defer comps.Close()

	if _, err := comps.Repository.InsertBatch(context.Background(), []models.Sample{
		{Lat: -21, Lon: 55.5, Timestamp: 100},
		{Lat: -21.01, Lon: 55.5, Timestamp: 200},
	}); err != nil {
		t.Fatal(err)
	}
	st, err := comps.Service.Stats(context.Background(), models.StatsParams{AggregateParams: models.DefaultAggregateParams()})
	if err != nil {
		t.Fatal(err)
	}
	if st.Summary.Points != 2 {
		t.Errorf("points %d", st.Summary.Points)
	}
	cs, err := comps.Service.CacheStats(context.Background())
	if err != nil || cs.Backend != "memory" || !cs.SingleFlight {
		t.Errorf("cache stats %+v %v", cs, err)
	}
}

func TestBuildRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "p.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cfg := testConfig()
	cfg.CacheBackend = "redis"
	cfg.RedisAddr = mr.Addr()
	comps, err := Build(context.Background(), cfg, db, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer comps.Close()

	cs, err := comps.Service.CacheStats(context.Background())
	if err != nil || cs.Backend != "redis" {
		t.Errorf("cache stats %+v %v", cs, err)
	}

	mr.Close()
	cfg.RedisAddr = mr.Addr()
	if _, err := Build(context.Background(), cfg, db, nil); err == nil {
		t.Error("unreachable redis should fail")
	}
}
