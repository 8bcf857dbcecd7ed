package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	GinMode   string

	GeoapifyAPIKey  string
	GeoapifyBaseURL string
	MapStyle        string
	CenterLat       float64
	CenterLon       float64
	MapZoom         int
	TileSize        int
	UTCOffsetHours  float64

	CacheTTL          time.Duration
	CacheBackend      string // memory | redis
	RedisAddr         string
	RedisPassword     string
	CacheSingleFlight bool

	ProviderTimeout  time.Duration
	RenderTimeout    time.Duration
	RenderRatePerMin int

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the environment. Malformed numeric values
// are an error rather than silently defaulted.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenvDefault("PORT", ":8080"),
		DBPath:          getenvDefault("DB_PATH", "./data/parcours.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		GinMode:         os.Getenv("GIN_MODE"),
		GeoapifyAPIKey:  os.Getenv("GEOAPIFY_API_KEY"),
		GeoapifyBaseURL: getenvDefault("GEOAPIFY_BASE_URL", "https://maps.geoapify.com/v1/staticmap"),
		MapStyle:        getenvDefault("MAP_STYLE", "osm-carto"),
		CacheBackend:    strings.ToLower(getenvDefault("CACHE_BACKEND", "memory")),
		RedisAddr:       getenvDefault("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		LogFormat:       getenvDefault("LOG_FORMAT", "json"),
	}
	if !strings.HasPrefix(cfg.Port, ":") && !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	var err error
	if cfg.CenterLat, err = floatEnv("CENTER_LAT", -21.115); err != nil {
		return nil, err
	}
	if cfg.CenterLon, err = floatEnv("CENTER_LON", 55.53); err != nil {
		return nil, err
	}
	if cfg.UTCOffsetHours, err = floatEnv("UTC_OFFSET_HOURS", 4); err != nil {
		return nil, err
	}
	if cfg.MapZoom, err = intEnv("MAP_ZOOM", 9, 0, 20); err != nil {
		return nil, err
	}
	if cfg.TileSize, err = intEnv("TILE_SIZE", 512, 128, 1024); err != nil {
		return nil, err
	}
	if cfg.RenderRatePerMin, err = intEnv("RENDER_RATE_PER_MIN", 60, 0, 1<<20); err != nil {
		return nil, err
	}

	ttl, err := intEnv("CACHE_TTL_SEC", 60, 1, 86400)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(ttl) * time.Second

	providerMs, err := intEnv("PROVIDER_TIMEOUT_MS", 10000, 1, 600000)
	if err != nil {
		return nil, err
	}
	cfg.ProviderTimeout = time.Duration(providerMs) * time.Millisecond

	renderMs, err := intEnv("RENDER_TIMEOUT_MS", 15000, 1, 600000)
	if err != nil {
		return nil, err
	}
	cfg.RenderTimeout = time.Duration(renderMs) * time.Millisecond

	cfg.CacheSingleFlight = boolEnv("CACHE_SINGLEFLIGHT", true)

	switch cfg.CacheBackend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND: %q", cfg.CacheBackend)
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func floatEnv(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return f, nil
}

func intEnv(k string, def, min, max int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return n, nil
}

func boolEnv(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}
