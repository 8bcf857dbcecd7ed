package tiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jengzang/parcours-backend-go/internal/logging"
	"github.com/jengzang/parcours-backend-go/internal/metrics"
)

const (
	DefaultBaseURL = "https://maps.geoapify.com/v1/staticmap"
	DefaultStyle   = "osm-carto"

	maxBodyBytes  = 16 << 20
	maxErrorBytes = 4 << 10
)

// GeoapifyConfig configures the Geoapify static map client
type GeoapifyConfig struct {
	BaseURL string
	APIKey  string
	Style   string
	Timeout time.Duration
}

// Geoapify talks to the Geoapify Static Maps API
type Geoapify struct {
	cfg     GeoapifyConfig
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[*Raster]
	metrics *metrics.Collector
}

// NewGeoapify creates a client. A nil collector disables metrics.
func NewGeoapify(cfg GeoapifyConfig, m *metrics.Collector) *Geoapify {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Style == "" {
		cfg.Style = DefaultStyle
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	g := &Geoapify{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: m,
	}
	g.cb = gobreaker.NewCircuitBreaker[*Raster](gobreaker.Settings{
		Name:        "geoapify",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// 4xx replies are our fault, not a provider outage
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[Tiles] circuit breaker state change")
		},
	})
	return g
}

func (g *Geoapify) query(req MapRequest, apiKey string) url.Values {
	q := url.Values{}
	q.Set("style", g.cfg.Style)
	q.Set("width", strconv.Itoa(req.Width))
	q.Set("height", strconv.Itoa(req.Height))
	q.Set("format", "png")
	q.Set("center", "lonlat:"+formatCoord(req.CenterLon)+","+formatCoord(req.CenterLat))
	q.Set("zoom", strconv.Itoa(req.Zoom))
	if req.Path != nil {
		q.Set("path", fmt.Sprintf("stroke:%s;strokeWidth:%d;line:round;enc:%s", req.Path.Color, req.Path.Weight, req.Path.Encoded))
	}
	q.Set("apiKey", apiKey)
	return q
}

// URL builds the full request URL including the API key
func (g *Geoapify) URL(req MapRequest) string {
	return g.cfg.BaseURL + "?" + g.query(req, g.cfg.APIKey).Encode()
}

// RedactedURL builds the request URL with the API key replaced by ***
func (g *Geoapify) RedactedURL(req MapRequest) string {
	u := g.cfg.BaseURL + "?" + g.query(req, "***").Encode()
	return strings.Replace(u, "apiKey=%2A%2A%2A", "apiKey=***", 1)
}

// StaticMap fetches one rendered map. Non-2xx replies become *StatusError;
// every failure wraps ErrProvider.
func (g *Geoapify) StaticMap(ctx context.Context, req MapRequest) (*Raster, error) {
	if g.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	raster, err := g.cb.Execute(func() (*Raster, error) {
		return g.fetch(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.metrics.ProviderRequest("rejected")
			return nil, fmt.Errorf("%w: %w", ErrProvider, err)
		}
		return nil, err
	}
	return raster, nil
}

func (g *Geoapify) fetch(ctx context.Context, req MapRequest) (*Raster, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL(req), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", ErrProvider, err)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.metrics.ProviderRequest("error")
		// url.Error carries the key in its URL field
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("%w: request failed: %w", ErrProvider, err)
	}
	defer resp.Body.Close()

	g.metrics.ProviderRequest(statusClass(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, newStatusError(resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", ErrProvider, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return &Raster{Body: body, ContentType: contentType}, nil
}

type apiError struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func newStatusError(code int, body []byte) *StatusError {
	se := &StatusError{StatusCode: code, Body: string(body)}
	var ae apiError
	if json.Unmarshal(body, &ae) == nil {
		se.Message = ae.Message
		if se.Message == "" {
			se.Message = ae.Error
		}
	}
	return se
}

func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return strconv.Itoa(code)
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
