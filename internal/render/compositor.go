package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // providers may answer with jpeg
	_ "image/png"
	"time"

	"github.com/fogleman/gg"

	"github.com/jengzang/parcours-backend-go/internal/logging"
	"github.com/jengzang/parcours-backend-go/internal/metrics"
	"github.com/jengzang/parcours-backend-go/internal/models"
	"github.com/jengzang/parcours-backend-go/internal/spatial"
	"github.com/jengzang/parcours-backend-go/internal/tiles"
)

// ErrRenderTimeout is returned when a render exceeds its deadline
var ErrRenderTimeout = errors.New("render timed out")

const (
	modeEmpty = "empty"

	contentTypePNG = "image/png"
)

// CompositorConfig fixes the map anchor and render limits
type CompositorConfig struct {
	CenterLat      float64
	CenterLon      float64
	FallbackZoom   int
	UTCOffsetHours float64
	Timeout        time.Duration
}

// Compositor fetches background maps and draws the trajectory over them
type Compositor struct {
	provider tiles.Provider
	cfg      CompositorConfig
	metrics  *metrics.Collector
}

// Result is an encoded image
type Result struct {
	Body        []byte
	ContentType string
	// Degraded is set when the overlay failed and only the background was returned
	Degraded bool
}

func NewCompositor(provider tiles.Provider, cfg CompositorConfig, m *metrics.Collector) *Compositor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Compositor{provider: provider, cfg: cfg, metrics: m}
}

// Render produces the map image for a window. An empty window yields the
// plain fallback background. Provider failures abort the render; overlay
// failures degrade to the background alone.
func (c *Compositor) Render(ctx context.Context, window models.Window, params models.RenderParams) (*Result, error) {
	p, stroke, err := NormalizeParams(params)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	mode := string(p.Mode)
	if window.Empty() {
		mode = modeEmpty
	}

	var res *Result
	switch {
	case window.Empty():
		res, err = c.fetch(ctx, c.emptyRequest(p))
	case p.Mode == models.RenderProvider:
		res, err = c.fetch(ctx, c.providerRequest(window, p))
	default:
		res, err = c.composite(ctx, window, p, stroke)
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrRenderTimeout, err)
		}
		return nil, err
	}

	c.metrics.ObserveRender(mode, time.Since(start))
	return res, nil
}

// Debug reports the resolved inputs of a render without touching the provider
func (c *Compositor) Debug(window models.Window, params models.RenderParams) (*models.RenderDebug, error) {
	p, stroke, err := NormalizeParams(params)
	if err != nil {
		return nil, err
	}

	if window.Empty() {
		req := c.emptyRequest(p)
		return &models.RenderDebug{Mode: p.Mode, URL: c.provider.RedactedURL(req), ZoomUsed: req.Zoom}, nil
	}

	filtered := window.Downsample(p.Stride)
	d := &models.RenderDebug{
		Mode:           p.Mode,
		TotalPoints:    len(window),
		FilteredPoints: len(filtered),
		ZoomUsed:       p.Zoom,
	}
	if p.Mode == models.RenderProvider {
		d.URL = c.provider.RedactedURL(c.providerRequest(window, p))
		return d, nil
	}

	o := BuildOverlay(window, c.overlayParams(p, stroke))
	d.URL = c.provider.RedactedURL(c.backgroundRequest(p))
	d.SVGPoints = len(o.Polyline)
	d.TileSize = p.TileSize
	d.DayMarkers = len(o.Markers)
	return d, nil
}

func (c *Compositor) emptyRequest(p models.RenderParams) tiles.MapRequest {
	return tiles.MapRequest{
		CenterLat: c.cfg.CenterLat,
		CenterLon: c.cfg.CenterLon,
		Zoom:      c.cfg.FallbackZoom,
		Width:     p.Width,
		Height:    p.Height,
	}
}

func (c *Compositor) backgroundRequest(p models.RenderParams) tiles.MapRequest {
	return tiles.MapRequest{
		CenterLat: c.cfg.CenterLat,
		CenterLon: c.cfg.CenterLon,
		Zoom:      p.Zoom,
		Width:     p.Width,
		Height:    p.Height,
	}
}

func (c *Compositor) providerRequest(window models.Window, p models.RenderParams) tiles.MapRequest {
	filtered := window.Downsample(p.Stride)
	pts := make([][2]float64, len(filtered))
	for i, s := range filtered {
		if p.Order == models.OrderLonLat {
			pts[i] = [2]float64{s.Lon, s.Lat}
		} else {
			pts[i] = [2]float64{s.Lat, s.Lon}
		}
	}
	req := c.backgroundRequest(p)
	req.Path = &tiles.PathStyle{Color: p.Color, Weight: p.Weight, Encoded: EncodePolyline(pts)}
	return req
}

func (c *Compositor) overlayParams(p models.RenderParams, stroke Color) OverlayParams {
	return OverlayParams{
		Stride:         p.Stride,
		Weight:         p.Weight,
		Stroke:         stroke,
		UTCOffsetHours: c.cfg.UTCOffsetHours,
		Projector:      spatial.NewProjector(c.cfg.CenterLat, c.cfg.CenterLon, p.Zoom, p.TileSize, p.Width, p.Height),
	}
}

func (c *Compositor) fetch(ctx context.Context, req tiles.MapRequest) (*Result, error) {
	r, err := c.provider.StaticMap(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Result{Body: r.Body, ContentType: r.ContentType}, nil
}

func (c *Compositor) composite(ctx context.Context, window models.Window, p models.RenderParams, stroke Color) (*Result, error) {
	bg, err := c.provider.StaticMap(ctx, c.backgroundRequest(p))
	if err != nil {
		return nil, err
	}

	overlay := BuildOverlay(window, c.overlayParams(p, stroke))

	type outcome struct {
		body []byte
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		body, err := compose(bg.Body, overlay)
		done <- outcome{body, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		if out.err != nil {
			logging.Ctx(ctx).Warn().Err(out.err).Msg("[Render] overlay failed, returning background only")
			c.metrics.RenderFallback()
			return &Result{Body: bg.Body, ContentType: bg.ContentType, Degraded: true}, nil
		}
		return &Result{Body: out.body, ContentType: contentTypePNG}, nil
	}
}

// compose decodes the background, draws the overlay over it and encodes PNG
func compose(background []byte, o Overlay) ([]byte, error) {
	bg, _, err := image.Decode(bytes.NewReader(background))
	if err != nil {
		return nil, fmt.Errorf("failed to decode background: %w", err)
	}
	layer, err := rasterizeOverlay(o)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContextForImage(bg)
	dc.DrawImage(layer, 0, 0)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
