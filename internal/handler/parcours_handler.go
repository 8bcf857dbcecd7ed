package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/parcours-backend-go/internal/models"
	"github.com/jengzang/parcours-backend-go/internal/render"
	"github.com/jengzang/parcours-backend-go/internal/service"
	"github.com/jengzang/parcours-backend-go/pkg/response"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageRefreshMs is how often the page reloads its image
const pageRefreshMs = 10 * 60 * 1000

// Templates returns the parsed HTML templates served by this package
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// ParcoursConfig holds the request defaults
type ParcoursConfig struct {
	DefaultZoom     int
	DefaultTileSize int
	UTCOffsetHours  float64
}

// ParcoursHandler handles the map, analytics and export endpoints
type ParcoursHandler struct {
	parcoursService *service.ParcoursService
	cfg             ParcoursConfig
}

// NewParcoursHandler creates a new parcours handler
func NewParcoursHandler(parcoursService *service.ParcoursService, cfg ParcoursConfig) *ParcoursHandler {
	return &ParcoursHandler{
		parcoursService: parcoursService,
		cfg:             cfg,
	}
}

// Page handles GET /parcours
func (h *ParcoursHandler) Page(c *gin.Context) {
	w := queryInt(c, "w", render.DefaultWidth)
	if w <= 0 {
		w = render.DefaultWidth
	}
	ht := queryInt(c, "h", render.DefaultHeight)
	if ht <= 0 {
		ht = render.DefaultHeight
	}
	c.HTML(http.StatusOK, "parcours.html", gin.H{
		"Width":     w,
		"Height":    ht,
		"RefreshMs": pageRefreshMs,
	})
}

// renderParams reads the image query. Out-of-range values are clamped later.
func (h *ParcoursHandler) renderParams(c *gin.Context) models.RenderParams {
	p := render.DefaultParams(h.cfg.DefaultZoom)
	if h.cfg.DefaultTileSize > 0 {
		p.TileSize = h.cfg.DefaultTileSize
	}
	p.Width = queryInt(c, "w", p.Width)
	p.Height = queryInt(c, "h", p.Height)
	p.Stride = queryInt(c, "modulo", p.Stride)
	p.Weight = queryInt(c, "weight", p.Weight)
	p.Zoom = queryInt(c, "z", p.Zoom)
	p.TileSize = queryInt(c, "ts", p.TileSize)
	if v := c.Query("color"); v != "" {
		p.Color = v
	}
	p.Mode = models.ParseRenderMode(c.Query("render"))
	p.Order = models.ParseCoordOrder(c.Query("order"))
	p.Debug = c.Query("debug") == "1"
	return p
}

// Image handles GET /parcours.png
func (h *ParcoursHandler) Image(c *gin.Context) {
	res, err := h.parcoursService.Render(c.Request.Context(), h.renderParams(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if res.Debug != nil {
		response.Success(c, res.Debug)
		return
	}

	cacheStatus := "MISS"
	if res.CacheHit {
		cacheStatus = "HIT"
	}
	c.Header("X-Cache", cacheStatus)
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, res.ContentType, res.Body)
}

// Stats handles GET /api/v1/parcours/stats
func (h *ParcoursHandler) Stats(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	def := models.DefaultAggregateParams()
	def.UTCOffsetHours = h.cfg.UTCOffsetHours
	q := models.StatsParams{
		From: filter.From,
		To:   filter.To,
		AggregateParams: models.AggregateParams{
			UTCOffsetHours:      queryFloat(c, "tz", def.UTCOffsetHours),
			Stride:              queryInt(c, "modulo", def.Stride),
			MinSpeedKmh:         queryFloat(c, "minSpeedKmh", def.MinSpeedKmh),
			FillAltitude:        queryBool(c, "fillAlt", def.FillAltitude),
			ElevationNoiseFloor: queryFloat(c, "elevMinDelta", def.ElevationNoiseFloor),
		},
	}

	result, err := h.parcoursService.Stats(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// ExportGeoJSON handles GET /api/v1/parcours/export.geojson
func (h *ParcoursHandler) ExportGeoJSON(c *gin.Context) {
	h.export(c, service.ExportGeoJSON)
}

// ExportGPX handles GET /api/v1/parcours/export.gpx
func (h *ParcoursHandler) ExportGPX(c *gin.Context) {
	h.export(c, service.ExportGPX)
}

func (h *ParcoursHandler) export(c *gin.Context, format service.ExportFormat) {
	filter, err := parseFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	q := service.ExportQuery{SampleFilter: filter, Stride: queryInt(c, "modulo", 1)}

	body, contentType, err := h.parcoursService.Export(c.Request.Context(), q, format)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=parcours."+string(format))
	c.Data(http.StatusOK, contentType, body)
}

// DailyDistance handles GET /api/v1/stats/distance/daily
func (h *ParcoursHandler) DailyDistance(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	days, err := h.parcoursService.DailyDistance(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, days)
}

// TotalDistance handles GET /api/v1/stats/distance/total
func (h *ParcoursHandler) TotalDistance(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	total, err := h.parcoursService.TotalDistance(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, total)
}
