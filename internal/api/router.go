package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/parcours-backend-go/internal/config"
	"github.com/jengzang/parcours-backend-go/internal/handler"
	"github.com/jengzang/parcours-backend-go/internal/metrics"
	"github.com/jengzang/parcours-backend-go/internal/middleware"
	"github.com/jengzang/parcours-backend-go/internal/service"
)

// renderBurst is how many renders a client may fire back to back
const renderBurst = 10

// SetupRouter wires every route onto a new engine
func SetupRouter(cfg *config.Config, parcoursService *service.ParcoursService, collector *metrics.Collector) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())
	r.SetHTMLTemplate(handler.Templates())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Parcours API is running",
		})
	})
	if collector != nil {
		r.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	parcoursHandler := handler.NewParcoursHandler(parcoursService, handler.ParcoursConfig{
		DefaultZoom:     cfg.MapZoom,
		DefaultTileSize: cfg.TileSize,
		UTCOffsetHours:  cfg.UTCOffsetHours,
	})
	locationHandler := handler.NewLocationHandler(parcoursService)
	adminHandler := handler.NewAdminHandler(parcoursService)

	r.GET("/parcours", parcoursHandler.Page)
	r.GET("/parcours.png", middleware.RateLimit(cfg.RenderRatePerMin, renderBurst), parcoursHandler.Image)

	api := r.Group("/api/v1")
	{
		parcours := api.Group("/parcours")
		{
			parcours.GET("/stats", parcoursHandler.Stats)
			parcours.GET("/export.geojson", parcoursHandler.ExportGeoJSON)
			parcours.GET("/export.gpx", parcoursHandler.ExportGPX)
		}

		distance := api.Group("/stats/distance")
		{
			distance.GET("/daily", parcoursHandler.DailyDistance)
			distance.GET("/total", parcoursHandler.TotalDistance)
		}

		locations := api.Group("/locations")
		{
			locations.GET("/last", locationHandler.Last)
		}

		admin := api.Group("/admin", middleware.JWTAuth(cfg.JWTSecret))
		{
			admin.GET("/cache", adminHandler.CacheStats)
			admin.DELETE("/cache", adminHandler.PurgeCache)
		}
	}

	return r
}
