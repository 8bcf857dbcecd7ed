package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/parcours-backend-go/internal/service"
	"github.com/jengzang/parcours-backend-go/pkg/response"
)

// AdminHandler exposes render cache maintenance
type AdminHandler struct {
	parcoursService *service.ParcoursService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(parcoursService *service.ParcoursService) *AdminHandler {
	return &AdminHandler{parcoursService: parcoursService}
}

// CacheStats handles GET /api/v1/admin/cache
func (h *AdminHandler) CacheStats(c *gin.Context) {
	stats, err := h.parcoursService.CacheStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, stats)
}

// PurgeCache handles DELETE /api/v1/admin/cache
func (h *AdminHandler) PurgeCache(c *gin.Context) {
	n, err := h.parcoursService.PurgeCache(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"purged": n})
}
