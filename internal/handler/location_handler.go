package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/parcours-backend-go/internal/service"
	"github.com/jengzang/parcours-backend-go/pkg/response"
)

// LocationHandler handles HTTP requests for raw samples
type LocationHandler struct {
	parcoursService *service.ParcoursService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(parcoursService *service.ParcoursService) *LocationHandler {
	return &LocationHandler{parcoursService: parcoursService}
}

// Last handles GET /api/v1/locations/last
func (h *LocationHandler) Last(c *gin.Context) {
	last, err := h.parcoursService.LastLocation(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, last)
}
