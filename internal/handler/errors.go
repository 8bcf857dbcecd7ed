package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/parcours-backend-go/internal/logging"
	"github.com/jengzang/parcours-backend-go/internal/render"
	"github.com/jengzang/parcours-backend-go/internal/service"
	"github.com/jengzang/parcours-backend-go/internal/tiles"
	"github.com/jengzang/parcours-backend-go/pkg/response"
)

// writeError maps service errors onto HTTP statuses
func writeError(c *gin.Context, err error) {
	var statusErr *tiles.StatusError

	switch {
	case errors.Is(err, render.ErrRenderTimeout):
		response.GatewayTimeout(c, "render timed out")
	case errors.Is(err, render.ErrInvalidColor), errors.Is(err, service.ErrInvalidRange):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, tiles.ErrMissingAPIKey):
		response.InternalError(c, err.Error())
	case errors.As(err, &statusErr):
		details := gin.H{"status": statusErr.StatusCode, "body": statusErr.Body}
		if statusErr.Message != "" {
			details["message"] = statusErr.Message
		}
		response.BadGateway(c, "map provider error", details)
	case errors.Is(err, tiles.ErrProvider):
		response.BadGateway(c, "map provider error", err.Error())
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("[Handler] request failed")
		response.InternalError(c, "internal server error")
	}
	_ = c.Error(err)
}
