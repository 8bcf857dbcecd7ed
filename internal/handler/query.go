package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/parcours-backend-go/internal/models"
	"github.com/jengzang/parcours-backend-go/internal/temporal"
)

// queryInt returns the integer value of key, or def when absent or unparseable
func queryInt(c *gin.Context, key string, def int) int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// queryFloat returns the float value of key, or def when absent or unparseable
func queryFloat(c *gin.Context, key string, def float64) float64 {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// queryBool treats 0, false, no and off as false
func queryBool(c *gin.Context, key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(c.Query(key)))
	switch v {
	case "":
		return def
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

// parseFilter reads from and to
func parseFilter(c *gin.Context) (models.SampleFilter, error) {
	var f models.SampleFilter
	if v := strings.TrimSpace(c.Query("from")); v != "" {
		ts, err := temporal.ParseInstant(v)
		if err != nil {
			return f, fmt.Errorf("from: %w", err)
		}
		f.From = &ts
	}
	if v := strings.TrimSpace(c.Query("to")); v != "" {
		ts, err := temporal.ParseInstant(v)
		if err != nil {
			return f, fmt.Errorf("to: %w", err)
		}
		f.To = &ts
	}
	return f, nil
}
