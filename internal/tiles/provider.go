// Package tiles fetches static background maps from an external provider.
package tiles

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrProvider marks every failure caused by the map provider
	ErrProvider = errors.New("map provider error")
	// ErrMissingAPIKey is returned when no provider key is configured
	ErrMissingAPIKey = errors.New("map provider API key is not configured")
)

// StatusError is a non-2xx reply from the provider
type StatusError struct {
	StatusCode int
	Body       string
	// Message is the provider's own error message when the body was JSON
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("map provider returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("map provider returned %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrProvider }

// PathStyle asks the provider to draw an encoded polyline itself
type PathStyle struct {
	Color   string // rrggbb or rrggbbaa, no prefix
	Weight  int
	Encoded string
}

// MapRequest describes one static map
type MapRequest struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
	Width     int
	Height    int
	Path      *PathStyle
}

// Raster is an encoded image returned by the provider
type Raster struct {
	Body        []byte
	ContentType string
}

// Provider renders static background maps
type Provider interface {
	StaticMap(ctx context.Context, req MapRequest) (*Raster, error)
	URL(req MapRequest) string
	// RedactedURL is URL with credentials masked, safe for logs and debug output
	RedactedURL(req MapRequest) string
}
