package models

import "strings"

// RenderMode selects who draws the trajectory
type RenderMode string

const (
	// RenderServer composites our own overlay on a plain background
	RenderServer RenderMode = "server"
	// RenderProvider lets the tile provider draw an encoded polyline
	RenderProvider RenderMode = "provider"
)

// ParseRenderMode maps a query value to a mode; unknown values fall back to server
func ParseRenderMode(s string) RenderMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "provider", "geoapify":
		return RenderProvider
	default:
		return RenderServer
	}
}

// CoordOrder is the coordinate order of the provider polyline
type CoordOrder string

const (
	OrderLatLon CoordOrder = "latlon"
	OrderLonLat CoordOrder = "lonlat"
)

// ParseCoordOrder maps a query value to an order; unknown values fall back to latlon
func ParseCoordOrder(s string) CoordOrder {
	if strings.ToLower(strings.TrimSpace(s)) == "lonlat" {
		return OrderLonLat
	}
	return OrderLatLon
}

// RenderParams holds every knob that influences the rendered image
type RenderParams struct {
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Stride   int        `json:"modulo"`
	Weight   int        `json:"weight"`
	Color    string     `json:"color"`
	Zoom     int        `json:"zoom"`
	TileSize int        `json:"tileSize"`
	Mode     RenderMode `json:"mode"`
	Order    CoordOrder `json:"order"`
	Debug    bool       `json:"debug"`
}

// RenderDebug is returned instead of an image when debug is requested
type RenderDebug struct {
	Mode           RenderMode `json:"mode"`
	TotalPoints    int        `json:"totalPoints"`
	FilteredPoints int        `json:"filteredPoints"`
	SVGPoints      int        `json:"svgPoints,omitempty"`
	URL            string     `json:"url"`
	TileSize       int        `json:"tileSize,omitempty"`
	ZoomUsed       int        `json:"zoomUsed"`
	DayMarkers     int        `json:"dayMarkers,omitempty"`
	CacheKey       string     `json:"cacheKey,omitempty"`
}
