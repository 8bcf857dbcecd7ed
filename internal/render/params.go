package render

import "github.com/jengzang/parcours-backend-go/internal/models"

// Render parameter bounds
const (
	DefaultWidth  = 800
	MinWidth      = 180
	MaxWidth      = 1600
	DefaultHeight = 600
	MinHeight     = 120
	MaxHeight     = 1200

	DefaultStride = 10
	DefaultWeight = 8
	MinWeight     = 1
	MaxWeight     = 32
	DefaultColor  = "ff0000ff"

	MinZoom = 0
	MaxZoom = 20

	DefaultTileSize = 512
	MinTileSize     = 128
	MaxTileSize     = 1024
)

// DefaultParams returns the render defaults for the given zoom
func DefaultParams(zoom int) models.RenderParams {
	return models.RenderParams{
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Stride:   DefaultStride,
		Weight:   DefaultWeight,
		Color:    DefaultColor,
		Zoom:     zoom,
		TileSize: DefaultTileSize,
		Mode:     models.RenderServer,
		Order:    models.OrderLatLon,
	}
}

// NormalizeParams clamps every numeric knob into range and parses the color.
// Only the color can fail.
func NormalizeParams(p models.RenderParams) (models.RenderParams, Color, error) {
	p.Width = clamp(p.Width, MinWidth, MaxWidth)
	p.Height = clamp(p.Height, MinHeight, MaxHeight)
	if p.Stride < 1 {
		p.Stride = 1
	}
	p.Weight = clamp(p.Weight, MinWeight, MaxWeight)
	p.Zoom = clamp(p.Zoom, MinZoom, MaxZoom)
	p.TileSize = clamp(p.TileSize, MinTileSize, MaxTileSize)
	if p.Mode != models.RenderProvider {
		p.Mode = models.RenderServer
	}
	if p.Order != models.OrderLonLat {
		p.Order = models.OrderLatLon
	}
	if p.Color == "" {
		p.Color = DefaultColor
	}

	c, err := ParseColor(p.Color)
	if err != nil {
		return p, Color{}, err
	}
	p.Color = c.Raw
	return p, c, nil
}
