package spatial

import "math"

// WorldPixel projects a coordinate onto a spherical Web-Mercator world raster
// of tileSize * 2^zoom pixels per side.
func WorldPixel(lat, lon float64, zoom int, tileSize int) (x, y float64) {
	sinLat := math.Sin(lat * math.Pi / 180)
	worldSize := float64(tileSize) * math.Pow(2, float64(zoom))
	x = (lon + 180) / 360 * worldSize
	y = (0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)) * worldSize
	return x, y
}

// Projector maps coordinates to pixels of an image centered on a fixed
// coordinate. Build it with NewProjector. The background request and the overlay must share one
// Projector (same zoom and tile size) or the two layers drift apart.
type Projector struct {
	Zoom      int
	TileSize  int
	CenterLat float64
	CenterLon float64
	Width     int
	Height    int

	cx, cy float64
}

// NewProjector creates a projector and caches the world pixel of the center
func NewProjector(centerLat, centerLon float64, zoom, tileSize, width, height int) *Projector {
	p := &Projector{
		Zoom:      zoom,
		TileSize:  tileSize,
		CenterLat: centerLat,
		CenterLon: centerLon,
		Width:     width,
		Height:    height,
	}
	p.cx, p.cy = WorldPixel(centerLat, centerLon, zoom, tileSize)
	return p
}

// ToImage returns the image-relative pixel of a coordinate, rounded half up
func (p *Projector) ToImage(lat, lon float64) (int, int) {
	x, y := WorldPixel(lat, lon, p.Zoom, p.TileSize)
	return roundHalfUp(x - p.cx + float64(p.Width)/2), roundHalfUp(y - p.cy + float64(p.Height)/2)
}

// ProjectToImagePixel is the one-shot form of Projector.ToImage
func ProjectToImagePixel(lat, lon float64, zoom, tileSize int, centerLat, centerLon float64, width, height int) (int, int) {
	return NewProjector(centerLat, centerLon, zoom, tileSize, width, height).ToImage(lat, lon)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
