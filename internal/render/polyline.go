package render

import "github.com/twpayne/go-polyline"

// EncodePolyline encodes points in the order given (lat,lon or lon,lat) with
// the Google polyline algorithm at 1e5 precision.
func EncodePolyline(points [][2]float64) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p[0], p[1]}
	}
	return string(polyline.EncodeCoords(coords))
}
