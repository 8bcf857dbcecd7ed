package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// HaversineDistance calculates the great-circle distance between two points in meters
// using the Haversine formula
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// LegDistance returns the distance in meters between two consecutive fixes.
// Identical coordinates yield 0 without touching the trigonometry, and any
// non-finite input or result is reported as ok=false so callers can skip it.
func LegDistance(lat1, lon1, lat2, lon2 float64) (meters float64, ok bool) {
	for _, v := range [...]float64{lat1, lon1, lat2, lon2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
	}
	if lat1 == lat2 && lon1 == lon2 {
		return 0, true
	}
	d := HaversineDistance(lat1, lon1, lat2, lon2)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	EarthRadiusKm     = 6371.0    // Earth's mean radius in kilometers
)
