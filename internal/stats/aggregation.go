package stats

import (
	"math"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// RoundTo rounds half up to the given number of decimals
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Floor(v*p+0.5) / p
}

// RoundInt rounds half up to the nearest integer
func RoundInt(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// Pace converts a speed in km/h to minutes per km.
// Returns nil when the speed is zero: pace is undefined, not an error.
func Pace(speedKmh float64) *float64 {
	if speedKmh <= 0 {
		return nil
	}
	p := RoundTo(60/speedKmh, 2)
	return &p
}

// SpeedKmh returns km per hour for a distance in meters over seconds, 0 when seconds <= 0
func SpeedKmh(meters, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return (meters / 1000) / (seconds / 3600)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
