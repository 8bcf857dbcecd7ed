package models

import "math"

// Sample represents one GPS fix as stored in the locations table
type Sample struct {
	ID        int64    `json:"id" db:"id"`
	Lat       float64  `json:"lat" db:"lat"`
	Lon       float64  `json:"lon" db:"lon"`
	Timestamp int64    `json:"timestamp" db:"timestamp"` // Unix timestamp in seconds
	Accuracy  *float64 `json:"acc,omitempty" db:"acc"`   // meters
	Altitude  *float64 `json:"alt,omitempty" db:"alt"`   // meters
	Velocity  *float64 `json:"vel,omitempty" db:"vel"`   // reported by the device, never used for speed

	// Enrichment written by the ingestion side
	City     string `json:"city,omitempty" db:"city"`
	Address  string `json:"address,omitempty" db:"address"`
	Timezone string `json:"timezone,omitempty" db:"timezone"`
}

// Normalize drops optional values that are NaN or infinite
func (s *Sample) Normalize() {
	s.Accuracy = finiteOrNil(s.Accuracy)
	s.Altitude = finiteOrNil(s.Altitude)
	s.Velocity = finiteOrNil(s.Velocity)
}

// HasCoordinates reports whether lat/lon are finite numbers
func (s Sample) HasCoordinates() bool {
	return isFinite(s.Lat) && isFinite(s.Lon)
}

// Float returns a pointer to v, or nil when v is not finite
func Float(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func finiteOrNil(v *float64) *float64 {
	if v == nil || !isFinite(*v) {
		return nil
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Window is a sequence of samples sorted ascending by timestamp
type Window []Sample

// Empty reports whether the window holds no samples
func (w Window) Empty() bool { return len(w) == 0 }

// First returns the earliest sample. The window must not be empty.
func (w Window) First() Sample { return w[0] }

// Last returns the latest sample. The window must not be empty.
func (w Window) Last() Sample { return w[len(w)-1] }

// Downsample keeps every stride-th sample and always keeps the last one.
// A stride below 1 is treated as 1. The result shares no backing array with w.
func (w Window) Downsample(stride int) Window {
	if len(w) == 0 {
		return Window{}
	}
	if stride < 1 {
		stride = 1
	}

	out := make(Window, 0, len(w)/stride+2)
	for i := 0; i < len(w); i += stride {
		out = append(out, w[i])
	}
	if (len(w)-1)%stride != 0 {
		out = append(out, w[len(w)-1])
	}
	return out
}

// SampleFilter restricts a window to an inclusive time range
type SampleFilter struct {
	From *int64 `json:"from"`
	To   *int64 `json:"to"`
}
