package models

import "github.com/goccy/go-json"

// AggregateParams tunes the trajectory aggregation
type AggregateParams struct {
	UTCOffsetHours      float64 `json:"tz"`
	Stride              int     `json:"modulo"`
	MinSpeedKmh         float64 `json:"minSpeedKmh"`
	FillAltitude        bool    `json:"fillAltitude"`
	ElevationNoiseFloor float64 `json:"elevMinDelta"`
}

// DefaultAggregateParams returns the defaults used by the stats endpoint.
// UTC+4 is the subject's home offset (La Réunion).
func DefaultAggregateParams() AggregateParams {
	return AggregateParams{
		UTCOffsetHours:      4,
		Stride:              1,
		MinSpeedKmh:         1,
		FillAltitude:        true,
		ElevationNoiseFloor: 1,
	}
}

// StatsParams echoes the effective query parameters back to the caller
type StatsParams struct {
	From *int64 `json:"from"`
	To   *int64 `json:"to"`
	AggregateParams
}

// ParcoursStats is the full analytics result for a sample window
type ParcoursStats struct {
	Params  *StatsParams `json:"params,omitempty"`
	Summary StatsSummary `json:"summary"`
	Totals  *Totals      `json:"totals,omitempty"`
	PerDay  []DayStats   `json:"perDay"`
	Quality *Quality     `json:"quality,omitempty"`
	BBox    *BoundingBox `json:"bbox,omitempty"`
}

// MarshalJSON writes perDay as an array for every non-empty window, even one
// with no day buckets. An empty window carries the summary only.
func (s ParcoursStats) MarshalJSON() ([]byte, error) {
	type plain ParcoursStats
	if s.Summary.SummaryDetail == nil {
		return json.Marshal(struct {
			plain
			PerDay []DayStats `json:"perDay,omitempty"`
		}{plain: plain(s)})
	}
	perDay := s.PerDay
	if perDay == nil {
		perDay = []DayStats{}
	}
	return json.Marshal(struct {
		plain
		PerDay []DayStats `json:"perDay"`
	}{plain(s), perDay})
}

// StatsSummary always carries the point count; the detail block is only
// present for non-empty windows
type StatsSummary struct {
	Points int `json:"points"`
	*SummaryDetail
}

// SummaryDetail describes the extent of a non-empty window
type SummaryDetail struct {
	PointsUsed      int      `json:"pointsUsed"`
	Start           Endpoint `json:"start"`
	End             Endpoint `json:"end"`
	DurationSeconds int64    `json:"durationSeconds"`
	Days            int      `json:"days"`
}

// Endpoint is the first or last sample of a window
type Endpoint struct {
	Timestamp int64   `json:"timestamp"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

// Totals aggregates the whole window. Exported JSON fields are rounded for
// display; Raw keeps the unrounded values for further arithmetic.
type Totals struct {
	Meters             int64    `json:"meters"`
	Km                 float64  `json:"km"`
	Seconds            int64    `json:"seconds"`
	MovingSeconds      int64    `json:"movingSeconds"`
	AvgSpeedKmh        float64  `json:"avgSpeedKmh"`
	AvgSpeedMovingKmh  float64  `json:"avgSpeedMovingKmh"`
	PaceMinPerKm       *float64 `json:"paceMinPerKm"`
	PaceMovingMinPerKm *float64 `json:"paceMovingMinPerKm"`
	MaxSpeedKmh        float64  `json:"maxSpeedKmh"`
	ElevationGain      int64    `json:"elevationGain"`
	ElevationLoss      int64    `json:"elevationLoss"`
	MinAlt             *int64   `json:"minAlt"`
	MaxAlt             *int64   `json:"maxAlt"`

	Raw RawTotals `json:"-"`
}

// RawTotals holds unrounded accumulators
type RawTotals struct {
	Meters        float64
	Seconds       float64
	MovingSeconds float64
	MaxSpeedKmh   float64
	ElevationGain float64
	ElevationLoss float64
}

// DayStats is one calendar-day bucket
type DayStats struct {
	Key                int64    `json:"-"`
	Date               string   `json:"date"`
	Meters             int64    `json:"meters"`
	Km                 float64  `json:"km"`
	Seconds            int64    `json:"seconds"`
	MovingSeconds      int64    `json:"movingSeconds"`
	AvgSpeedKmh        float64  `json:"avgSpeedKmh"`
	AvgSpeedMovingKmh  float64  `json:"avgSpeedMovingKmh"`
	PaceMinPerKm       *float64 `json:"paceMinPerKm"`
	PaceMovingMinPerKm *float64 `json:"paceMovingMinPerKm"`
	ElevationGain      int64    `json:"elevationGain"`
	ElevationLoss      int64    `json:"elevationLoss"`
	MaxSpeedKmh        float64  `json:"maxSpeedKmh"`
	Points             int      `json:"points"`

	Raw RawTotals `json:"-"`
}

// Quality reports data-quality diagnostics
type Quality struct {
	GapsOver1h int      `json:"gapsOver1h"`
	MeanAcc    *float64 `json:"meanAcc"`
}

// BoundingBox of the coordinates used by the aggregation
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
	Center LatLon  `json:"center"`
}

// LatLon is a plain coordinate pair
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DailyDistance is one row of the simple per-day distance report
type DailyDistance struct {
	Date   string  `json:"date"`
	Meters float64 `json:"meters"`
	Km     float64 `json:"km"`
}

// TotalDistance is the simple total distance report
type TotalDistance struct {
	Meters float64 `json:"meters"`
	Km     float64 `json:"km"`
}
