package service

import (
	"fmt"
	"sort"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/jengzang/parcours-backend-go/internal/models"
)

// SamplesFromGPX flattens every track point and waypoint of a GPX document
// into samples sorted by timestamp. Points without a time are dropped.
func SamplesFromGPX(data []byte) (models.Window, int, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse gpx: %w", err)
	}

	var out models.Window
	skipped := 0
	add := func(p gpx.GPXPoint) {
		if p.Timestamp.IsZero() {
			skipped++
			return
		}
		s := models.Sample{Lat: p.Latitude, Lon: p.Longitude, Timestamp: p.Timestamp.Unix()}
		if p.Elevation.NotNull() {
			s.Altitude = models.Float(p.Elevation.Value())
		}
		if p.HorizontalDilution.NotNull() {
			s.Accuracy = models.Float(p.HorizontalDilution.Value())
		}
		out = append(out, s)
	}

	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				add(p)
			}
		}
	}
	for _, p := range doc.Waypoints {
		add(p)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, skipped, nil
}
