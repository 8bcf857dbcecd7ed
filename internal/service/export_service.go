package service

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/jengzang/parcours-backend-go/internal/models"
	"github.com/jengzang/parcours-backend-go/internal/render"
	"github.com/jengzang/parcours-backend-go/internal/temporal"
)

// ExportFormat selects the export encoding
type ExportFormat string

const (
	ExportGeoJSON ExportFormat = "geojson"
	ExportGPX     ExportFormat = "gpx"
)

// ExportQuery selects the samples to export
type ExportQuery struct {
	models.SampleFilter
	Stride int
}

// Export encodes the downsampled trajectory of a range. Returns the body and
// its content type.
func (s *ParcoursService) Export(ctx context.Context, q ExportQuery, format ExportFormat) ([]byte, string, error) {
	if err := validateFilter(q.SampleFilter); err != nil {
		return nil, "", err
	}
	window, err := s.store.LoadOrdered(ctx, q.SampleFilter)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load samples: %w", err)
	}

	switch format {
	case ExportGPX:
		body, err := ToGPX(window, q.Stride)
		return body, "application/gpx+xml", err
	default:
		body, err := ToGeoJSON(window, q.Stride, s.cfg.UTCOffsetHours).MarshalJSON()
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode geojson: %w", err)
		}
		return body, "application/geo+json", nil
	}
}

// ToGeoJSON builds a LineString of the downsampled window plus one Point per
// local day change of the full window
func ToGeoJSON(window models.Window, stride int, utcOffsetHours float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if window.Empty() {
		return fc
	}

	filtered := window.Downsample(stride)
	line := make(orb.LineString, 0, len(filtered))
	for _, p := range filtered {
		line = append(line, orb.Point{p.Lon, p.Lat})
	}
	track := geojson.NewFeature(line)
	track.Properties["points"] = len(window)
	track.Properties["from"] = window.First().Timestamp
	track.Properties["to"] = window.Last().Timestamp
	fc.Append(track)

	for _, i := range render.DayChangeIndices(window, utcOffsetHours) {
		p := window[i]
		marker := geojson.NewFeature(orb.Point{p.Lon, p.Lat})
		marker.Properties["label"] = temporal.DayLabel(temporal.DayKey(p.Timestamp, utcOffsetHours))
		marker.Properties["timestamp"] = p.Timestamp
		fc.Append(marker)
	}
	return fc
}

// ToGPX encodes the downsampled window as a single-track GPX 1.1 document
func ToGPX(window models.Window, stride int) ([]byte, error) {
	seg := gpx.GPXTrackSegment{}
	for _, p := range window.Downsample(stride) {
		pt := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  p.Lat,
				Longitude: p.Lon,
			},
			Timestamp: time.Unix(p.Timestamp, 0).UTC(),
		}
		if p.Altitude != nil {
			pt.Elevation = *gpx.NewNullableFloat64(*p.Altitude)
		}
		seg.Points = append(seg.Points, pt)
	}

	doc := gpx.GPX{
		Creator: "parcours-backend-go",
		Tracks: []gpx.GPXTrack{{
			Name:     "parcours",
			Segments: []gpx.GPXTrackSegment{seg},
		}},
	}
	body, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode gpx: %w", err)
	}
	return body, nil
}
