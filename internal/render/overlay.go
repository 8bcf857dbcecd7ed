package render

import (
	"github.com/jengzang/parcours-backend-go/internal/models"
	"github.com/jengzang/parcours-backend-go/internal/spatial"
	"github.com/jengzang/parcours-backend-go/internal/temporal"
)

const (
	labelInsetX   = 4
	labelMinY     = 12
	labelInsetY   = 4
	labelOffsetPx = 14
)

// Point is an image pixel
type Point struct {
	X, Y int
}

// DayMarker is a circle at the first sample of a local day plus its label
type DayMarker struct {
	Point
	Label     string
	TextX     int
	TextY     int
	Timestamp int64
}

// Overlay is the vector description drawn over the background
type Overlay struct {
	Width    int
	Height   int
	Stroke   Color
	Weight   int
	Polyline []Point
	Markers  []DayMarker
}

// OverlayParams drives BuildOverlay
type OverlayParams struct {
	Stride         int
	Weight         int
	Stroke         Color
	UTCOffsetHours float64
	Projector      *spatial.Projector
}

// BuildOverlay projects the downsampled window into a polyline and places a
// day marker on the first sample and on every local day change of the full
// window.
func BuildOverlay(window models.Window, p OverlayParams) Overlay {
	proj := p.Projector
	o := Overlay{
		Width:  proj.Width,
		Height: proj.Height,
		Stroke: p.Stroke,
		Weight: p.Weight,
	}

	filtered := window.Downsample(p.Stride)
	o.Polyline = make([]Point, 0, len(filtered))
	for _, s := range filtered {
		x, y := proj.ToImage(s.Lat, s.Lon)
		o.Polyline = append(o.Polyline, Point{X: x, Y: y})
	}

	for _, i := range DayChangeIndices(window, p.UTCOffsetHours) {
		s := window[i]
		x, y := proj.ToImage(s.Lat, s.Lon)
		o.Markers = append(o.Markers, DayMarker{
			Point:     Point{X: x, Y: y},
			Label:     temporal.ShortDayLabel(s.Timestamp, p.UTCOffsetHours),
			TextX:     clamp(x, labelInsetX, proj.Width-labelInsetX),
			TextY:     clamp(y+labelOffsetPx, labelMinY, proj.Height-labelInsetY),
			Timestamp: s.Timestamp,
		})
	}
	return o
}

// DayChangeIndices returns index 0 plus every index whose local day differs
// from the previous sample's
func DayChangeIndices(window models.Window, utcOffsetHours float64) []int {
	if window.Empty() {
		return nil
	}
	idx := []int{0}
	prev := temporal.DayKey(window[0].Timestamp, utcOffsetHours)
	for i := 1; i < len(window); i++ {
		k := temporal.DayKey(window[i].Timestamp, utcOffsetHours)
		if k != prev {
			idx = append(idx, i)
		}
		prev = k
	}
	return idx
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
