package render

import (
	"testing"

	"github.com/jengzang/parcours-backend-go/internal/models"
	"github.com/jengzang/parcours-backend-go/internal/spatial"
)

func reunionProjector(w, h int) *spatial.Projector {
	return spatial.NewProjector(-21.115, 55.53, 9, 512, w, h)
}

// track returns n samples one minute apart starting at ts
func track(n int, ts int64) models.Window {
	w := make(models.Window, n)
	for i := range w {
		w[i] = models.Sample{Lat: -21.2 + float64(i)*0.001, Lon: 55.4 + float64(i)*0.001, Timestamp: ts + int64(i)*60}
	}
	return w
}

func TestBuildOverlayPolylineKeepsLastSample(t *testing.T) {
	w := track(101, 1700000000)
	red, _ := ParseColor(DefaultColor)

	o := BuildOverlay(w, OverlayParams{Stride: 7, Weight: 8, Stroke: red, UTCOffsetHours: 4, Projector: reunionProjector(800, 600)})

	if len(o.Polyline) != 16 {
		t.Fatalf("polyline has %d points, want 16", len(o.Polyline))
	}
	lx, ly := reunionProjector(800, 600).ToImage(w[100].Lat, w[100].Lon)
	if last := o.Polyline[len(o.Polyline)-1]; last.X != lx || last.Y != ly {
		t.Fatalf("last polyline point %v, want (%d,%d)", last, lx, ly)
	}
	if o.Width != 800 || o.Height != 600 || o.Weight != 8 {
		t.Errorf("unexpected overlay frame %+v", o)
	}
}

func TestBuildOverlayDayMarkersUseFullWindow(t *testing.T) {
	// 2024-01-01 19:50 UTC, i.e. 23:50 at UTC+4; the day flips after 10 samples
	start := int64(1704138600)
	w := track(30, start)

	o := BuildOverlay(w, OverlayParams{Stride: 25, Weight: 4, UTCOffsetHours: 4, Projector: reunionProjector(800, 600)})

	if len(o.Markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(o.Markers))
	}
	if o.Markers[0].Label != "01/01" || o.Markers[1].Label != "02/01" {
		t.Errorf("labels = %s, %s", o.Markers[0].Label, o.Markers[1].Label)
	}
	if o.Markers[1].Timestamp != start+600 {
		t.Errorf("second marker at %d, want the first sample of the new day", o.Markers[1].Timestamp)
	}
}

func TestBuildOverlayClampsLabels(t *testing.T) {
	// far outside the visible area
	w := models.Window{{Lat: 10, Lon: 10, Timestamp: 0}}
	o := BuildOverlay(w, OverlayParams{Stride: 1, UTCOffsetHours: 4, Projector: reunionProjector(400, 300)})

	m := o.Markers[0]
	if m.TextX != 4 {
		t.Errorf("TextX = %d, want 4", m.TextX)
	}
	if m.TextY != 12 {
		t.Errorf("TextY = %d, want 12", m.TextY)
	}

	w = models.Window{{Lat: -22, Lon: 57, Timestamp: 0}}
	m = BuildOverlay(w, OverlayParams{Stride: 1, UTCOffsetHours: 4, Projector: reunionProjector(400, 300)}).Markers[0]
	if m.TextX != 396 || m.TextY != 296 {
		t.Errorf("label at (%d,%d), want (396,296)", m.TextX, m.TextY)
	}
}

func TestBuildOverlayLabelBelowPoint(t *testing.T) {
	w := models.Window{{Lat: -21.115, Lon: 55.53, Timestamp: 0}}
	m := BuildOverlay(w, OverlayParams{Stride: 1, Projector: reunionProjector(800, 600)}).Markers[0]
	if m.X != 400 || m.Y != 300 || m.TextX != 400 || m.TextY != 314 {
		t.Fatalf("unexpected marker %+v", m)
	}
}

func TestDayChangeIndices(t *testing.T) {
	w := models.Window{
		{Timestamp: 0},
		{Timestamp: 100},
		{Timestamp: 86400},
		{Timestamp: 86500},
		{Timestamp: 3 * 86400},
	}
	got := DayChangeIndices(w, 0)
	want := []int{0, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if DayChangeIndices(nil, 4) != nil {
		t.Fatalf("empty window has no markers")
	}
}

func TestNormalizeParams(t *testing.T) {
	p, c, err := NormalizeParams(models.RenderParams{
		Width: 10, Height: 5000, Stride: 0, Weight: 99, Zoom: 25, TileSize: 64, Color: "#00FF0080",
	})
	if err != nil {
		t.Fatalf("NormalizeParams: %v", err)
	}
	if p.Width != 180 || p.Height != 1200 || p.Stride != 1 || p.Weight != 32 || p.Zoom != 20 || p.TileSize != 128 {
		t.Errorf("unexpected clamping %+v", p)
	}
	if p.Color != "00ff0080" || c.Opacity != 0.502 {
		t.Errorf("unexpected color %q %+v", p.Color, c)
	}
	if p.Mode != models.RenderServer || p.Order != models.OrderLatLon {
		t.Errorf("mode/order should default, got %s/%s", p.Mode, p.Order)
	}

	if _, _, err := NormalizeParams(models.RenderParams{Color: "nope"}); err == nil {
		t.Fatalf("invalid color should fail")
	}
}
