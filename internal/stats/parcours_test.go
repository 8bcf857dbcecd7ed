package stats

import (
	"math"
	"testing"

	"github.com/jengzang/parcours-backend-go/internal/models"
)

func alt(v float64) *float64 { return &v }

func TestAggregateEmptyWindow(t *testing.T) {
	got := Aggregate(nil, models.DefaultAggregateParams())
	if got.Summary.Points != 0 {
		t.Fatalf("expected 0 points, got %d", got.Summary.Points)
	}
	if got.Summary.SummaryDetail != nil || got.Totals != nil || got.PerDay != nil || got.BBox != nil {
		t.Fatalf("empty window should only carry the point count: %+v", got)
	}
}

func TestAggregateSingleSample(t *testing.T) {
	w := models.Window{{Lat: -21.1, Lon: 55.5, Timestamp: 1000}}
	got := Aggregate(w, models.DefaultAggregateParams())

	if got.Summary.Points != 1 {
		t.Fatalf("expected 1 point, got %d", got.Summary.Points)
	}
	tot := got.Totals
	if tot.Meters != 0 || tot.Seconds != 0 || tot.MovingSeconds != 0 || tot.MaxSpeedKmh != 0 {
		t.Errorf("single sample totals should be zero: %+v", tot)
	}
	if tot.PaceMinPerKm != nil {
		t.Errorf("pace should be undefined for zero speed")
	}
	if len(got.PerDay) != 0 {
		t.Errorf("no legs means no day buckets, got %d", len(got.PerDay))
	}
	if got.BBox == nil || got.BBox.Center.Lat != -21.1 || got.BBox.Center.Lon != 55.5 {
		t.Errorf("bbox should collapse to the sample: %+v", got.BBox)
	}
}

func TestAggregateTwoSamplesEndToEnd(t *testing.T) {
	w := models.Window{
		{Lat: 10, Lon: 10, Timestamp: 1000},
		{Lat: 10.001, Lon: 10, Timestamp: 1100},
	}
	got := Aggregate(w, models.DefaultAggregateParams())

	if math.Abs(got.Totals.Raw.Meters-111.2) > 1 {
		t.Fatalf("distance = %v, want ~111.2", got.Totals.Raw.Meters)
	}
	if got.Totals.MovingSeconds != 100 {
		t.Errorf("moving seconds = %d, want 100", got.Totals.MovingSeconds)
	}
	if math.Abs(got.Totals.Raw.MaxSpeedKmh-4.0) > 0.05 {
		t.Errorf("speed = %v, want ~4.0", got.Totals.Raw.MaxSpeedKmh)
	}
	if len(got.PerDay) != 1 {
		t.Fatalf("expected one day bucket, got %d", len(got.PerDay))
	}
	if got.PerDay[0].Seconds != 100 {
		t.Errorf("day duration = %d, want 100", got.PerDay[0].Seconds)
	}
	if got.PerDay[0].Date != "1970-01-01" {
		t.Errorf("day label = %s", got.PerDay[0].Date)
	}
	if got.PerDay[0].PaceMinPerKm == nil {
		t.Errorf("pace should be defined when moving")
	}
}

func TestAggregateSameCoordinateIsZeroDistance(t *testing.T) {
	w := models.Window{
		{Lat: 5, Lon: 5, Timestamp: 0},
		{Lat: 5, Lon: 5, Timestamp: 50000},
	}
	got := Aggregate(w, models.DefaultAggregateParams())
	if got.Totals.Raw.Meters != 0 {
		t.Fatalf("distance = %v, want 0", got.Totals.Raw.Meters)
	}
	if got.Totals.MovingSeconds != 0 {
		t.Errorf("standing still should not count as moving")
	}
	if got.Quality.GapsOver1h != 1 {
		t.Errorf("expected one gap, got %d", got.Quality.GapsOver1h)
	}
}

func TestAggregateNonMonotonicLegIsSkipped(t *testing.T) {
	w := models.Window{
		{Lat: 0, Lon: 0, Timestamp: 100},
		{Lat: 0.01, Lon: 0, Timestamp: 100},
		{Lat: 0.02, Lon: 0, Timestamp: 90},
	}
	got := Aggregate(w, models.DefaultAggregateParams())
	if got.Totals.Raw.Meters != 0 {
		t.Fatalf("legs with dt <= 0 must not add distance, got %v", got.Totals.Raw.Meters)
	}
	// bbox still covers every used coordinate
	if got.BBox.MaxLat != 0.02 {
		t.Errorf("bbox max lat = %v", got.BBox.MaxLat)
	}
}

func TestAggregateTotalsEqualSumOfDays(t *testing.T) {
	var w models.Window
	ts := int64(1700000000)
	lat := -21.0
	for i := 0; i < 500; i++ {
		w = append(w, models.Sample{Lat: lat, Lon: 55.5 + float64(i%7)*0.0003, Timestamp: ts})
		lat += 0.0004
		ts += 600 // 500 samples every 10 minutes spans several days
	}

	for _, stride := range []int{1, 3, 7} {
		p := models.DefaultAggregateParams()
		p.Stride = stride
		got := Aggregate(w, p)
		if len(got.PerDay) < 3 {
			t.Fatalf("stride %d: expected several days, got %d", stride, len(got.PerDay))
		}
		var sum float64
		for _, d := range got.PerDay {
			sum += d.Raw.Meters
		}
		if math.Abs(sum/1000-got.Totals.Raw.Meters/1000) > 0.01 {
			t.Errorf("stride %d: total %v km != sum of days %v km", stride, got.Totals.Raw.Meters/1000, sum/1000)
		}
		for i := 1; i < len(got.PerDay); i++ {
			if got.PerDay[i].Key <= got.PerDay[i-1].Key {
				t.Errorf("stride %d: days not sorted", stride)
			}
		}
	}
}

func TestAggregateDayDurationUsesFullWindow(t *testing.T) {
	// One day at UTC+4: samples every 60s from local 08:00 to 08:59
	start := int64(4 * 3600) // 08:00 local on day 0
	var w models.Window
	for i := 0; i < 60; i++ {
		w = append(w, models.Sample{Lat: float64(i) * 0.001, Lon: 0, Timestamp: start + int64(i)*60})
	}

	p := models.DefaultAggregateParams()
	p.Stride = 25
	got := Aggregate(w, p)

	if got.Summary.PointsUsed != 4 { // 0, 25, 50 + forced 59
		t.Fatalf("points used = %d, want 4", got.Summary.PointsUsed)
	}
	if len(got.PerDay) != 1 {
		t.Fatalf("expected one day, got %d", len(got.PerDay))
	}
	if got.PerDay[0].Seconds != 59*60 {
		t.Errorf("day duration = %d, want %d", got.PerDay[0].Seconds, 59*60)
	}
}

func TestAggregateSingleSampleBucketHasZeroDuration(t *testing.T) {
	// Second sample is alone in the next local day
	w := models.Window{
		{Lat: 0, Lon: 0, Timestamp: 86400 - 4*3600 - 100},
		{Lat: 0.01, Lon: 0, Timestamp: 86400 - 4*3600 + 100},
	}
	got := Aggregate(w, models.DefaultAggregateParams())
	if len(got.PerDay) != 1 {
		t.Fatalf("expected one bucket, got %d", len(got.PerDay))
	}
	if got.PerDay[0].Seconds != 0 {
		t.Errorf("bucket with one sample should have duration 0, got %d", got.PerDay[0].Seconds)
	}
	if got.PerDay[0].PaceMinPerKm != nil || got.PerDay[0].AvgSpeedKmh != 0 {
		t.Errorf("zero duration means zero average speed and null pace")
	}
	if got.PerDay[0].PaceMovingMinPerKm == nil {
		t.Errorf("moving pace should still be defined")
	}
}

func TestAggregateElevationNoiseFloor(t *testing.T) {
	w := models.Window{
		{Lat: 0, Lon: 0, Timestamp: 0, Altitude: alt(100)},
		{Lat: 0.001, Lon: 0, Timestamp: 60, Altitude: alt(100.5)},
		{Lat: 0.002, Lon: 0, Timestamp: 120, Altitude: alt(105)},
		{Lat: 0.003, Lon: 0, Timestamp: 180},
		{Lat: 0.004, Lon: 0, Timestamp: 240, Altitude: alt(98)},
	}
	got := Aggregate(w, models.DefaultAggregateParams())

	// 100 -> 100.5 filtered, 100.5 -> 105 gain 4.5, 105 -> (105 filled) none, 105 -> 98 loss 7
	if math.Abs(got.Totals.Raw.ElevationGain-4.5) > 1e-9 {
		t.Errorf("gain = %v, want 4.5", got.Totals.Raw.ElevationGain)
	}
	if math.Abs(got.Totals.Raw.ElevationLoss-7) > 1e-9 {
		t.Errorf("loss = %v, want 7", got.Totals.Raw.ElevationLoss)
	}
	if *got.Totals.MinAlt != 98 || *got.Totals.MaxAlt != 105 {
		t.Errorf("alt range = %d..%d", *got.Totals.MinAlt, *got.Totals.MaxAlt)
	}
}

func TestAggregateWithoutAltitudeFill(t *testing.T) {
	w := models.Window{
		{Lat: 0, Lon: 0, Timestamp: 0, Altitude: alt(100)},
		{Lat: 0.001, Lon: 0, Timestamp: 60},
		{Lat: 0.002, Lon: 0, Timestamp: 120, Altitude: alt(130)},
	}
	p := models.DefaultAggregateParams()
	p.FillAltitude = false
	got := Aggregate(w, p)
	if got.Totals.Raw.ElevationGain != 0 {
		t.Errorf("gaps in altitude should break the chain without filling, got %v", got.Totals.Raw.ElevationGain)
	}

	p.FillAltitude = true
	got = Aggregate(w, p)
	if got.Totals.Raw.ElevationGain != 30 {
		t.Errorf("filled gain = %v, want 30", got.Totals.Raw.ElevationGain)
	}
}

func TestAggregateQualityAndThreshold(t *testing.T) {
	acc := func(v float64) *float64 { return &v }
	nan := math.NaN()
	w := models.Window{
		{Lat: 0, Lon: 0, Timestamp: 0, Accuracy: acc(5)},
		{Lat: 0.0001, Lon: 0, Timestamp: 3600, Accuracy: acc(15)}, // ~0.01 km/h
		{Lat: 0.0101, Lon: 0, Timestamp: 3660, Accuracy: &nan},
	}
	got := Aggregate(w, models.DefaultAggregateParams())

	if got.Quality.MeanAcc == nil || *got.Quality.MeanAcc != 10 {
		t.Errorf("mean accuracy = %v, want 10", got.Quality.MeanAcc)
	}
	if got.Quality.GapsOver1h != 1 {
		t.Errorf("gaps = %d, want 1", got.Quality.GapsOver1h)
	}
	if got.Totals.MovingSeconds != 60 {
		t.Errorf("slow leg below 1 km/h must not count: moving = %d", got.Totals.MovingSeconds)
	}
	if got.Totals.Seconds != 3660 {
		t.Errorf("total seconds = %d", got.Totals.Seconds)
	}
}

func TestSanitizeParams(t *testing.T) {
	p := SanitizeParams(models.AggregateParams{
		UTCOffsetHours:      math.NaN(),
		Stride:              0,
		MinSpeedKmh:         -3,
		ElevationNoiseFloor: math.Inf(1),
	})
	if p.UTCOffsetHours != 4 || p.Stride != 1 || p.MinSpeedKmh != 0 || p.ElevationNoiseFloor != 1 {
		t.Fatalf("unexpected sanitized params: %+v", p)
	}
}

func TestDistancesSkipsDuplicates(t *testing.T) {
	w := models.Window{
		{Lat: 0, Lon: 0, Timestamp: 0},
		{Lat: 0, Lon: 0, Timestamp: 10},
		{Lat: 0.001, Lon: 0, Timestamp: 20},
		{Lat: 0.002, Lon: 0, Timestamp: 86400 + 20},
	}
	total, perDay := Distances(w, 0)
	if len(perDay) != 2 {
		t.Fatalf("expected two days, got %d", len(perDay))
	}
	if perDay[0].Date != "1970-01-01" || perDay[1].Date != "1970-01-02" {
		t.Errorf("unexpected dates: %+v", perDay)
	}
	if math.Abs(total.Meters-(perDay[0].Meters+perDay[1].Meters)) > 1e-9 {
		t.Errorf("total does not match days")
	}
}
