package stats

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/jengzang/parcours-backend-go/internal/models"
	"github.com/jengzang/parcours-backend-go/internal/spatial"
	"github.com/jengzang/parcours-backend-go/internal/temporal"
)

// GapThresholdSeconds marks a leg as a recording gap
const GapThresholdSeconds = 3600

type dayBucket struct {
	meters        float64
	movingSeconds float64
	elevationGain float64
	elevationLoss float64
	maxSpeedKmh   float64
	points        int
}

type daySpan struct {
	first, last int64
}

// Aggregate computes totals, per-day buckets, quality diagnostics and the
// bounding box of a window. Legs come from the downsampled window; per-day
// durations come from the full window. It never fails: an empty window
// yields a summary with points = 0.
func Aggregate(window models.Window, params models.AggregateParams) *models.ParcoursStats {
	params = SanitizeParams(params)
	if window.Empty() {
		return &models.ParcoursStats{Summary: models.StatsSummary{Points: 0}}
	}

	points := window.Downsample(params.Stride)
	spans := daySpans(window, params.UTCOffsetHours)

	a := newAccumulator(params)
	for i, p := range points {
		if i > 0 {
			a.leg(points[i-1], p)
		}
		a.observe(p)
	}

	first, last := points.First(), points.Last()
	duration := last.Timestamp - first.Timestamp
	if duration < 0 {
		duration = 0
	}

	perDay := a.perDay(spans)

	return &models.ParcoursStats{
		Summary: models.StatsSummary{
			Points: len(window),
			SummaryDetail: &models.SummaryDetail{
				PointsUsed:      len(points),
				Start:           models.Endpoint{Timestamp: first.Timestamp, Lat: first.Lat, Lon: first.Lon},
				End:             models.Endpoint{Timestamp: last.Timestamp, Lat: last.Lat, Lon: last.Lon},
				DurationSeconds: duration,
				Days:            len(perDay),
			},
		},
		Totals:  a.totals(float64(duration)),
		PerDay:  perDay,
		Quality: a.quality(),
		BBox:    a.bbox(),
	}
}

// SanitizeParams replaces non-finite parameters with their defaults and
// clamps negative thresholds to zero
func SanitizeParams(p models.AggregateParams) models.AggregateParams {
	def := models.DefaultAggregateParams()
	if !isFinite(p.UTCOffsetHours) {
		p.UTCOffsetHours = def.UTCOffsetHours
	}
	if p.Stride < 1 {
		p.Stride = 1
	}
	if !isFinite(p.MinSpeedKmh) {
		p.MinSpeedKmh = def.MinSpeedKmh
	}
	p.MinSpeedKmh = math.Max(0, p.MinSpeedKmh)
	if !isFinite(p.ElevationNoiseFloor) {
		p.ElevationNoiseFloor = def.ElevationNoiseFloor
	}
	p.ElevationNoiseFloor = math.Max(0, p.ElevationNoiseFloor)
	return p
}

// daySpans records the first and last timestamp of every day key over the
// full, non-downsampled window
func daySpans(window models.Window, tz float64) map[int64]*daySpan {
	spans := make(map[int64]*daySpan)
	for _, s := range window {
		k := temporal.DayKey(s.Timestamp, tz)
		span, ok := spans[k]
		if !ok {
			spans[k] = &daySpan{first: s.Timestamp, last: s.Timestamp}
			continue
		}
		if s.Timestamp < span.first {
			span.first = s.Timestamp
		}
		if s.Timestamp > span.last {
			span.last = s.Timestamp
		}
	}
	return spans
}

type accumulator struct {
	params models.AggregateParams

	meters        float64
	movingSeconds float64
	maxSpeedKmh   float64
	gapsOver1h    int
	elevationGain float64
	elevationLoss float64

	lastAlt        *float64
	minAlt, maxAlt float64
	hasAlt         bool

	accuracies []float64

	bound    orb.Bound
	hasBound bool

	daily map[int64]*dayBucket
}

func newAccumulator(params models.AggregateParams) *accumulator {
	return &accumulator{
		params: params,
		daily:  make(map[int64]*dayBucket),
	}
}

// observe folds per-sample attributes: accuracy, altitude range, bbox
func (a *accumulator) observe(s models.Sample) {
	if s.Accuracy != nil && isFinite(*s.Accuracy) {
		a.accuracies = append(a.accuracies, *s.Accuracy)
	}
	if s.Altitude != nil && isFinite(*s.Altitude) {
		alt := *s.Altitude
		a.lastAlt = &alt
		if !a.hasAlt || alt < a.minAlt {
			a.minAlt = alt
		}
		if !a.hasAlt || alt > a.maxAlt {
			a.maxAlt = alt
		}
		a.hasAlt = true
	}
	if s.HasCoordinates() {
		pt := orb.Point{s.Lon, s.Lat}
		if !a.hasBound {
			a.bound = orb.Bound{Min: pt, Max: pt}
			a.hasBound = true
		} else {
			a.bound = a.bound.Extend(pt)
		}
	}
}

// altitude resolves a sample's altitude, carrying the last known value
// forward when filling is enabled
func (a *accumulator) altitude(s models.Sample) (float64, bool) {
	if s.Altitude != nil && isFinite(*s.Altitude) {
		return *s.Altitude, true
	}
	if a.params.FillAltitude && a.lastAlt != nil {
		return *a.lastAlt, true
	}
	return 0, false
}

// leg accumulates one consecutive pair. Must run before observe(cur) so
// lastAlt still describes the previous sample.
func (a *accumulator) leg(prev, cur models.Sample) {
	dt := cur.Timestamp - prev.Timestamp
	if dt >= GapThresholdSeconds {
		a.gapsOver1h++
	}
	if dt <= 0 {
		return
	}
	seconds := float64(dt)

	dist, distOK := spatial.LegDistance(prev.Lat, prev.Lon, cur.Lat, cur.Lon)

	var speed float64
	speedOK := false
	if distOK {
		speed = SpeedKmh(dist, seconds)
		speedOK = isFinite(speed)
	}

	prevAlt, prevOK := a.altitude(prev)
	curAlt, curOK := a.altitude(cur)
	var gain, loss float64
	if prevOK && curOK {
		delta := curAlt - prevAlt
		if math.Abs(delta) >= a.params.ElevationNoiseFloor {
			if delta > 0 {
				gain = delta
			} else {
				loss = -delta
			}
		}
	}

	moving := speedOK && speed >= a.params.MinSpeedKmh

	a.meters += dist
	if speedOK && speed > a.maxSpeedKmh {
		a.maxSpeedKmh = speed
	}
	if moving {
		a.movingSeconds += seconds
	}
	a.elevationGain += gain
	a.elevationLoss += loss

	key := temporal.DayKey(cur.Timestamp, a.params.UTCOffsetHours)
	b, ok := a.daily[key]
	if !ok {
		b = &dayBucket{}
		a.daily[key] = b
	}
	b.meters += dist
	if moving {
		b.movingSeconds += seconds
	}
	b.elevationGain += gain
	b.elevationLoss += loss
	if speedOK && speed > b.maxSpeedKmh {
		b.maxSpeedKmh = speed
	}
	b.points++
}

// perDay merges the leg buckets with the full-resolution day spans and
// returns them sorted by day key
func (a *accumulator) perDay(spans map[int64]*daySpan) []models.DayStats {
	keys := make([]int64, 0, len(a.daily))
	for k := range a.daily {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	days := make([]models.DayStats, 0, len(keys))
	for _, k := range keys {
		b := a.daily[k]
		var seconds float64
		if span, ok := spans[k]; ok && span.last > span.first {
			seconds = float64(span.last - span.first)
		}

		avg := SpeedKmh(b.meters, seconds)
		avgMoving := SpeedKmh(b.meters, b.movingSeconds)
		days = append(days, models.DayStats{
			Key:                k,
			Date:               temporal.DayLabel(k),
			Meters:             RoundInt(b.meters),
			Km:                 RoundTo(b.meters/1000, 2),
			Seconds:            RoundInt(seconds),
			MovingSeconds:      RoundInt(b.movingSeconds),
			AvgSpeedKmh:        RoundTo(avg, 2),
			AvgSpeedMovingKmh:  RoundTo(avgMoving, 2),
			PaceMinPerKm:       Pace(avg),
			PaceMovingMinPerKm: Pace(avgMoving),
			ElevationGain:      RoundInt(b.elevationGain),
			ElevationLoss:      RoundInt(b.elevationLoss),
			MaxSpeedKmh:        RoundTo(b.maxSpeedKmh, 2),
			Points:             b.points,
			Raw: models.RawTotals{
				Meters:        b.meters,
				Seconds:       seconds,
				MovingSeconds: b.movingSeconds,
				MaxSpeedKmh:   b.maxSpeedKmh,
				ElevationGain: b.elevationGain,
				ElevationLoss: b.elevationLoss,
			},
		})
	}
	return days
}

func (a *accumulator) totals(seconds float64) *models.Totals {
	avg := SpeedKmh(a.meters, seconds)
	avgMoving := SpeedKmh(a.meters, a.movingSeconds)

	t := &models.Totals{
		Meters:             RoundInt(a.meters),
		Km:                 RoundTo(a.meters/1000, 2),
		Seconds:            RoundInt(seconds),
		MovingSeconds:      RoundInt(a.movingSeconds),
		AvgSpeedKmh:        RoundTo(avg, 2),
		AvgSpeedMovingKmh:  RoundTo(avgMoving, 2),
		PaceMinPerKm:       Pace(avg),
		PaceMovingMinPerKm: Pace(avgMoving),
		MaxSpeedKmh:        RoundTo(a.maxSpeedKmh, 2),
		ElevationGain:      RoundInt(a.elevationGain),
		ElevationLoss:      RoundInt(a.elevationLoss),
		Raw: models.RawTotals{
			Meters:        a.meters,
			Seconds:       seconds,
			MovingSeconds: a.movingSeconds,
			MaxSpeedKmh:   a.maxSpeedKmh,
			ElevationGain: a.elevationGain,
			ElevationLoss: a.elevationLoss,
		},
	}
	if a.hasAlt {
		minAlt, maxAlt := RoundInt(a.minAlt), RoundInt(a.maxAlt)
		t.MinAlt, t.MaxAlt = &minAlt, &maxAlt
	}
	return t
}

func (a *accumulator) quality() *models.Quality {
	q := &models.Quality{GapsOver1h: a.gapsOver1h}
	if len(a.accuracies) > 0 {
		mean := RoundTo(Mean(a.accuracies), 2)
		q.MeanAcc = &mean
	}
	return q
}

func (a *accumulator) bbox() *models.BoundingBox {
	if !a.hasBound {
		return nil
	}
	c := a.bound.Center()
	return &models.BoundingBox{
		MinLat: a.bound.Min.Lat(),
		MinLon: a.bound.Min.Lon(),
		MaxLat: a.bound.Max.Lat(),
		MaxLon: a.bound.Max.Lon(),
		Center: models.LatLon{Lat: c.Lat(), Lon: c.Lon()},
	}
}

// Distances sums leg distances over the full window and per calendar day of
// each leg's destination sample. Identical or non-finite coordinates are skipped.
func Distances(window models.Window, utcOffsetHours float64) (models.TotalDistance, []models.DailyDistance) {
	var total float64
	daily := make(map[int64]float64)
	for i := 1; i < len(window); i++ {
		a, b := window[i-1], window[i]
		d, ok := spatial.LegDistance(a.Lat, a.Lon, b.Lat, b.Lon)
		if !ok || d == 0 {
			continue
		}
		total += d
		daily[temporal.DayKey(b.Timestamp, utcOffsetHours)] += d
	}

	keys := make([]int64, 0, len(daily))
	for k := range daily {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	perDay := make([]models.DailyDistance, 0, len(keys))
	for _, k := range keys {
		perDay = append(perDay, models.DailyDistance{
			Date:   temporal.DayLabel(k),
			Meters: daily[k],
			Km:     RoundTo(daily[k]/1000, 2),
		})
	}
	return models.TotalDistance{Meters: total, Km: RoundTo(total/1000, 2)}, perDay
}
