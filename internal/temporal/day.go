// Package temporal buckets epoch timestamps into calendar days under a fixed
// UTC offset.
package temporal

import (
	"math"
	"time"
)

// SecondsPerDay is the length of a calendar day bucket
const SecondsPerDay = 86400

// OffsetSeconds converts an offset in hours (may be fractional, e.g. 5.5) to seconds
func OffsetSeconds(utcOffsetHours float64) int64 {
	return int64(math.Round(utcOffsetHours * 3600))
}

// DayKey returns floor((ts + offset) / 86400): the number of whole days since
// the epoch in the shifted clock. Floor, not truncation, so pre-1970 samples
// land in the right bucket.
func DayKey(ts int64, utcOffsetHours float64) int64 {
	shifted := ts + OffsetSeconds(utcOffsetHours)
	key := shifted / SecondsPerDay
	if shifted%SecondsPerDay != 0 && shifted < 0 {
		key--
	}
	return key
}

// DayStart returns the epoch second at which the bucket begins (local midnight)
func DayStart(key int64, utcOffsetHours float64) int64 {
	return key*SecondsPerDay - OffsetSeconds(utcOffsetHours)
}

// DayLabel formats a day key as YYYY-MM-DD
func DayLabel(key int64) string {
	return time.Unix(key*SecondsPerDay, 0).UTC().Format("2006-01-02")
}

// ShortDayLabel formats the local calendar date of ts as DD/MM
func ShortDayLabel(ts int64, utcOffsetHours float64) string {
	return time.Unix(ts+OffsetSeconds(utcOffsetHours), 0).UTC().Format("02/01")
}
