package temporal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseInstant accepts epoch seconds (integer or decimal), RFC 3339 or
// YYYY-MM-DD (UTC midnight). Decimal seconds must be finite and fit in int64.
func ParseInstant(v string) (int64, error) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= -math.MinInt64 {
			return 0, fmt.Errorf("time %q out of range", v)
		}
		return int64(f), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("invalid time %q", v)
}

// ParseOptionalInstant is ParseInstant with blank meaning unset
func ParseOptionalInstant(v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	ts, err := ParseInstant(v)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
