// Package planner computes semester durations, course progress, timeline order and
// the dependent dates of the semester form. Every function is pure and never fails:
// missing or unparseable dates degrade to zero values.
package planner

import (
	"math"
	"strings"
	"time"
)

const millisPerDay = 86_400_000

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate converts a loosely typed date into a time.Time. The boolean is false for
// anything that cannot be read as a date, which callers treat exactly like a missing value.
func ParseDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true
			}
		}
	case *string:
		if v != nil {
			return ParseDate(*v)
		}
	}
	return time.Time{}, false
}

// elapsedDays rounds the span up to whole days the way a millisecond timestamp
// difference divided by a day would.
func elapsedDays(start, end time.Time) int {
	ms := end.Sub(start).Milliseconds()
	return int(math.Ceil(float64(ms) / millisPerDay))
}

// roundHalfUp matches the half-up rounding used for displayed month counts.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
