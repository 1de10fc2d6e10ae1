package availability

import (
	"fmt"
	"time"
)

// DayKey returns the YYYY-MM-DD calendar date of t as seen in loc.
//
// The key is derived from timezone-aware field extraction, never from
// formatting and re-parsing a locale string, so it stays stable across
// DST transitions.
func DayKey(t time.Time, loc *time.Location) string {
	y, m, d := t.In(loc).Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// MinuteOfDay returns minutes since local midnight in loc, in [0, 1439].
func MinuteOfDay(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return local.Hour()*60 + local.Minute()
}

// DisplayTime renders t as a 12-hour clock string ("09:00 AM") in loc.
// Presentation only; all comparisons use DayKey and MinuteOfDay.
func DisplayTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("03:04 PM")
}

// DayStart returns local midnight of t's calendar date in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseDay parses a YYYY-MM-DD string as local midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("availability: parse day %q: %w", s, err)
	}
	return t, nil
}
