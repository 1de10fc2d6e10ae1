package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// The schedule tables are populated by a no-code workflow tool, so the
// text columns arrive in several shapes: JSON arrays, Postgres-style
// `{"Saturday","Sunday"}` sets, doubly-quoted booleans, and US-format
// date strings. These parsers accept what the data actually contains.

var weekdayByName = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// parseWeekendDays decodes a weekend_days column value into a weekday
// set. Unknown day names are ignored; a malformed value yields an empty
// set rather than an error.
func parseWeekendDays(raw string) map[time.Weekday]bool {
	out := make(map[time.Weekday]bool)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out
	}
	raw = strings.Trim(raw, `'"`)

	// Postgres array literal form: {"Saturday","Sunday"}
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		raw = "[" + strings.TrimSuffix(strings.TrimPrefix(raw, "{"), "}") + "]"
		raw = strings.ReplaceAll(raw, `\"`, `"`)
	}

	if strings.HasPrefix(raw, "[") {
		var names []string
		if err := json.Unmarshal([]byte(raw), &names); err == nil {
			for _, name := range names {
				if d, ok := weekdayByName[strings.TrimSpace(name)]; ok {
					out[d] = true
				}
			}
			return out
		}
		raw = strings.Trim(raw, "[]")
	}

	// Fall back to a comma-separated list.
	for _, name := range strings.Split(raw, ",") {
		name = strings.Trim(strings.TrimSpace(name), `'"`)
		if d, ok := weekdayByName[name]; ok {
			out[d] = true
		}
	}
	return out
}

// parseBoolish decodes boolean columns that may arrive as true, "true",
// or "\"true\"".
func parseBoolish(raw string) bool {
	cleaned := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), `"`, ""))
	cleaned = strings.Trim(cleaned, "'")
	return cleaned == "true"
}

// parseDayNames decodes a comma-separated weekday-name list.
func parseDayNames(raw string) map[time.Weekday]bool {
	out := make(map[time.Weekday]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if d, ok := weekdayByName[name]; ok {
			out[d] = true
		}
	}
	return out
}

// parseBlockDate turns a one-off block's date column into a YYYY-MM-DD
// day key in loc. Accepted shapes, in order: "9/26/2025, 6:30:00 PM"
// (date part only), "2025-09-26", RFC 3339.
func parseBlockDate(raw string, loc *time.Location) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("schedule: empty block date")
	}

	if idx := strings.Index(raw, ","); idx >= 0 {
		raw = strings.TrimSpace(raw[:idx])
	}

	for _, layout := range []string{"1/2/2006", "2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			y, m, d := t.In(loc).Date()
			return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d), nil
		}
	}
	return "", fmt.Errorf("schedule: unrecognized block date %q", raw)
}
