package availability

import "time"

// dayGrid emits every candidate instant for the local calendar day
// beginning at dayStart, from midnight up to (not including) the next
// local midnight, stepped by intervalMinutes of absolute time.
//
// Stepping absolute time rather than wall-clock minutes means DST days
// produce their true candidate count (46 or 50 half-hour slots instead
// of 48) and later bucketing recovers the correct local day.
func dayGrid(dayStart time.Time, intervalMinutes int) []time.Time {
	next := dayStart.AddDate(0, 0, 1)
	step := time.Duration(intervalMinutes) * time.Minute
	out := make([]time.Time, 0, 24*60/intervalMinutes+4)
	for t := dayStart; t.Before(next); t = t.Add(step) {
		out = append(out, t)
	}
	return out
}

// Grid returns the dense candidate grid for `days` consecutive local
// calendar days starting at start's local date in loc.
func Grid(start time.Time, days, intervalMinutes int, loc *time.Location) []time.Time {
	base := DayStart(start, loc)
	var out []time.Time
	for i := 0; i < days; i++ {
		out = append(out, dayGrid(base.AddDate(0, 0, i), intervalMinutes)...)
	}
	return out
}
