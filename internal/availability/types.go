// Package availability computes bookable appointment start times for a
// staff member over a rolling day window, merging business hours, staff
// working hours, weekend days, time off, time blocks, and existing
// bookings into per-day slot lists.
package availability

import (
	"context"
	"time"
)

// MinuteRange is a window expressed as minutes since local midnight.
// Whether the bounds are inclusive depends on the constraint that owns
// the range; see Engine for each rule.
type MinuteRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsZero reports whether the range is unset. Staff rows use {0,0} to
// mean "does not work this day".
func (r MinuteRange) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// BusinessDay holds opening hours for a single weekday. Only open days
// are represented; an absent weekday means the business is closed.
type BusinessDay struct {
	Weekday time.Weekday `json:"dayOfWeek"`
	Open    int          `json:"openMinutes"`
	Close   int          `json:"closeMinutes"`
}

// BusinessWeek maps weekday to opening hours for open days.
type BusinessWeek map[time.Weekday]BusinessDay

// StaffHours holds one staff member's weekly working pattern.
//
// WeekendDays takes precedence over Week: a day listed there is skipped
// entirely even when the per-weekday hours are nonzero.
type StaffHours struct {
	StaffID     string                `json:"staffId"`
	Week        [7]MinuteRange        `json:"week"`
	WeekendDays map[time.Weekday]bool `json:"weekendDays"`
}

// WorksOn reports whether the staff member works the given weekday at all.
func (s *StaffHours) WorksOn(d time.Weekday) bool {
	if s.WeekendDays[d] {
		return false
	}
	return !s.Week[int(d)].IsZero()
}

// TimeOffPeriod is a multi-day staff unavailability window. Containment
// is evaluated at day granularity, half-open: the end day itself is not
// excluded.
type TimeOffPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ContainsDay reports whether the local calendar day starting at
// dayStart falls within [startDay, endDay).
func (p TimeOffPeriod) ContainsDay(dayStart time.Time, loc *time.Location) bool {
	from := DayStart(p.Start, loc)
	to := DayStart(p.End, loc)
	return !dayStart.Before(from) && dayStart.Before(to)
}

// TimeBlock is a staff exclusion window, either recurring on a set of
// weekdays or pinned to one calendar date. The minute window is
// inclusive at both ends.
type TimeBlock struct {
	Name      string                `json:"name"`
	Recurring bool                  `json:"recurring"`
	Days      map[time.Weekday]bool `json:"recurringDays,omitempty"`
	Date      string                `json:"date,omitempty"` // YYYY-MM-DD day key for one-off blocks
	Window    MinuteRange           `json:"window"`
}

// AppliesTo reports whether the block is active on the day identified by
// dayKey/weekday.
func (b TimeBlock) AppliesTo(dayKey string, weekday time.Weekday) bool {
	if b.Recurring {
		return b.Days[weekday]
	}
	return b.Date != "" && b.Date == dayKey
}

// Blocks reports whether the block excludes a slot at minute on the
// given day. Inclusive at both bounds.
func (b TimeBlock) Blocks(dayKey string, weekday time.Weekday, minute int) bool {
	if !b.AppliesTo(dayKey, weekday) {
		return false
	}
	return minute >= b.Window.Start && minute <= b.Window.End
}

// Booking is an existing confirmed appointment. Duration defaults to 30
// minutes at load time when the source value is absent or unparseable.
type Booking struct {
	Start    time.Time `json:"start"`
	Duration int       `json:"durationMinutes"`
}

// End returns the booking end instant.
func (bk Booking) End() time.Time {
	return bk.Start.Add(time.Duration(bk.Duration) * time.Minute)
}

// Conflicts reports whether a slot at minute on the day identified by
// dayKey overlaps the booking. The booking minute range is half-open: a
// booking ending at minute 600 does not block a slot starting at 600.
func (bk Booking) Conflicts(dayKey string, minute int, loc *time.Location) bool {
	if DayKey(bk.Start, loc) != dayKey {
		return false
	}
	start := MinuteOfDay(bk.Start, loc)
	end := MinuteOfDay(bk.End(), loc)
	return minute >= start && minute < end
}

// Snapshot is the read-only constraint state consulted for one request.
// Staff-scoped fields are nil/empty when no staff filter applies.
type Snapshot struct {
	Business BusinessWeek    `json:"businessHours"`
	Staff    *StaffHours     `json:"staffHours,omitempty"`
	TimeOff  []TimeOffPeriod `json:"timeOff,omitempty"`
	Blocks   []TimeBlock     `json:"timeBlocks,omitempty"`
	Bookings []Booking       `json:"existingBookings,omitempty"`
}

// Source supplies the constraint sets. Implementations fetch fresh state
// per request; the engine never caches across requests.
type Source interface {
	BusinessWeek(ctx context.Context) (BusinessWeek, error)
	StaffHours(ctx context.Context, staffID string) (*StaffHours, error)
	TimeOff(ctx context.Context, staffID string) ([]TimeOffPeriod, error)
	TimeBlocks(ctx context.Context, staffID string) ([]TimeBlock, error)
	Bookings(ctx context.Context, staffID string, from, to time.Time) ([]Booking, error)
}
