package availability

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultWindowDays is the rolling window checked per request.
	DefaultWindowDays = 30
	// DefaultIntervalMinutes is the dense grid step.
	DefaultIntervalMinutes = 30
	// DefaultServiceDuration is assumed when the caller omits one.
	DefaultServiceDuration = 30
)

// Request describes one availability computation.
type Request struct {
	// StaffID is optional; empty means business-hours-only filtering.
	StaffID string
	// Start anchors the window; its local calendar date in the engine's
	// timezone is day zero.
	Start time.Time
	// Days, IntervalMinutes and ServiceDuration fall back to the
	// package defaults when zero or negative.
	Days            int
	IntervalMinutes int
	ServiceDuration int
}

// normalize fills request zeroes from the engine's configured window,
// then from the package defaults. Per-request values always win.
func (e *Engine) normalize(r *Request) {
	if r.Days <= 0 {
		r.Days = e.windowDays
	}
	if r.Days <= 0 {
		r.Days = DefaultWindowDays
	}
	if r.IntervalMinutes <= 0 {
		r.IntervalMinutes = e.intervalMinutes
	}
	if r.IntervalMinutes <= 0 {
		r.IntervalMinutes = DefaultIntervalMinutes
	}
	if r.ServiceDuration <= 0 {
		r.ServiceDuration = DefaultServiceDuration
	}
}

// Result carries the computed slot map plus the constraint snapshot it
// was derived from, for the handler's debug payload.
type Result struct {
	StartDate string
	Slots     map[string][]string
	Snapshot  *Snapshot
}

// Engine applies the constraint pipeline to the candidate grid.
type Engine struct {
	loc      *time.Location
	source   Source
	observer Observer

	// Deployment-configured window defaults, applied when a request
	// leaves Days or IntervalMinutes unset.
	windowDays      int
	intervalMinutes int
}

// NewEngine creates an engine bound to one IANA timezone. A nil
// observer is replaced with NopObserver.
func NewEngine(source Source, loc *time.Location, observer Observer) *Engine {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Engine{loc: loc, source: source, observer: observer}
}

// WithWindow sets the default window size and grid step for requests
// that leave them unset. Returns the engine for chaining at
// construction.
func (e *Engine) WithWindow(days, intervalMinutes int) *Engine {
	e.windowDays = days
	e.intervalMinutes = intervalMinutes
	return e
}

// Location returns the engine's timezone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Compute runs the full pipeline: load constraint snapshot, build the
// dense grid, filter, group by local day. Days with no surviving slots
// are omitted from the result.
func (e *Engine) Compute(ctx context.Context, req Request) (*Result, error) {
	e.normalize(&req)

	base := DayStart(req.Start, e.loc)
	rangeStart := base
	// Half-open [rangeStart, rangeEnd): the local midnight after the
	// last day. Adding absolute hours instead would clip the final
	// evening when the window ends on a fall-back day.
	rangeEnd := DayStart(base.AddDate(0, 0, req.Days), e.loc)

	snap, err := LoadSnapshot(ctx, e.source, req.StaffID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("availability: load constraints: %w", err)
	}

	slots := make(map[string][]string)
	for i := 0; i < req.Days; i++ {
		dayStart := base.AddDate(0, 0, i)
		dayKey := DayKey(dayStart, e.loc)
		keep := e.filterDay(snap, req, dayStart, dayKey)
		if len(keep) > 0 {
			out := make([]string, len(keep))
			for j, t := range keep {
				out[j] = DisplayTime(t, e.loc)
			}
			slots[dayKey] = out
		}
	}

	return &Result{
		StartDate: DayKey(base, e.loc),
		Slots:     slots,
		Snapshot:  snap,
	}, nil
}

// filterDay applies every pass to one day's candidates. The returned
// slice preserves grid order, which is ascending by instant.
func (e *Engine) filterDay(snap *Snapshot, req Request, dayStart time.Time, dayKey string) []time.Time {
	weekday := dayStart.In(e.loc).Weekday()

	bh, open := snap.Business[weekday]
	if !open {
		e.observer.DayDropped(dayKey, ReasonBusinessClosed)
		return nil
	}

	staff := snap.Staff
	if staff != nil {
		if staff.WeekendDays[weekday] {
			e.observer.DayDropped(dayKey, ReasonStaffWeekend)
			return nil
		}
		if staff.Week[int(weekday)].IsZero() {
			e.observer.DayDropped(dayKey, ReasonStaffHoursUnset)
			return nil
		}
		for _, off := range snap.TimeOff {
			if off.ContainsDay(dayStart, e.loc) {
				e.observer.DayDropped(dayKey, ReasonTimeOff)
				return nil
			}
		}
	}

	var keep []time.Time
	for _, t := range dayGrid(dayStart, req.IntervalMinutes) {
		// Guard against generator/bucketing disagreement at day
		// boundaries (non-existent local midnights and the like).
		if DayKey(t, e.loc) != dayKey {
			e.observer.SlotExcluded(dayKey, MinuteOfDay(t, e.loc), ReasonDayMismatch)
			continue
		}
		minute := MinuteOfDay(t, e.loc)

		if minute < bh.Open {
			e.observer.SlotExcluded(dayKey, minute, ReasonOutsideBusinessHours)
			continue
		}
		if staff == nil {
			// Without a staff filter the service must finish before the
			// business closes.
			if minute+req.ServiceDuration > bh.Close {
				e.observer.SlotExcluded(dayKey, minute, ReasonOutsideBusinessHours)
				continue
			}
		} else {
			// With a staff filter only the start is checked here; the
			// duration fit is enforced against staff hours below.
			if minute > bh.Close {
				e.observer.SlotExcluded(dayKey, minute, ReasonOutsideBusinessHours)
				continue
			}
		}

		if staff != nil {
			hours := staff.Week[int(weekday)]
			if minute < hours.Start || minute+req.ServiceDuration > hours.End {
				e.observer.SlotExcluded(dayKey, minute, ReasonOutsideStaffHours)
				continue
			}
			if e.blocked(snap.Blocks, dayKey, weekday, minute) {
				e.observer.SlotExcluded(dayKey, minute, ReasonTimeBlock)
				continue
			}
			if e.booked(snap.Bookings, dayKey, minute) {
				e.observer.SlotExcluded(dayKey, minute, ReasonBooked)
				continue
			}
		}

		keep = append(keep, t)
	}
	return keep
}

func (e *Engine) blocked(blocks []TimeBlock, dayKey string, weekday time.Weekday, minute int) bool {
	for _, b := range blocks {
		if b.Blocks(dayKey, weekday, minute) {
			return true
		}
	}
	return false
}

func (e *Engine) booked(bookings []Booking, dayKey string, minute int) bool {
	for _, bk := range bookings {
		if bk.Conflicts(dayKey, minute, e.loc) {
			return true
		}
	}
	return false
}
