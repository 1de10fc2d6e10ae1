package availability

import "github.com/restylehq/booking-platform/pkg/logging"

// DropReason identifies why a day or candidate slot was excluded.
type DropReason string

const (
	ReasonBusinessClosed  DropReason = "business_closed"
	ReasonStaffWeekend    DropReason = "staff_weekend"
	ReasonStaffHoursUnset DropReason = "staff_hours_unset"
	ReasonTimeOff         DropReason = "time_off"

	ReasonDayMismatch          DropReason = "day_key_mismatch"
	ReasonOutsideBusinessHours DropReason = "outside_business_hours"
	ReasonOutsideStaffHours    DropReason = "outside_staff_hours"
	ReasonTimeBlock            DropReason = "time_block"
	ReasonBooked               DropReason = "booked"
)

// Observer receives filter decisions as they are made. Implementations
// must be cheap; the engine calls them on the hot path.
type Observer interface {
	DayDropped(dayKey string, reason DropReason)
	SlotExcluded(dayKey string, minute int, reason DropReason)
}

// NopObserver discards all decisions.
type NopObserver struct{}

func (NopObserver) DayDropped(string, DropReason)        {}
func (NopObserver) SlotExcluded(string, int, DropReason) {}

// LogObserver emits decisions at debug level.
type LogObserver struct {
	Logger *logging.Logger
}

func (o LogObserver) DayDropped(dayKey string, reason DropReason) {
	o.Logger.Debug("day dropped", "day", dayKey, "reason", string(reason))
}

func (o LogObserver) SlotExcluded(dayKey string, minute int, reason DropReason) {
	o.Logger.Debug("slot excluded", "day", dayKey, "minute", minute, "reason", string(reason))
}
