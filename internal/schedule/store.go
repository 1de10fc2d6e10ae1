// Package schedule persists the scheduling constraint tables and
// exposes them as an availability.Source.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/restylehq/booking-platform/internal/availability"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads and writes the schedule constraint tables.
type Store struct {
	db     DB
	loc    *time.Location
	logger *logging.Logger
}

// NewStore creates a schedule store. loc is the booking timezone used
// to normalize one-off block dates.
func NewStore(db DB, loc *time.Location, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{db: db, loc: loc, logger: logger}
}

var _ availability.Source = (*Store)(nil)

// BusinessWeek returns opening hours for every open weekday.
func (s *Store) BusinessWeek(ctx context.Context) (availability.BusinessWeek, error) {
	rows, err := s.db.Query(ctx, `
		SELECT day_of_week, open_time, close_time
		FROM business_hours
		WHERE is_open = true`)
	if err != nil {
		return nil, fmt.Errorf("schedule: fetch business hours: %w", err)
	}
	defer rows.Close()

	week := make(availability.BusinessWeek)
	for rows.Next() {
		var day, openMin, closeMin int
		if err := rows.Scan(&day, &openMin, &closeMin); err != nil {
			return nil, fmt.Errorf("schedule: scan business hours: %w", err)
		}
		wd := time.Weekday(day)
		week[wd] = availability.BusinessDay{Weekday: wd, Open: openMin, Close: closeMin}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule: iterate business hours: %w", err)
	}
	return week, nil
}

// StaffHours returns the weekly pattern for one staff member. A missing
// row is an error: the caller asked for a specific staff filter.
func (s *Store) StaffHours(ctx context.Context, staffID string) (*availability.StaffHours, error) {
	row := s.db.QueryRow(ctx, `
		SELECT sunday_start, sunday_end,
		       monday_start, monday_end,
		       tuesday_start, tuesday_end,
		       wednesday_start, wednesday_end,
		       thursday_start, thursday_end,
		       friday_start, friday_end,
		       saturday_start, saturday_end,
		       COALESCE(weekend_days, '')
		FROM staff_hours
		WHERE ghl_id = $1`, staffID)

	hours := &availability.StaffHours{StaffID: staffID}
	var weekendRaw string
	dest := make([]any, 0, 15)
	for i := 0; i < 7; i++ {
		dest = append(dest, &hours.Week[i].Start, &hours.Week[i].End)
	}
	dest = append(dest, &weekendRaw)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("schedule: staff hours not found for %s", staffID)
		}
		return nil, fmt.Errorf("schedule: fetch staff hours: %w", err)
	}

	hours.WeekendDays = parseWeekendDays(weekendRaw)
	return hours, nil
}

// TimeOff returns all time-off windows for one staff member.
func (s *Store) TimeOff(ctx context.Context, staffID string) ([]availability.TimeOffPeriod, error) {
	rows, err := s.db.Query(ctx, `
		SELECT starts_at, ends_at
		FROM time_off
		WHERE ghl_id = $1`, staffID)
	if err != nil {
		return nil, fmt.Errorf("schedule: fetch time off: %w", err)
	}
	defer rows.Close()

	var periods []availability.TimeOffPeriod
	for rows.Next() {
		var p availability.TimeOffPeriod
		if err := rows.Scan(&p.Start, &p.End); err != nil {
			return nil, fmt.Errorf("schedule: scan time off: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule: iterate time off: %w", err)
	}
	return periods, nil
}

// TimeBlocks returns staff exclusion windows. Individual rows with
// malformed recurring-day lists or dates are logged and skipped so one
// bad record does not sink the request.
func (s *Store) TimeBlocks(ctx context.Context, staffID string) ([]availability.TimeBlock, error) {
	rows, err := s.db.Query(ctx, `
		SELECT COALESCE(name, 'Time Block'),
		       COALESCE(recurring, ''),
		       COALESCE(recurring_days, ''),
		       COALESCE(block_date, ''),
		       start_minute, end_minute
		FROM time_block
		WHERE ghl_id = $1`, staffID)
	if err != nil {
		return nil, fmt.Errorf("schedule: fetch time blocks: %w", err)
	}
	defer rows.Close()

	var blocks []availability.TimeBlock
	for rows.Next() {
		var (
			name, recurringRaw, daysRaw, dateRaw string
			startMin, endMin                     int
		)
		if err := rows.Scan(&name, &recurringRaw, &daysRaw, &dateRaw, &startMin, &endMin); err != nil {
			return nil, fmt.Errorf("schedule: scan time block: %w", err)
		}

		block := availability.TimeBlock{
			Name:      name,
			Recurring: parseBoolish(recurringRaw),
			Window:    availability.MinuteRange{Start: startMin, End: endMin},
		}
		if block.Recurring {
			block.Days = parseDayNames(daysRaw)
			if len(block.Days) == 0 {
				s.logger.Warn("skipping time block with unparseable recurring days",
					"staff_id", staffID, "name", name, "recurring_days", daysRaw)
				continue
			}
		} else {
			dayKey, err := parseBlockDate(dateRaw, s.loc)
			if err != nil {
				s.logger.Warn("skipping time block with unparseable date",
					"staff_id", staffID, "name", name, "block_date", dateRaw, "error", err)
				continue
			}
			block.Date = dayKey
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule: iterate time blocks: %w", err)
	}
	return blocks, nil
}

// Bookings returns confirmed bookings for one staff member whose start
// time falls inside [from, to). Only rows that actually hold a slot
// count: status booked/confirmed with appointment_status
// confirmed/pending.
func (s *Store) Bookings(ctx context.Context, staffID string, from, to time.Time) ([]availability.Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT start_time, booking_duration
		FROM restyle_bookings
		WHERE assigned_user_id = $1
		  AND status = ANY($2)
		  AND appointment_status = ANY($3)
		  AND start_time >= $4
		  AND start_time < $5`,
		staffID,
		[]string{"booked", "confirmed"},
		[]string{"confirmed", "pending"},
		from, to)
	if err != nil {
		return nil, fmt.Errorf("schedule: fetch bookings: %w", err)
	}
	defer rows.Close()

	var bookings []availability.Booking
	for rows.Next() {
		var (
			start    time.Time
			duration *int
		)
		if err := rows.Scan(&start, &duration); err != nil {
			return nil, fmt.Errorf("schedule: scan booking: %w", err)
		}
		bk := availability.Booking{Start: start, Duration: availability.DefaultServiceDuration}
		if duration != nil && *duration > 0 {
			bk.Duration = *duration
		}
		bookings = append(bookings, bk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule: iterate bookings: %w", err)
	}
	return bookings, nil
}

// UpsertBusinessDay writes one weekday's opening hours.
func (s *Store) UpsertBusinessDay(ctx context.Context, day availability.BusinessDay, isOpen bool) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO business_hours (day_of_week, is_open, open_time, close_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (day_of_week)
		DO UPDATE SET is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			updated_at = now()`,
		int(day.Weekday), isOpen, day.Open, day.Close)
	if err != nil {
		return fmt.Errorf("schedule: upsert business day: %w", err)
	}
	return nil
}

// UpsertStaffHours writes one staff member's weekly pattern. The
// weekend set is stored as a JSON array of day names, the cleanest of
// the shapes parseWeekendDays accepts.
func (s *Store) UpsertStaffHours(ctx context.Context, hours *availability.StaffHours) error {
	names := make([]string, 0, len(hours.WeekendDays))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if hours.WeekendDays[d] {
			names = append(names, d.String())
		}
	}
	weekend := "[]"
	if len(names) > 0 {
		weekend = `["` + joinDays(names) + `"]`
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO staff_hours (ghl_id,
			sunday_start, sunday_end, monday_start, monday_end,
			tuesday_start, tuesday_end, wednesday_start, wednesday_end,
			thursday_start, thursday_end, friday_start, friday_end,
			saturday_start, saturday_end, weekend_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (ghl_id)
		DO UPDATE SET
			sunday_start = EXCLUDED.sunday_start, sunday_end = EXCLUDED.sunday_end,
			monday_start = EXCLUDED.monday_start, monday_end = EXCLUDED.monday_end,
			tuesday_start = EXCLUDED.tuesday_start, tuesday_end = EXCLUDED.tuesday_end,
			wednesday_start = EXCLUDED.wednesday_start, wednesday_end = EXCLUDED.wednesday_end,
			thursday_start = EXCLUDED.thursday_start, thursday_end = EXCLUDED.thursday_end,
			friday_start = EXCLUDED.friday_start, friday_end = EXCLUDED.friday_end,
			saturday_start = EXCLUDED.saturday_start, saturday_end = EXCLUDED.saturday_end,
			weekend_days = EXCLUDED.weekend_days,
			updated_at = now()`,
		hours.StaffID,
		hours.Week[0].Start, hours.Week[0].End,
		hours.Week[1].Start, hours.Week[1].End,
		hours.Week[2].Start, hours.Week[2].End,
		hours.Week[3].Start, hours.Week[3].End,
		hours.Week[4].Start, hours.Week[4].End,
		hours.Week[5].Start, hours.Week[5].End,
		hours.Week[6].Start, hours.Week[6].End,
		weekend)
	if err != nil {
		return fmt.Errorf("schedule: upsert staff hours: %w", err)
	}
	return nil
}

func joinDays(names []string) string {
	out := names[0]
	for _, n := range names[1:] {
		out += `","` + n
	}
	return out
}
