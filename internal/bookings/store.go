// Package bookings mirrors upstream appointments into the local datastore.
package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/restylehq/booking-platform/internal/highlevel"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Record is one mirrored booking row.
type Record struct {
	ID                string
	CalendarID        string
	ContactID         string
	Title             string
	Status            string
	AppointmentStatus string
	AssignedUserID    string
	Address           string
	IsRecurring       bool
	TraceID           string
	StartTime         *time.Time
	EndTime           *time.Time
	DurationMinutes   *int
	Price             *float64
	PaymentStatus     string
	CustomerName      string
	StaffName         string
	ServiceName       string
}

// Extras carries booking fields the caller knows but the upstream API
// response does not return, such as display names and pricing.
type Extras struct {
	StartTime       string
	EndTime         string
	ServiceDuration *int
	ServicePrice    *float64
	PaymentStatus   string
	CustomerName    string
	StaffName       string
	ServiceName     string
	AssignedUserID  string
}

// Store persists mirrored bookings.
type Store struct {
	db     DB
	logger *logging.Logger
}

func NewStore(db DB, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{db: db, logger: logger}
}

// Upsert writes one booking, replacing any existing row with the same
// upstream id. The contact row is created first when missing so the
// foreign key holds.
func (s *Store) Upsert(ctx context.Context, appt *highlevel.Appointment, extras Extras) (*Record, error) {
	if appt == nil || appt.ID == "" {
		return nil, fmt.Errorf("bookings: appointment id is required")
	}

	if appt.ContactID != "" {
		if err := s.ensureContact(ctx, appt.ContactID); err != nil {
			return nil, err
		}
	}

	rec := mapRecord(appt, extras)

	_, err := s.db.Exec(ctx, `
		INSERT INTO restyle_bookings (id, calendar_id, contact_id, title, status,
			appointment_status, assigned_user_id, address, is_recurring, trace_id,
			start_time, end_time, booking_duration, booking_price, payment_status,
			customer_name, staff_name, service_name, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW())
		ON CONFLICT (id) DO UPDATE SET
			calendar_id = EXCLUDED.calendar_id,
			contact_id = EXCLUDED.contact_id,
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			appointment_status = EXCLUDED.appointment_status,
			assigned_user_id = EXCLUDED.assigned_user_id,
			address = EXCLUDED.address,
			is_recurring = EXCLUDED.is_recurring,
			trace_id = EXCLUDED.trace_id,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			booking_duration = EXCLUDED.booking_duration,
			booking_price = EXCLUDED.booking_price,
			payment_status = EXCLUDED.payment_status,
			customer_name = EXCLUDED.customer_name,
			staff_name = EXCLUDED.staff_name,
			service_name = EXCLUDED.service_name,
			updated_at = NOW()`,
		rec.ID, rec.CalendarID, rec.ContactID, rec.Title, rec.Status,
		rec.AppointmentStatus, rec.AssignedUserID, rec.Address, rec.IsRecurring, rec.TraceID,
		rec.StartTime, rec.EndTime, rec.DurationMinutes, rec.Price, rec.PaymentStatus,
		rec.CustomerName, rec.StaffName, rec.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("bookings: upsert %s: %w", rec.ID, err)
	}

	s.logger.Info("mirrored booking", "booking_id", rec.ID, "calendar_id", rec.CalendarID)
	return rec, nil
}

// List returns mirrored bookings whose start time falls in [from, to),
// newest first.
func (s *Store) List(ctx context.Context, from, to time.Time) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, COALESCE(calendar_id, ''), COALESCE(contact_id, ''),
			COALESCE(title, ''), COALESCE(status, ''), COALESCE(appointment_status, ''),
			COALESCE(assigned_user_id, ''), COALESCE(address, ''), is_recurring,
			COALESCE(trace_id, ''), start_time, end_time, booking_duration,
			booking_price, COALESCE(payment_status, ''), COALESCE(customer_name, ''),
			COALESCE(staff_name, ''), COALESCE(service_name, '')
		FROM restyle_bookings
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("bookings: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.CalendarID, &r.ContactID, &r.Title, &r.Status,
			&r.AppointmentStatus, &r.AssignedUserID, &r.Address, &r.IsRecurring,
			&r.TraceID, &r.StartTime, &r.EndTime, &r.DurationMinutes,
			&r.Price, &r.PaymentStatus, &r.CustomerName, &r.StaffName, &r.ServiceName); err != nil {
			return nil, fmt.Errorf("bookings: scan booking: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: list rows: %w", err)
	}
	return out, nil
}

func (s *Store) ensureContact(ctx context.Context, contactID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO restyle_contacts (id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING`, contactID)
	if err != nil {
		return fmt.Errorf("bookings: ensure contact %s: %w", contactID, err)
	}
	return nil
}

// mapRecord merges the upstream appointment with caller extras. Extras
// win over upstream values; missing times fall back across the upstream
// field aliases, and duration is computed from the times when nothing
// supplies it.
func mapRecord(appt *highlevel.Appointment, extras Extras) *Record {
	rec := &Record{
		ID:                appt.ID,
		CalendarID:        appt.CalendarID,
		ContactID:         appt.ContactID,
		Title:             appt.Title,
		Status:            appt.Status,
		AppointmentStatus: appt.AppointmentStatus,
		AssignedUserID:    firstNonEmpty(appt.AssignedUserID, extras.AssignedUserID),
		Address:           appt.Address,
		IsRecurring:       appt.IsRecurring,
		TraceID:           appt.TraceID,
		PaymentStatus:     extras.PaymentStatus,
		CustomerName:      extras.CustomerName,
		StaffName:         extras.StaffName,
		ServiceName:       extras.ServiceName,
		Price:             extras.ServicePrice,
	}

	if start, ok := appt.Start(); ok {
		rec.StartTime = &start
	} else if start, ok := resolveTime(extras.StartTime); ok {
		rec.StartTime = &start
	}
	if end, ok := appt.End(); ok {
		rec.EndTime = &end
	} else if end, ok := resolveTime(extras.EndTime); ok {
		rec.EndTime = &end
	}

	switch {
	case extras.ServiceDuration != nil:
		rec.DurationMinutes = extras.ServiceDuration
	case rec.StartTime != nil && rec.EndTime != nil:
		minutes := int(rec.EndTime.Sub(*rec.StartTime).Round(time.Minute) / time.Minute)
		rec.DurationMinutes = &minutes
	}

	return rec
}

func resolveTime(candidates ...string) (time.Time, bool) {
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
