package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restylehq/booking-platform/internal/highlevel"
	"github.com/restylehq/booking-platform/pkg/logging"
)

func TestUpsertEnsuresContactAndComputesDuration(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO restyle_contacts").
		WithArgs("contact_1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO restyle_bookings").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewStore(mock, logging.New("error"))
	rec, err := store.Upsert(context.Background(), &highlevel.Appointment{
		ID:         "appt_1",
		CalendarID: "cal_9",
		ContactID:  "contact_1",
		StartTime:  "2025-06-02T10:00:00-06:00",
		EndTime:    "2025-06-02T10:45:00-06:00",
	}, Extras{CustomerName: "Ali Benson"})
	require.NoError(t, err)

	require.NotNil(t, rec.DurationMinutes)
	assert.Equal(t, 45, *rec.DurationMinutes)
	assert.Equal(t, "Ali Benson", rec.CustomerName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertExtrasWinOverComputedValues(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO restyle_bookings").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	duration := 60
	price := 120.0
	store := NewStore(mock, logging.New("error"))
	rec, err := store.Upsert(context.Background(), &highlevel.Appointment{
		ID:        "appt_2",
		StartTime: "2025-06-02T10:00:00-06:00",
		EndTime:   "2025-06-02T10:30:00-06:00",
	}, Extras{
		ServiceDuration: &duration,
		ServicePrice:    &price,
		AssignedUserID:  "staff_7",
		PaymentStatus:   "paid",
	})
	require.NoError(t, err)

	assert.Equal(t, 60, *rec.DurationMinutes)
	assert.Equal(t, 120.0, *rec.Price)
	assert.Equal(t, "staff_7", rec.AssignedUserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertTimeFallsBackToExtras(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO restyle_bookings").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewStore(mock, logging.New("error"))
	rec, err := store.Upsert(context.Background(), &highlevel.Appointment{
		ID: "appt_3",
	}, Extras{
		StartTime: "2025-06-02T10:00:00-06:00",
		EndTime:   "2025-06-02T11:00:00-06:00",
	})
	require.NoError(t, err)

	require.NotNil(t, rec.StartTime)
	require.NotNil(t, rec.EndTime)
	assert.Equal(t, 60, *rec.DurationMinutes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRejectsMissingID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewStore(mock, logging.New("error"))
	_, err = store.Upsert(context.Background(), &highlevel.Appointment{}, Extras{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appointment id is required")
}

func TestListScansRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	start := time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	duration := 30

	rows := pgxmock.NewRows([]string{
		"id", "calendar_id", "contact_id", "title", "status", "appointment_status",
		"assigned_user_id", "address", "is_recurring", "trace_id", "start_time",
		"end_time", "booking_duration", "booking_price", "payment_status",
		"customer_name", "staff_name", "service_name",
	}).AddRow("appt_1", "cal_9", "contact_1", "Cut", "booked", "confirmed",
		"staff_7", "", false, "", &start, &end, &duration,
		(*float64)(nil), "paid", "Ali Benson", "Dana", "Haircut")

	mock.ExpectQuery("FROM restyle_bookings").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(rows)

	store := NewStore(mock, logging.New("error"))
	got, err := store.List(context.Background(), start.AddDate(0, 0, -1), start.AddDate(0, 0, 1))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "appt_1", got[0].ID)
	assert.Equal(t, 30, *got[0].DurationMinutes)
	assert.Equal(t, "Dana", got[0].StaffName)
	require.NoError(t, mock.ExpectationsWereMet())
}
