package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/restylehq/booking-platform/internal/bookings"
	"github.com/restylehq/booking-platform/internal/highlevel"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// AppointmentsClient books upstream; *highlevel.Client satisfies it.
type AppointmentsClient interface {
	CreateAppointment(ctx context.Context, req highlevel.CreateAppointmentRequest) (*highlevel.Appointment, error)
	UpdateAppointment(ctx context.Context, appointmentID string, fields map[string]any) (*highlevel.Appointment, error)
}

// BookingMirror persists bookings locally; *bookings.Store satisfies it.
type BookingMirror interface {
	Upsert(ctx context.Context, appt *highlevel.Appointment, extras bookings.Extras) (*bookings.Record, error)
	List(ctx context.Context, from, to time.Time) ([]bookings.Record, error)
}

// BookingEventPublisher emits booking lifecycle events to the outbox.
type BookingEventPublisher interface {
	BookingCreated(ctx context.Context, rec *bookings.Record) error
}

// AppointmentsHandler books upstream and mirrors the result locally.
type AppointmentsHandler struct {
	client AppointmentsClient
	mirror BookingMirror
	events BookingEventPublisher
	logger *logging.Logger
}

func NewAppointmentsHandler(client AppointmentsClient, mirror BookingMirror, events BookingEventPublisher, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{client: client, mirror: mirror, events: events, logger: logger}
}

func (h *AppointmentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Put("/{appointmentID}", h.Update)
	return r
}

// BookingsRoutes returns routes for the mirrored booking listing.
func (h *AppointmentsHandler) BookingsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListBookings)
	return r
}

// CreateAppointmentBody is the booking request the widget sends: the
// upstream appointment fields plus display extras only the frontend knows.
type CreateAppointmentBody struct {
	CalendarID     string `json:"calendarId"`
	ContactID      string `json:"contactId"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Title          string `json:"title,omitempty"`
	AssignedUserID string `json:"assignedUserId,omitempty"`
	Address        string `json:"address,omitempty"`

	ServiceDuration *int     `json:"serviceDuration,omitempty"`
	ServicePrice    *float64 `json:"servicePrice,omitempty"`
	ServiceName     string   `json:"serviceName,omitempty"`
	CustomerName    string   `json:"customerName,omitempty"`
	StaffName       string   `json:"staffName,omitempty"`
	PaymentStatus   string   `json:"paymentStatus,omitempty"`
}

// Create books the slot upstream, then mirrors it.
// POST /v1/appointments
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body CreateAppointmentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.CalendarID == "" || body.ContactID == "" || body.StartTime == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "calendarId, contactId and startTime are required"})
		return
	}

	appt, err := h.client.CreateAppointment(r.Context(), highlevel.CreateAppointmentRequest{
		CalendarID:     body.CalendarID,
		ContactID:      body.ContactID,
		StartTime:      body.StartTime,
		EndTime:        body.EndTime,
		Title:          body.Title,
		AssignedUserID: body.AssignedUserID,
		Address:        body.Address,
	})
	if err != nil {
		h.logger.Error("upstream booking failed", "calendar_id", body.CalendarID, "error", err)
		writeJSON(w, upstreamStatus(err), map[string]string{"error": "failed to create appointment"})
		return
	}

	rec, err := h.mirror.Upsert(r.Context(), appt, bookings.Extras{
		StartTime:       body.StartTime,
		EndTime:         body.EndTime,
		ServiceDuration: body.ServiceDuration,
		ServicePrice:    body.ServicePrice,
		ServiceName:     body.ServiceName,
		CustomerName:    body.CustomerName,
		StaffName:       body.StaffName,
		PaymentStatus:   body.PaymentStatus,
		AssignedUserID:  body.AssignedUserID,
	})
	if err != nil {
		// The upstream booking exists; surface it even though the
		// mirror write failed.
		h.logger.Error("booking mirror failed", "booking_id", appt.ID, "error", err)
		writeJSON(w, http.StatusCreated, map[string]any{"appointment": appt, "mirrored": false})
		return
	}

	if h.events != nil {
		if err := h.events.BookingCreated(r.Context(), rec); err != nil {
			h.logger.Error("booking event publish failed", "booking_id", rec.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{"appointment": appt, "mirrored": true})
}

// Update patches the upstream appointment, then refreshes the mirror
// row from the response.
// PUT /v1/appointments/{appointmentID}
func (h *AppointmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")

	var body CreateAppointmentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	fields := map[string]any{}
	for key, value := range map[string]string{
		"calendarId":     body.CalendarID,
		"startTime":      body.StartTime,
		"endTime":        body.EndTime,
		"title":          body.Title,
		"assignedUserId": body.AssignedUserID,
		"address":        body.Address,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	if len(fields) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no appointment fields to update"})
		return
	}

	appt, err := h.client.UpdateAppointment(r.Context(), appointmentID, fields)
	if err != nil {
		h.logger.Error("upstream appointment update failed", "appointment_id", appointmentID, "error", err)
		writeJSON(w, upstreamStatus(err), map[string]string{"error": "failed to update appointment"})
		return
	}
	if appt.ID == "" {
		appt.ID = appointmentID
	}

	_, mirrorErr := h.mirror.Upsert(r.Context(), appt, bookings.Extras{
		StartTime:       body.StartTime,
		EndTime:         body.EndTime,
		ServiceDuration: body.ServiceDuration,
		ServicePrice:    body.ServicePrice,
		ServiceName:     body.ServiceName,
		CustomerName:    body.CustomerName,
		StaffName:       body.StaffName,
		PaymentStatus:   body.PaymentStatus,
		AssignedUserID:  body.AssignedUserID,
	})
	if mirrorErr != nil {
		h.logger.Error("booking mirror failed", "booking_id", appt.ID, "error", mirrorErr)
		writeJSON(w, http.StatusOK, map[string]any{"appointment": appt, "mirrored": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"appointment": appt, "mirrored": true})
}

// ListBookings returns mirrored bookings in a date range, defaulting to
// the trailing 30 days through the next 30.
// GET /v1/bookings?from=2025-06-01&to=2025-07-01
func (h *AppointmentsHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 30)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be YYYY-MM-DD"})
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must be YYYY-MM-DD"})
			return
		}
		to = parsed
	}

	records, err := h.mirror.List(r.Context(), from, to)
	if err != nil {
		h.logger.Error("booking listing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch bookings"})
		return
	}
	if records == nil {
		records = []bookings.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": records})
}
