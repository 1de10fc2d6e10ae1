package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/restylehq/booking-platform/internal/availability"
	"github.com/restylehq/booking-platform/internal/observability/metrics"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// SlotsEngine computes availability; *availability.Engine satisfies it.
type SlotsEngine interface {
	Compute(ctx context.Context, req availability.Request) (*availability.Result, error)
	Location() *time.Location
}

// SlotsHandler serves the working-slots lookup the booking widget polls.
type SlotsHandler struct {
	engine  SlotsEngine
	metrics *metrics.Slots
	logger  *logging.Logger
}

func NewSlotsHandler(engine SlotsEngine, m *metrics.Slots, logger *logging.Logger) *SlotsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SlotsHandler{engine: engine, metrics: m, logger: logger}
}

// Routes returns a chi router with the slots routes.
func (h *SlotsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	return r
}

// slotsResponse mirrors the envelope the widget already consumes.
type slotsResponse struct {
	CalendarID string              `json:"calendarId"`
	ActiveDay  string              `json:"activeDay"`
	StartDate  string              `json:"startDate"`
	Slots      map[string][]string `json:"slots"`
	Debug      *slotsDebug         `json:"debug,omitempty"`
}

type slotsDebug struct {
	StaffHours             *availability.StaffHours     `json:"staffHours,omitempty"`
	TimeOff                []availability.TimeOffPeriod `json:"timeOff,omitempty"`
	TimeBlocks             []availability.TimeBlock     `json:"timeBlocks,omitempty"`
	ExistingBookings       []availability.Booking       `json:"existingBookings,omitempty"`
	ServiceDurationMinutes int                          `json:"serviceDurationMinutes"`
	TargetTimeZone         string                       `json:"targetTimeZone"`
}

// Get computes availability over the booking window.
// GET /working-slots?calendarId=...&userId=...&date=YYYY-MM-DD&serviceDuration=30
func (h *SlotsHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	calendarID := q.Get("calendarId")
	if calendarID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "calendarId is required"})
		return
	}

	req := availability.Request{StaffID: q.Get("userId")}
	if raw := q.Get("serviceDuration"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			req.ServiceDuration = minutes
		}
	}
	if raw := q.Get("date"); raw != "" {
		if day, err := availability.ParseDay(raw, h.engine.Location()); err == nil {
			req.Start = day
		}
	}
	if req.Start.IsZero() {
		req.Start = time.Now().In(h.engine.Location())
	}

	started := time.Now()
	result, err := h.engine.Compute(r.Context(), req)
	if err != nil {
		h.logger.Error("slot computation failed",
			"calendar_id", calendarID, "staff_id", req.StaffID, "error", err)
		h.metrics.ObserveRequest("error", time.Since(started))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to fetch working slots",
			"details": err.Error(),
		})
		return
	}
	h.metrics.ObserveRequest("ok", time.Since(started))

	resp := slotsResponse{
		CalendarID: calendarID,
		ActiveDay:  "allDays",
		StartDate:  result.StartDate,
		Slots:      result.Slots,
	}
	// Staff-scoped requests carry the constraint sets so the widget's
	// debug panel can explain why a slot is missing.
	if req.StaffID != "" && result.Snapshot != nil {
		duration := req.ServiceDuration
		if duration == 0 {
			duration = availability.DefaultServiceDuration
		}
		resp.Debug = &slotsDebug{
			StaffHours:             result.Snapshot.Staff,
			TimeOff:                result.Snapshot.TimeOff,
			TimeBlocks:             result.Snapshot.Blocks,
			ExistingBookings:       result.Snapshot.Bookings,
			ServiceDurationMinutes: duration,
			TargetTimeZone:         h.engine.Location().String(),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
