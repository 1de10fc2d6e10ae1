package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/restylehq/booking-platform/internal/availability"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// ScheduleWriter persists schedule configuration; *schedule.Store
// satisfies it.
type ScheduleWriter interface {
	UpsertBusinessDay(ctx context.Context, day availability.BusinessDay, isOpen bool) error
	UpsertStaffHours(ctx context.Context, hours *availability.StaffHours) error
}

// AdminScheduleHandler lets operators edit the constraint tables without
// raw SQL. Mounted behind admin JWT auth.
type AdminScheduleHandler struct {
	store  ScheduleWriter
	logger *logging.Logger
}

func NewAdminScheduleHandler(store ScheduleWriter, logger *logging.Logger) *AdminScheduleHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminScheduleHandler{store: store, logger: logger}
}

func (h *AdminScheduleHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Put("/business-hours/{weekday}", h.PutBusinessDay)
	r.Put("/staff-hours/{staffID}", h.PutStaffHours)
	return r
}

type businessDayBody struct {
	IsOpen       bool `json:"isOpen"`
	OpenMinutes  int  `json:"openMinutes"`
	CloseMinutes int  `json:"closeMinutes"`
}

// PutBusinessDay writes one weekday's opening hours.
// PUT /admin/schedule/business-hours/{weekday}
func (h *AdminScheduleHandler) PutBusinessDay(w http.ResponseWriter, r *http.Request) {
	weekday, ok := parseWeekday(chi.URLParam(r, "weekday"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weekday must be a day name or 0-6"})
		return
	}

	var body businessDayBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.IsOpen && !validMinuteWindow(body.OpenMinutes, body.CloseMinutes) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "openMinutes must be before closeMinutes, both within 0-1440"})
		return
	}

	day := availability.BusinessDay{Weekday: weekday, Open: body.OpenMinutes, Close: body.CloseMinutes}
	if err := h.store.UpsertBusinessDay(r.Context(), day, body.IsOpen); err != nil {
		h.logger.Error("business hours update failed", "weekday", weekday.String(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update business hours"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"dayOfWeek": weekday.String(), "updated": true})
}

type staffHoursBody struct {
	Week        map[string]availability.MinuteRange `json:"week"`
	WeekendDays []string                            `json:"weekendDays"`
}

// PutStaffHours writes a staff member's weekly hours and weekend days.
// PUT /admin/schedule/staff-hours/{staffID}
func (h *AdminScheduleHandler) PutStaffHours(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "staffID")
	if staffID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "staffID is required"})
		return
	}

	var body staffHoursBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	hours := &availability.StaffHours{
		StaffID:     staffID,
		WeekendDays: map[time.Weekday]bool{},
	}
	for name, window := range body.Week {
		weekday, ok := parseWeekday(name)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown weekday " + name})
			return
		}
		if !window.IsZero() && !validMinuteWindow(window.Start, window.End) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid minute window for " + name})
			return
		}
		hours.Week[int(weekday)] = window
	}
	for _, name := range body.WeekendDays {
		weekday, ok := parseWeekday(name)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown weekend day " + name})
			return
		}
		hours.WeekendDays[weekday] = true
	}

	if err := h.store.UpsertStaffHours(r.Context(), hours); err != nil {
		h.logger.Error("staff hours update failed", "staff_id", staffID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update staff hours"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"staffId": staffID, "updated": true})
}

func parseWeekday(raw string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "sunday":
		return time.Sunday, true
	case "1", "monday":
		return time.Monday, true
	case "2", "tuesday":
		return time.Tuesday, true
	case "3", "wednesday":
		return time.Wednesday, true
	case "4", "thursday":
		return time.Thursday, true
	case "5", "friday":
		return time.Friday, true
	case "6", "saturday":
		return time.Saturday, true
	}
	return 0, false
}

func validMinuteWindow(start, end int) bool {
	return start >= 0 && end <= 24*60 && start < end
}
