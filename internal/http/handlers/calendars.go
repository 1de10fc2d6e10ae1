package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/restylehq/booking-platform/internal/highlevel"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// CalendarsClient exposes the upstream calendar lookups;
// *highlevel.Client satisfies it.
type CalendarsClient interface {
	FreeSlots(ctx context.Context, calendarID string, start, end time.Time) (map[string]highlevel.DaySlots, error)
}

// CalendarsHandler proxies upstream calendar availability, for callers
// that want the raw upstream buckets instead of the locally computed
// working slots.
type CalendarsHandler struct {
	client CalendarsClient
	logger *logging.Logger
}

func NewCalendarsHandler(client CalendarsClient, logger *logging.Logger) *CalendarsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CalendarsHandler{client: client, logger: logger}
}

func (h *CalendarsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{calendarID}/free-slots", h.FreeSlots)
	return r
}

// FreeSlots proxies the upstream free-slot buckets for one calendar.
// startDate and endDate are epoch milliseconds; the range defaults to
// the next 30 days.
// GET /v1/calendars/{calendarID}/free-slots?startDate=...&endDate=...
func (h *CalendarsHandler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	calendarID := chi.URLParam(r, "calendarID")

	start := time.Now()
	end := start.AddDate(0, 0, 30)
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "startDate must be epoch milliseconds"})
			return
		}
		start = time.UnixMilli(millis)
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endDate must be epoch milliseconds"})
			return
		}
		end = time.UnixMilli(millis)
	}

	slots, err := h.client.FreeSlots(r.Context(), calendarID, start, end)
	if err != nil {
		h.logger.Error("upstream free-slots lookup failed", "calendar_id", calendarID, "error", err)
		writeJSON(w, upstreamStatus(err), map[string]string{"error": "failed to fetch free slots"})
		return
	}

	writeJSON(w, http.StatusOK, slots)
}
