package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/restylehq/booking-platform/internal/highlevel"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// StaffDirectory lists staff accounts; *highlevel.Client satisfies it.
type StaffDirectory interface {
	ListUsers(ctx context.Context, includeDeleted bool) ([]highlevel.User, error)
}

// StaffHandler proxies the upstream staff listing.
type StaffHandler struct {
	directory StaffDirectory
	logger    *logging.Logger
}

func NewStaffHandler(directory StaffDirectory, logger *logging.Logger) *StaffHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StaffHandler{directory: directory, logger: logger}
}

func (h *StaffHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// List returns the location's staff.
// GET /v1/staff?includeInactive=true
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	users, err := h.directory.ListUsers(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("staff listing failed", "error", err)
		writeJSON(w, upstreamStatus(err), map[string]string{"error": "failed to fetch staff"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
