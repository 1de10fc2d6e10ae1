package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/restylehq/booking-platform/internal/highlevel"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// ContactsClient is the upstream contact surface the handler needs.
type ContactsClient interface {
	Contacts(ctx context.Context, page int) (*highlevel.ContactsPage, error)
	SearchContacts(ctx context.Context, query string) ([]highlevel.Contact, error)
	CreateContact(ctx context.Context, req highlevel.CreateContactRequest) (*highlevel.Contact, error)
	GetContact(ctx context.Context, contactID string) (*highlevel.Contact, error)
	DeleteContact(ctx context.Context, contactID string) error
}

// ContactsHandler proxies upstream contact operations for the widget.
type ContactsHandler struct {
	client ContactsClient
	logger *logging.Logger
}

func NewContactsHandler(client ContactsClient, logger *logging.Logger) *ContactsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContactsHandler{client: client, logger: logger}
}

func (h *ContactsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/search", h.Search)
	r.Get("/{contactID}", h.Get)
	r.Delete("/{contactID}", h.Delete)
	return r
}

// List returns one page of contacts with pagination metadata.
// GET /v1/contacts?page=2
func (h *ContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "page must be a positive integer"})
			return
		}
		page = parsed
	}

	contacts, err := h.client.Contacts(r.Context(), page)
	if err != nil {
		h.logger.Error("contact listing failed", "page", page, "error", err)
		writeJSON(w, upstreamStatus(err), map[string]string{"error": "failed to fetch contacts"})
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// Search runs an upstream contact search.
// GET /v1/contacts/search?q=ali
func (h *ContactsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}

	contacts, err := h.client.SearchContacts(r.Context(), query)
	if err != nil {
		h.logger.Error("contact search failed", "error", err)
		writeJSON(w, upstreamStatus(err), map[string]string{"error": "failed to search contacts"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

// Create creates an upstream contact.
// POST /v1/contacts
func (h *ContactsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req highlevel.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Email == "" && req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email or phone is required"})
		return
	}

	contact, err := h.client.CreateContact(r.Context(), req)
	if err != nil {
		h.logger.Error("contact creation failed", "error", err)
		writeJSON(w, upstreamStatus(err), map[string]string{"error": "failed to create contact"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"contact": contact})
}

// Get fetches a single contact.
// GET /v1/contacts/{contactID}
func (h *ContactsHandler) Get(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")

	contact, err := h.client.GetContact(r.Context(), contactID)
	if err != nil {
		h.logger.Error("contact fetch failed", "contact_id", contactID, "error", err)
		writeJSON(w, upstreamStatus(err), map[string]string{"error": "failed to fetch contact"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contact": contact})
}

// Delete removes an upstream contact.
// DELETE /v1/contacts/{contactID}
func (h *ContactsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")

	if err := h.client.DeleteContact(r.Context(), contactID); err != nil {
		h.logger.Error("contact deletion failed", "contact_id", contactID, "error", err)
		writeJSON(w, upstreamStatus(err), map[string]string{"error": "failed to delete contact"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
