package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/restylehq/booking-platform/internal/highlevel"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// TokenHandler exposes the current upstream access token to the legacy
// frontend, which still calls the API directly for a few screens.
type TokenHandler struct {
	tokens highlevel.TokenSource
	logger *logging.Logger
}

func NewTokenHandler(tokens highlevel.TokenSource, logger *logging.Logger) *TokenHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TokenHandler{tokens: tokens, logger: logger}
}

func (h *TokenHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/token", h.Get)
	return r
}

// Get returns a currently valid access token.
// GET /v1/auth/token
func (h *TokenHandler) Get(w http.ResponseWriter, r *http.Request) {
	token, err := h.tokens.Token(r.Context())
	if err != nil {
		h.logger.Error("token fetch failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch access token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}
