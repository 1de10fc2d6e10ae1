package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/restylehq/booking-platform/internal/highlevel"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// PaymentsClient creates checkout sessions; *highlevel.Client satisfies it.
type PaymentsClient interface {
	CreatePaymentSession(ctx context.Context, req highlevel.PaymentSessionRequest) (*highlevel.PaymentSession, error)
}

// PaymentsHandler proxies checkout-session creation upstream.
type PaymentsHandler struct {
	client PaymentsClient
	logger *logging.Logger
}

func NewPaymentsHandler(client PaymentsClient, logger *logging.Logger) *PaymentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PaymentsHandler{client: client, logger: logger}
}

func (h *PaymentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/session", h.CreateSession)
	return r
}

// CreateSession creates an upstream checkout session.
// POST /v1/payments/session
func (h *PaymentsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req highlevel.PaymentSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if !validHTTPURL(req.SuccessURL) || !validHTTPURL(req.CancelURL) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "successUrl and cancelUrl must be valid http(s) URLs"})
		return
	}

	session, err := h.client.CreatePaymentSession(r.Context(), req)
	if err != nil {
		h.logger.Error("payment session creation failed", "error", err)
		writeJSON(w, upstreamStatus(err), map[string]string{"error": "failed to create payment session"})
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
