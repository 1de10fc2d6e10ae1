package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/restylehq/booking-platform/internal/highlevel"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// upstreamStatus maps a client error to the HTTP status the proxy should
// return. Upstream status codes pass through; everything else is a 502.
func upstreamStatus(err error) int {
	var statusErr *highlevel.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return http.StatusBadGateway
}
