package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restylehq/booking-platform/internal/highlevel"
	"github.com/restylehq/booking-platform/pkg/logging"
)

type fakePaymentsClient struct {
	session *highlevel.PaymentSession
	err     error
}

func (f *fakePaymentsClient) CreatePaymentSession(context.Context, highlevel.PaymentSessionRequest) (*highlevel.PaymentSession, error) {
	return f.session, f.err
}

func postSession(t *testing.T, h *PaymentsHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewBufferString(body))
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestPaymentSessionValidatesURLs(t *testing.T) {
	h := NewPaymentsHandler(&fakePaymentsClient{}, logging.New("error"))

	for _, body := range []string{
		`{"successUrl":"","cancelUrl":"https://shop.example/cancel"}`,
		`{"successUrl":"ftp://shop.example/ok","cancelUrl":"https://shop.example/cancel"}`,
		`{"successUrl":"https://shop.example/ok","cancelUrl":"not a url"}`,
	} {
		rec := postSession(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestPaymentSessionCreated(t *testing.T) {
	h := NewPaymentsHandler(&fakePaymentsClient{
		session: &highlevel.PaymentSession{ID: "sess_1", URL: "https://pay.example/sess_1"},
	}, logging.New("error"))

	rec := postSession(t, h, `{"successUrl":"https://shop.example/ok","cancelUrl":"https://shop.example/cancel"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var session highlevel.PaymentSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "sess_1", session.ID)
}

func TestPaymentSessionUpstreamFailure(t *testing.T) {
	h := NewPaymentsHandler(&fakePaymentsClient{
		err: &highlevel.StatusError{StatusCode: http.StatusUnprocessableEntity, Body: "bad amount"},
	}, logging.New("error"))

	rec := postSession(t, h, `{"successUrl":"https://shop.example/ok","cancelUrl":"https://shop.example/cancel"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
