// Package highlevel is a REST client for the upstream scheduling SaaS.
package highlevel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/restylehq/booking-platform/internal/observability/metrics"
	"github.com/restylehq/booking-platform/pkg/logging"
)

const (
	// DefaultBaseURL is the production upstream endpoint.
	DefaultBaseURL = "https://services.leadconnectorhq.com"

	defaultTimeout = 20 * time.Second

	// API version headers differ per upstream resource family.
	versionCalendars = "2021-04-15"
	versionContacts  = "2021-07-28"

	maxRetries     = 3
	retryBaseDelay = 500 * time.Millisecond
)

var tracer = otel.Tracer("restylehq.internal.highlevel")

// TokenSource yields a currently-valid bearer token for the upstream API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for tests and one-off scripts.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Client talks to the upstream scheduling API.
type Client struct {
	baseURL    string
	locationID string
	httpClient *http.Client
	tokens     TokenSource
	logger     *logging.Logger
	metrics    *metrics.Upstream

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewClient creates an upstream client. baseURL falls back to the
// production endpoint when empty.
func NewClient(baseURL, locationID string, tokens TokenSource, logger *logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    baseURL,
		locationID: locationID,
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// WithMetrics attaches upstream request metrics. Returns the client for
// chaining at construction.
func (c *Client) WithMetrics(m *metrics.Upstream) *Client {
	c.metrics = m
	return c
}

// LocationID returns the configured upstream location.
func (c *Client) LocationID() string { return c.locationID }

// FreeSlots fetches the upstream free-slot buckets for a calendar over
// [start, end], keyed by day.
func (c *Client) FreeSlots(ctx context.Context, calendarID string, start, end time.Time) (map[string]DaySlots, error) {
	path := fmt.Sprintf("/calendars/%s/free-slots?startDate=%d&endDate=%d",
		url.PathEscape(calendarID), start.UnixMilli(), end.UnixMilli())

	out := map[string]DaySlots{}
	if err := c.do(ctx, http.MethodGet, path, versionCalendars, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers returns staff accounts for the location.
func (c *Client) ListUsers(ctx context.Context, includeDeleted bool) ([]User, error) {
	path := "/users/?locationId=" + url.QueryEscape(c.locationID) + "&limit=100"

	var out struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, path, versionCalendars, nil, &out); err != nil {
		return nil, err
	}
	if includeDeleted {
		return out.Users, nil
	}
	users := make([]User, 0, len(out.Users))
	for _, u := range out.Users {
		if !u.Deleted {
			users = append(users, u)
		}
	}
	return users, nil
}

// Contacts returns one page of the location's contacts.
func (c *Client) Contacts(ctx context.Context, page int) (*ContactsPage, error) {
	if page < 1 {
		page = 1
	}
	path := "/contacts/?locationId=" + url.QueryEscape(c.locationID) + "&page=" + strconv.Itoa(page)

	var out struct {
		Contacts []Contact `json:"contacts"`
		Meta     struct {
			CurrentPage int  `json:"currentPage"`
			Total       int  `json:"total"`
			NextPage    *int `json:"nextPage"`
			PrevPage    *int `json:"prevPage"`
		} `json:"meta"`
	}
	if err := c.do(ctx, http.MethodGet, path, versionContacts, nil, &out); err != nil {
		return nil, err
	}

	result := &ContactsPage{
		Contacts: out.Contacts,
		Page:     out.Meta.CurrentPage,
		Total:    out.Meta.Total,
		NextPage: out.Meta.NextPage,
		PrevPage: out.Meta.PrevPage,
	}
	if result.Page == 0 {
		result.Page = page
	}
	return result, nil
}

// SearchContacts runs the upstream contact search.
func (c *Client) SearchContacts(ctx context.Context, query string) ([]Contact, error) {
	path := "/contacts/?locationId=" + url.QueryEscape(c.locationID) + "&query=" + url.QueryEscape(query)

	var out struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := c.do(ctx, http.MethodGet, path, versionContacts, nil, &out); err != nil {
		return nil, err
	}
	return out.Contacts, nil
}

// CreateContact creates an upstream contact.
func (c *Client) CreateContact(ctx context.Context, req CreateContactRequest) (*Contact, error) {
	body := struct {
		CreateContactRequest
		LocationID string `json:"locationId"`
	}{req, c.locationID}

	var out struct {
		Contact Contact `json:"contact"`
	}
	if err := c.do(ctx, http.MethodPost, "/contacts/", versionContacts, body, &out); err != nil {
		return nil, err
	}
	return &out.Contact, nil
}

// GetContact fetches a single contact by id.
func (c *Client) GetContact(ctx context.Context, contactID string) (*Contact, error) {
	var out struct {
		Contact Contact `json:"contact"`
	}
	if err := c.do(ctx, http.MethodGet, "/contacts/"+url.PathEscape(contactID), versionContacts, nil, &out); err != nil {
		return nil, err
	}
	return &out.Contact, nil
}

// DeleteContact removes an upstream contact.
func (c *Client) DeleteContact(ctx context.Context, contactID string) error {
	return c.do(ctx, http.MethodDelete, "/contacts/"+url.PathEscape(contactID), versionContacts, nil, nil)
}

// CreateAppointment books a slot upstream.
func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*Appointment, error) {
	if req.LocationID == "" {
		req.LocationID = c.locationID
	}
	var out Appointment
	if err := c.do(ctx, http.MethodPost, "/calendars/events/appointments", versionCalendars, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAppointment patches an existing upstream appointment.
func (c *Client) UpdateAppointment(ctx context.Context, appointmentID string, fields map[string]any) (*Appointment, error) {
	var out Appointment
	path := "/calendars/events/appointments/" + url.PathEscape(appointmentID)
	if err := c.do(ctx, http.MethodPut, path, versionCalendars, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePaymentSession creates an upstream checkout session.
func (c *Client) CreatePaymentSession(ctx context.Context, req PaymentSessionRequest) (*PaymentSession, error) {
	if req.LocationID == "" {
		req.LocationID = c.locationID
	}
	if len(req.PaymentMethods) == 0 {
		req.PaymentMethods = []string{"card"}
	}
	var out PaymentSession
	if err := c.do(ctx, http.MethodPost, "/payments/checkout-sessions", versionContacts, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StatusError carries the upstream HTTP status so handlers can pass it
// through (the proxy endpoints mirror upstream failures).
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("highlevel: status %d: %s", e.StatusCode, e.Body)
}

func (c *Client) do(ctx context.Context, method, path, version string, in, out any) error {
	ctx, span := tracer.Start(ctx, "highlevel.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("highlevel: acquire token: %w", err)
	}

	var payload []byte
	if in != nil {
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("highlevel: marshal request: %w", err)
		}
	}

	delay := retryBaseDelay
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("highlevel: create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Version", version)
		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("highlevel: http request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("highlevel: read response: %w", err)
		}

		c.metrics.ObserveRequest(strconv.Itoa(resp.StatusCode))

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries {
			c.metrics.ObserveRetry()
			c.logger.Warn("upstream rate limited, retrying",
				"path", path, "attempt", attempt+1, "delay", delay.String())
			c.sleep(delay)
			delay *= 2
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			msg := string(body)
			if len(msg) > 300 {
				msg = msg[:300]
			}
			return &StatusError{StatusCode: resp.StatusCode, Body: msg}
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("highlevel: unmarshal response: %w", err)
		}
		return nil
	}
}
