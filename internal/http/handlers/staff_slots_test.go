package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restylehq/booking-platform/internal/availability"
	"github.com/restylehq/booking-platform/internal/observability/metrics"
	"github.com/restylehq/booking-platform/pkg/logging"
)

func newRegistry() *prometheus.Registry { return prometheus.NewRegistry() }

type fakeEngine struct {
	loc     *time.Location
	result  *availability.Result
	err     error
	lastReq availability.Request
}

func (f *fakeEngine) Compute(_ context.Context, req availability.Request) (*availability.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeEngine) Location() *time.Location { return f.loc }

func edmonton(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Edmonton")
	require.NoError(t, err)
	return loc
}

func slotsRequest(t *testing.T, h *SlotsHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSlotsRequiresCalendarID(t *testing.T) {
	h := NewSlotsHandler(&fakeEngine{loc: edmonton(t)}, nil, logging.New("error"))

	rec := slotsRequest(t, h, "/")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "calendarId is required", body["error"])
}

func TestSlotsReturnsEnvelope(t *testing.T) {
	engine := &fakeEngine{
		loc: edmonton(t),
		result: &availability.Result{
			StartDate: "2025-06-02",
			Slots: map[string][]string{
				"2025-06-02": {"10:00 AM", "10:30 AM"},
			},
			Snapshot: &availability.Snapshot{},
		},
	}
	h := NewSlotsHandler(engine, nil, logging.New("error"))

	rec := slotsRequest(t, h, "/?calendarId=cal_9&date=2025-06-02")
	require.Equal(t, http.StatusOK, rec.Code)

	var body slotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cal_9", body.CalendarID)
	assert.Equal(t, "allDays", body.ActiveDay)
	assert.Equal(t, "2025-06-02", body.StartDate)
	assert.Equal(t, []string{"10:00 AM", "10:30 AM"}, body.Slots["2025-06-02"])
	assert.Nil(t, body.Debug)

	assert.Equal(t, "2025-06-02", engine.lastReq.Start.Format("2006-01-02"))
}

func TestSlotsDebugOnlyWithUserID(t *testing.T) {
	engine := &fakeEngine{
		loc: edmonton(t),
		result: &availability.Result{
			StartDate: "2025-06-02",
			Slots:     map[string][]string{},
			Snapshot: &availability.Snapshot{
				Staff: &availability.StaffHours{StaffID: "staff_7"},
			},
		},
	}
	h := NewSlotsHandler(engine, nil, logging.New("error"))

	rec := slotsRequest(t, h, "/?calendarId=cal_9&userId=staff_7&serviceDuration=60")
	require.Equal(t, http.StatusOK, rec.Code)

	var body slotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Debug)
	assert.Equal(t, "staff_7", body.Debug.StaffHours.StaffID)
	assert.Equal(t, 60, body.Debug.ServiceDurationMinutes)
	assert.Equal(t, "America/Edmonton", body.Debug.TargetTimeZone)

	assert.Equal(t, "staff_7", engine.lastReq.StaffID)
	assert.Equal(t, 60, engine.lastReq.ServiceDuration)
}

func TestSlotsComputeFailure(t *testing.T) {
	engine := &fakeEngine{loc: edmonton(t), err: errors.New("business hours query timed out")}
	h := NewSlotsHandler(engine, metrics.NewSlots(newRegistry()), logging.New("error"))

	rec := slotsRequest(t, h, "/?calendarId=cal_9")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to fetch working slots", body["error"])
	assert.Equal(t, "business hours query timed out", body["details"])
}

func TestSlotsIgnoresMalformedDateAndDuration(t *testing.T) {
	engine := &fakeEngine{
		loc:    edmonton(t),
		result: &availability.Result{StartDate: "2025-06-02", Slots: map[string][]string{}},
	}
	h := NewSlotsHandler(engine, nil, logging.New("error"))

	rec := slotsRequest(t, h, "/?calendarId=cal_9&date=junk&serviceDuration=-5")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, engine.lastReq.Start.IsZero())
	assert.Equal(t, 0, engine.lastReq.ServiceDuration)
}
