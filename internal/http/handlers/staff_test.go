package handlers

import (
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

type fakeDirectory struct {
	users           []highlevel.User
	err             error
	includeInactive bool
}

func (f *fakeDirectory) ListUsers(_ context.Context, includeDeleted bool) ([]highlevel.User, error) {
	f.includeInactive = includeDeleted
	return f.users, f.err
}

func TestStaffList(t *testing.T) {
	dir := &fakeDirectory{users: []highlevel.User{{ID: "u1", Name: "Dana"}}}
	h := NewStaffHandler(dir, logging.New("error"))

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]highlevel.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body["users"], 1)
	assert.Equal(t, "Dana", body["users"][0].Name)
	assert.False(t, dir.includeInactive)
}

func TestStaffListIncludeInactive(t *testing.T) {
	dir := &fakeDirectory{}
	h := NewStaffHandler(dir, logging.New("error"))

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?includeInactive=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, dir.includeInactive)
}

func TestStaffListUpstreamFailure(t *testing.T) {
	dir := &fakeDirectory{err: &highlevel.StatusError{StatusCode: http.StatusUnauthorized, Body: "bad token"}}
	h := NewStaffHandler(dir, logging.New("error"))

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
