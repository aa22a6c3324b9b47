package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/petsafe/petsafe-api/internal/auth"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/petsafe/petsafe-api/internal/mapper"
	"github.com/petsafe/petsafe-api/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testPhotos = mapper.PhotoURLs{BaseURL: "https://petsafe.test"}

var testStore = testutil.NewMemoryStorage()

// stubGeocoder resolves a fixed set of addresses
type stubGeocoder map[string]geocoding.Location

func (s stubGeocoder) Geocode(_ context.Context, address string) (geocoding.Location, error) {
	loc, ok := s[strings.ToLower(address)]
	if !ok {
		return geocoding.Location{}, geocoding.ErrNotFound
	}
	return loc, nil
}

func asAccount(req *http.Request, user *domain.User) *http.Request {
	return req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Kind:   user.Kind,
	}))
}

func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{
		UserID:  auth.SystemUserID,
		Name:    "System",
		IsAdmin: true,
	}))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	return apiErr
}
