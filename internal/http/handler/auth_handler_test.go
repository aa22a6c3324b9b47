package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/petsafe/petsafe-api/internal/auth"
	"github.com/petsafe/petsafe-api/internal/config"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/petsafe/petsafe-api/internal/http/handler"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/service"
	"github.com/petsafe/petsafe-api/internal/storage"
	"github.com/petsafe/petsafe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createAuthHandler(db *gorm.DB, geocoder geocoding.Geocoder) *handler.AuthHandler {
	tokens := auth.NewTokenManager(&config.AuthConfig{JWTSecret: "handler-secret", TokenTTL: 60, Issuer: "petsafe-test"})
	svc := service.NewAuthService(
		db,
		repository.NewUserRepository(db),
		repository.NewPersonRepository(db),
		repository.NewBusinessRepository(db),
		repository.NewShelterRepository(db),
		repository.NewBusinessTypeRepository(db),
		tokens,
		geocoder,
		testStore,
		testPhotos,
		zap.NewNop(),
	)
	return handler.NewAuthHandler(svc, zap.NewNop())
}

func TestAuthHandler_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createAuthHandler(db, stubGeocoder{})
	user, _ := testutil.CreateTestPerson(t, db, "Marta")

	t.Run("valid credentials", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Login(rr, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{
			Email:    user.Email,
			Password: testutil.TestPassword,
		}))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp domain.LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, user.ID, resp.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Login(rr, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{
			Email:    user.Email,
			Password: "not-the-password",
		}))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "no account with that email and password", decodeAPIError(t, rr).Detail)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		rr := httptest.NewRecorder()
		h.Login(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// withFields copies body with the given fields replaced
func withFields(body, fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(body))
	for k, v := range body {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func TestAuthHandler_RegisterPerson(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createAuthHandler(db, stubGeocoder{})

	body := map[string]interface{}{
		"name":            "pablo",
		"firstName":       "Pablo",
		"lastNames":       "Ruiz Ferrer",
		"birthDate":       "1988-02-10",
		"email":           "pablo@example.com",
		"phone":           "600999888",
		"password":        "secret123",
		"confirmPassword": "secret123",
		"acceptTerms":     true,
	}

	rr := httptest.NewRecorder()
	h.RegisterPerson(rr, jsonRequest(t, http.MethodPost, "/api/v1/auth/register/person", body))
	require.Equal(t, http.StatusCreated, rr.Code)

	var profile domain.ProfileDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, domain.AccountKindPerson, profile.User.Kind)
	require.NotNil(t, profile.Person)
	assert.Equal(t, "Pablo", profile.Person.FirstName)

	t.Run("email already registered", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.RegisterPerson(rr, jsonRequest(t, http.MethodPost, "/api/v1/auth/register/person", body))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeAPIError(t, rr).Errors, "email")
	})

	t.Run("password longer than 72 bytes", func(t *testing.T) {
		long := strings.Repeat("x", 80)
		rr := httptest.NewRecorder()
		h.RegisterPerson(rr, jsonRequest(t, http.MethodPost, "/api/v1/auth/register/person", withFields(body, map[string]interface{}{
			"email":           "larga@example.com",
			"password":        long,
			"confirmPassword": long,
		})))
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeAPIError(t, rr).Errors, "password")
	})

	t.Run("photo that was never uploaded", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.RegisterPerson(rr, jsonRequest(t, http.MethodPost, "/api/v1/auth/register/person", withFields(body, map[string]interface{}{
			"email":    "foto@example.com",
			"photoKey": storage.NewKey(".jpg"),
		})))
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeAPIError(t, rr).Errors, "photoKey")
	})

	t.Run("all missing fields reported together", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.RegisterPerson(rr, jsonRequest(t, http.MethodPost, "/api/v1/auth/register/person", map[string]interface{}{
			"email":           "otra@example.com",
			"password":        "secret123",
			"confirmPassword": "different",
		}))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeAPIError(t, rr)
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		for _, field := range []string{"name", "firstName", "lastNames", "birthDate", "phone", "confirmPassword", "acceptTerms"} {
			assert.Contains(t, apiErr.Errors, field)
		}
	})
}

func TestAuthHandler_RegisterBusiness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createAuthHandler(db, stubGeocoder{
		"calle de la paz, 3, valencia": {Lat: 39.473, Lon: -0.372},
	})

	rr := httptest.NewRecorder()
	h.RegisterBusiness(rr, jsonRequest(t, http.MethodPost, "/api/v1/auth/register/business", map[string]interface{}{
		"name":            "Clínica Paz",
		"description":     "Veterinaria 24h",
		"address":         "Calle de la Paz, 3, Valencia",
		"businessTypeId":  testutil.BusinessTypeID(t, db, domain.BusinessTypeVeterinary),
		"email":           "paz@example.com",
		"phone":           "963000111",
		"password":        "secret123",
		"confirmPassword": "secret123",
		"acceptTerms":     true,
	}))

	require.Equal(t, http.StatusCreated, rr.Code)
	var profile domain.ProfileDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	require.NotNil(t, profile.Business)
	assert.True(t, profile.Business.IsVeterinary)
	require.NotNil(t, profile.Business.Latitude)
	assert.InDelta(t, 39.473, *profile.Business.Latitude, 1e-9)
}

func TestAuthHandler_RegisterShelterWithoutGeocode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createAuthHandler(db, stubGeocoder{})

	rr := httptest.NewRecorder()
	h.RegisterShelter(rr, jsonRequest(t, http.MethodPost, "/api/v1/auth/register/shelter", map[string]interface{}{
		"name":            "Refugio Albufera",
		"description":     "Perros y gatos",
		"address":         "Camino sin nombre, Valencia",
		"email":           "albufera@example.com",
		"phone":           "963222333",
		"password":        "secret123",
		"confirmPassword": "secret123",
		"acceptTerms":     true,
	}))

	require.Equal(t, http.StatusCreated, rr.Code, "unknown addresses do not block registration")
	var profile domain.ProfileDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	require.NotNil(t, profile.Shelter)
	assert.Nil(t, profile.Shelter.Latitude)
}
