package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/http/handler"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/service"
	"github.com/petsafe/petsafe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createUserHandler(db *gorm.DB) *handler.UserHandler {
	svc := service.NewUserService(
		db,
		repository.NewUserRepository(db),
		repository.NewPersonRepository(db),
		repository.NewBusinessRepository(db),
		repository.NewShelterRepository(db),
		repository.NewBusinessTypeRepository(db),
		stubGeocoder{},
		testStore,
		testPhotos,
		zap.NewNop(),
	)
	return handler.NewUserHandler(svc, zap.NewNop())
}

func TestUserHandler_Me(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createUserHandler(db)
	user, _ := testutil.CreateTestPerson(t, db, "Inés")

	t.Run("returns the caller's profile", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Me(rr, asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), user))

		require.Equal(t, http.StatusOK, rr.Code)
		var profile domain.ProfileDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
		assert.Equal(t, user.Email, profile.User.Email)
		require.NotNil(t, profile.Person)
		assert.Equal(t, "1990-03-14", profile.Person.BirthDate)
	})

	t.Run("api key has no profile", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Me(rr, asAdmin(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUserHandler_UpdateMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createUserHandler(db)
	user, _ := testutil.CreateTestPerson(t, db, "Inés")
	other, _ := testutil.CreateTestPerson(t, db, "Otra")

	t.Run("updates name and keeps empty fields", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPut, "/api/v1/users/me", domain.UpdateProfileRequest{
			Name:  "Inés M.",
			Email: user.Email,
			Phone: "699000111",
		})
		h.UpdateMe(rr, asAccount(req, user))

		require.Equal(t, http.StatusOK, rr.Code)
		var profile domain.ProfileDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
		assert.Equal(t, "Inés M.", profile.User.Name)
		assert.Equal(t, "699000111", profile.User.Phone)
		assert.Equal(t, "Inés", profile.Person.FirstName)
	})

	t.Run("email of another account", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPut, "/api/v1/users/me", domain.UpdateProfileRequest{
			Name:  "Inés",
			Email: other.Email,
			Phone: "699000111",
		})
		h.UpdateMe(rr, asAccount(req, user))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeAPIError(t, rr).Errors, "email")
	})

	t.Run("short password", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPut, "/api/v1/users/me", domain.UpdateProfileRequest{
			Name:     "Inés",
			Email:    user.Email,
			Phone:    "699000111",
			Password: "123",
		})
		h.UpdateMe(rr, asAccount(req, user))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeAPIError(t, rr).Errors, "password")
	})
}
