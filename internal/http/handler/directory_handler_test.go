package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
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

func createDirectoryHandler(db *gorm.DB) *handler.DirectoryHandler {
	svc := service.NewDirectoryService(
		repository.NewBusinessRepository(db),
		repository.NewShelterRepository(db),
		testPhotos,
		zap.NewNop(),
	)
	return handler.NewDirectoryHandler(svc, zap.NewNop())
}

func decodeBusinesses(t *testing.T, rr *httptest.ResponseRecorder) (int64, []domain.BusinessDTO) {
	t.Helper()
	var raw struct {
		Data  []domain.BusinessDTO `json:"data"`
		Total int64                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	return raw.Total, raw.Data
}

func TestDirectoryHandler_Lists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createDirectoryHandler(db)

	testutil.CreateTestBusiness(t, db, "Clínica Turia", domain.BusinessTypeVeterinary, nil, nil)
	testutil.CreateTestBusiness(t, db, "Bar Patitas", "pet_friendly", nil, nil)
	testutil.CreateTestBusiness(t, db, "Zoo Tienda", "pet_shop", nil, nil)
	testutil.CreateTestShelter(t, db, "Protectora Huerta", nil, nil)

	t.Run("veterinarians", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListVeterinarians(rr, httptest.NewRequest(http.MethodGet, "/api/v1/veterinarians", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		total, vets := decodeBusinesses(t, rr)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Clínica Turia", vets[0].Name)
	})

	t.Run("businesses sorted by name descending", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListBusinesses(rr, httptest.NewRequest(http.MethodGet, "/api/v1/businesses?sortBy=name&sortOrder=desc", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		total, businesses := decodeBusinesses(t, rr)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, "Zoo Tienda", businesses[0].Name)
	})

	t.Run("businesses by type", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListBusinesses(rr, httptest.NewRequest(http.MethodGet, "/api/v1/businesses?type=pet_friendly", nil))

		total, businesses := decodeBusinesses(t, rr)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Bar Patitas", businesses[0].Name)
	})

	t.Run("shelters", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListShelters(rr, httptest.NewRequest(http.MethodGet, "/api/v1/shelters?pageSize=500", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var result domain.PaginatedResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, int64(1), result.Total)
		assert.Equal(t, 200, result.PageSize)
	})
}

func TestDirectoryHandler_Detail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createDirectoryHandler(db)
	vet := testutil.CreateTestBusiness(t, db, "Clínica Turia", domain.BusinessTypeVeterinary, nil, nil)
	shelter := testutil.CreateTestShelter(t, db, "Protectora Huerta", nil, nil)

	t.Run("business", func(t *testing.T) {
		rr := httptest.NewRecorder()
		id := vet.ID.String()
		h.GetBusiness(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/businesses/"+id, nil), "id", id))

		require.Equal(t, http.StatusOK, rr.Code)
		var dto domain.BusinessDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
		assert.Equal(t, vet.User.Email, dto.Email)
		assert.True(t, dto.IsVeterinary)
	})

	t.Run("shelter", func(t *testing.T) {
		rr := httptest.NewRecorder()
		id := shelter.ID.String()
		h.GetShelter(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/shelters/"+id, nil), "id", id))

		require.Equal(t, http.StatusOK, rr.Code)
		var dto domain.ShelterDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
		assert.Equal(t, shelter.User.Phone, dto.Phone)
	})

	t.Run("unknown ids", func(t *testing.T) {
		id := uuid.NewString()
		rr := httptest.NewRecorder()
		h.GetBusiness(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/businesses/"+id, nil), "id", id))
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = httptest.NewRecorder()
		h.GetShelter(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/shelters/x", nil), "id", "x"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
