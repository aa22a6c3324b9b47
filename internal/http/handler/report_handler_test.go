package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/petsafe/petsafe-api/internal/http/handler"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/service"
	"github.com/petsafe/petsafe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createReportHandler(db *gorm.DB, geocoder geocoding.Geocoder) *handler.ReportHandler {
	svc := service.NewReportService(
		db,
		repository.NewReportRepository(db),
		repository.NewAnimalRepository(db),
		repository.NewSituationRepository(db),
		repository.NewAnimalTypeRepository(db),
		geocoder,
		testStore,
		testPhotos,
		zap.NewNop(),
	)
	return handler.NewReportHandler(svc, zap.NewNop())
}

func reportRequest(t *testing.T, db *gorm.DB, street string) domain.CreateReportRequest {
	return domain.CreateReportRequest{
		SituationID:  testutil.SituationID(t, db, domain.SituationLost),
		AnimalTypeID: testutil.AnimalTypeID(t, db, "dog"),
		Street:       street,
		Number:       "12",
		City:         "Valencia",
		Description:  "Perro pequeño con collar azul",
		PhotoKey:     testStore.PutPhoto(".jpg"),
		Date:         "2024-11-02",
		ContactPhone: "622333444",
	}
}

func TestReportHandler_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createReportHandler(db, stubGeocoder{
		"calle de ruzafa, 12, valencia": {Lat: 39.464, Lon: -0.374},
	})
	user, _ := testutil.CreateTestPerson(t, db, "Sara")

	t.Run("geocoded report", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPost, "/api/v1/reports", reportRequest(t, db, "Calle de Ruzafa"))
		h.Create(rr, asAccount(req, user))

		require.Equal(t, http.StatusCreated, rr.Code)
		var report domain.ReportDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.Equal(t, "Calle de Ruzafa, 12, Valencia", report.Location)
		require.NotNil(t, report.Latitude)
		assert.InDelta(t, 39.464, *report.Latitude, 1e-9)
		assert.Equal(t, user.ID, report.ReporterID)
	})

	t.Run("unknown address is a field error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPost, "/api/v1/reports", reportRequest(t, db, "Calle Inventada"))
		h.Create(rr, asAccount(req, user))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeAPIError(t, rr).Errors, "address")
	})

	t.Run("missing fields", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPost, "/api/v1/reports", map[string]string{"street": "Calle de Ruzafa"})
		h.Create(rr, asAccount(req, user))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		errs := decodeAPIError(t, rr).Errors
		for _, field := range []string{"situationId", "animalTypeId", "number", "city", "description", "photoKey", "date", "contactPhone"} {
			assert.Contains(t, errs, field)
		}
	})
}

func TestReportHandler_ListAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createReportHandler(db, stubGeocoder{})
	sara, _ := testutil.CreateTestPerson(t, db, "Sara")
	juan, _ := testutil.CreateTestPerson(t, db, "Juan")

	lost := testutil.CreateTestReport(t, db, sara, domain.SituationLost, "dog", nil, nil)
	testutil.CreateTestReport(t, db, juan, domain.SituationAdoption, "cat", nil, nil)
	testutil.CreateTestReport(t, db, juan, domain.SituationFound, "cat", nil, nil)

	t.Run("filter by situation", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/api/v1/reports?situation=adoption", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var result domain.PaginatedResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, int64(1), result.Total)
	})

	t.Run("mine", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.List(rr, asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/reports?mine=true", nil), juan))

		require.Equal(t, http.StatusOK, rr.Code)
		var result domain.PaginatedResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("mine needs an account", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/api/v1/reports?mine=true", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("detail", func(t *testing.T) {
		rr := httptest.NewRecorder()
		id := lost.ID.String()
		h.GetByID(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+id, nil), "id", id))

		require.Equal(t, http.StatusOK, rr.Code)
		var report domain.ReportDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.Equal(t, "Sara", report.ReporterName)
		assert.Equal(t, domain.SituationLost, report.Animal.Situation.Code)
	})
}

func TestReportHandler_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createReportHandler(db, stubGeocoder{})
	owner, _ := testutil.CreateTestPerson(t, db, "Sara")
	stranger, _ := testutil.CreateTestPerson(t, db, "Juan")
	report := testutil.CreateTestReport(t, db, owner, domain.SituationLost, "dog", nil, nil)
	id := report.ID.String()

	update := domain.UpdateReportRequest{
		SituationID:  testutil.SituationID(t, db, domain.SituationResolved),
		Description:  "Ya está en casa",
		ContactPhone: "622333444",
	}

	t.Run("stranger cannot update", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPut, "/api/v1/reports/"+id, update)
		h.Update(rr, withURLParam(asAccount(req, stranger), "id", id))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("partial location is rejected", func(t *testing.T) {
		partial := update
		partial.Street = "Calle Nueva"
		rr := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPut, "/api/v1/reports/"+id, partial)
		h.Update(rr, withURLParam(asAccount(req, owner), "id", id))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("owner marks it resolved", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPut, "/api/v1/reports/"+id, update)
		h.Update(rr, withURLParam(asAccount(req, owner), "id", id))

		require.Equal(t, http.StatusOK, rr.Code)
		var updated domain.ReportDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		assert.Equal(t, domain.SituationResolved, updated.Animal.Situation.Code)
		assert.Equal(t, report.Location, updated.Location)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Delete(rr, withURLParam(asAccount(httptest.NewRequest(http.MethodDelete, "/api/v1/reports/"+id, nil), stranger), "id", id))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin deletes", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Delete(rr, withURLParam(asAdmin(httptest.NewRequest(http.MethodDelete, "/api/v1/reports/"+id, nil)), "id", id))
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = httptest.NewRecorder()
		h.GetByID(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+id, nil), "id", id))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
