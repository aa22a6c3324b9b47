package handler_test

import (
	"encoding/json"
	"fmt"
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
)

func TestCatalogHandler_Situations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := handler.NewCatalogHandler("situation",
		service.NewSituationService(repository.NewSituationRepository(db), zap.NewNop()),
		zap.NewNop())

	t.Run("list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/api/v1/situations", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var entries []domain.CatalogDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
		codes := make([]string, len(entries))
		for i, e := range entries {
			codes[i] = e.Code
		}
		assert.ElementsMatch(t, []string{"lost", "found", "adoption", "resolved"}, codes)
	})

	t.Run("reserved entry cannot be deleted", func(t *testing.T) {
		id := fmt.Sprint(testutil.SituationID(t, db, domain.SituationLost))
		rr := httptest.NewRecorder()
		h.Delete(rr, withURLParam(asAdmin(httptest.NewRequest(http.MethodDelete, "/api/v1/situations/"+id, nil)), "id", id))
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GetByID(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/situations/-1", nil), "id", "-1"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCatalogHandler_AnimalTypesCRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := handler.NewCatalogHandler("animal type",
		service.NewAnimalTypeService(repository.NewAnimalTypeRepository(db), zap.NewNop()),
		zap.NewNop())

	rr := httptest.NewRecorder()
	h.Create(rr, asAdmin(jsonRequest(t, http.MethodPost, "/api/v1/animal-types", domain.CatalogRequest{Code: "turtle", Name: "Tortuga"})))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created domain.CatalogDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	id := fmt.Sprint(created.ID)

	t.Run("duplicate code", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Create(rr, asAdmin(jsonRequest(t, http.MethodPost, "/api/v1/animal-types", domain.CatalogRequest{Code: "turtle", Name: "Otra"})))
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Create(rr, asAdmin(jsonRequest(t, http.MethodPost, "/api/v1/animal-types", domain.CatalogRequest{Code: "snake"})))
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeAPIError(t, rr).Errors, "name")
	})

	t.Run("rename", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := asAdmin(jsonRequest(t, http.MethodPut, "/api/v1/animal-types/"+id, domain.CatalogRequest{Code: "turtle", Name: "Tortugas"}))
		h.Update(rr, withURLParam(req, "id", id))

		require.Equal(t, http.StatusOK, rr.Code)
		var updated domain.CatalogDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		assert.Equal(t, "Tortugas", updated.Name)
	})

	t.Run("delete", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Delete(rr, withURLParam(asAdmin(httptest.NewRequest(http.MethodDelete, "/api/v1/animal-types/"+id, nil)), "id", id))
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = httptest.NewRecorder()
		h.GetByID(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/animal-types/"+id, nil), "id", id))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
