package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/petsafe/petsafe-api/internal/config"
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

var testAssets = fstest.MapFS{
	"map.html": {Data: []byte("<!DOCTYPE html><div id=\"map\"></div>")},
	"map.js":   {Data: []byte("function procesarMapa(m) {}")},
}

func createMapHandler(db *gorm.DB, geocoder geocoding.Geocoder) *handler.MapHandler {
	svc := service.NewMapService(
		repository.NewReportRepository(db),
		repository.NewBusinessRepository(db),
		repository.NewShelterRepository(db),
		geocoder,
		config.MapConfig{DefaultLat: 39.4699, DefaultLon: -0.3763, DefaultZoom: 10, SearchZoom: 18},
		testPhotos,
		zap.NewNop(),
	)
	return handler.NewMapHandler(svc, testAssets, zap.NewNop())
}

func TestMapHandler_Markers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createMapHandler(db, stubGeocoder{})
	reporter, _ := testutil.CreateTestPerson(t, db, "Nuria")
	testutil.CreateTestReport(t, db, reporter, domain.SituationLost, "dog", testutil.Float(39.47), testutil.Float(-0.37))
	testutil.CreateTestShelter(t, db, "Protectora Sur", testutil.Float(39.44), testutil.Float(-0.39))

	rr := httptest.NewRecorder()
	h.Markers(rr, httptest.NewRequest(http.MethodGet, "/api/v1/map/markers", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	for _, key := range []string{"map", "reports", "locales", "veterinarios", "protectoras"} {
		assert.Contains(t, raw, key)
	}
	assert.JSONEq(t, "[]", string(raw["locales"]), "empty groups are arrays, not null")

	var resp domain.MapMarkersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "Nuria", resp.Reports[0].Nombre)
	require.Len(t, resp.Protectoras, 1)
}

func TestMapHandler_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createMapHandler(db, stubGeocoder{
		"plaza de la virgen, valencia": {Lat: 39.4763, Lon: -0.3753},
	})

	t.Run("known address", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Search(rr, httptest.NewRequest(http.MethodGet, "/api/v1/map/search?address=Plaza+de+la+Virgen,+Valencia", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var view domain.MapView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
		assert.Equal(t, 18, view.Zoom)
		assert.InDelta(t, 39.4763, view.Lat, 1e-9)
	})

	t.Run("unknown address", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Search(rr, httptest.NewRequest(http.MethodGet, "/api/v1/map/search?address=Nowhere", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("no address", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Search(rr, httptest.NewRequest(http.MethodGet, "/api/v1/map/search", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMapHandler_Assets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createMapHandler(db, stubGeocoder{})

	rr := httptest.NewRecorder()
	h.Page(rr, httptest.NewRequest(http.MethodGet, "/map", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `id="map"`)

	rr = httptest.NewRecorder()
	h.Script(rr, httptest.NewRequest(http.MethodGet, "/map.js", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "procesarMapa")

	missing := handler.NewMapHandler(nil, fstest.MapFS{}, zap.NewNop())
	rr = httptest.NewRecorder()
	missing.Page(rr, httptest.NewRequest(http.MethodGet, "/map", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
