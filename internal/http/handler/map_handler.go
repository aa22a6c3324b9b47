package handler

import (
	"io/fs"
	"net/http"

	"github.com/petsafe/petsafe-api/internal/service"
	"go.uber.org/zap"
)

// MapHandler serves the map page and the data it draws
type MapHandler struct {
	mapService *service.MapService
	assets     fs.FS
	logger     *zap.Logger
}

// NewMapHandler creates a new map handler. assets must contain map.html and map.js.
func NewMapHandler(mapService *service.MapService, assets fs.FS, logger *zap.Logger) *MapHandler {
	return &MapHandler{
		mapService: mapService,
		assets:     assets,
		logger:     logger,
	}
}

// Markers godoc
// @Summary Map markers
// @Description Default view plus every geocoded report, business, veterinarian and shelter. Resolved reports are left out.
// @Tags Map
// @Produce json
// @Success 200 {object} domain.MapMarkersResponse
// @Router /map/markers [get]
func (h *MapHandler) Markers(w http.ResponseWriter, r *http.Request) {
	markers, err := h.mapService.Markers(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "load map markers")
		return
	}

	respondJSON(w, http.StatusOK, markers)
}

// Search godoc
// @Summary Locate an address
// @Description Returns the view to recenter the map on an address
// @Tags Map
// @Produce json
// @Param address query string true "Address to search"
// @Success 200 {object} domain.MapView
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Address not found"
// @Failure 503 {object} domain.APIError "Geocoding service unavailable"
// @Router /map/search [get]
func (h *MapHandler) Search(w http.ResponseWriter, r *http.Request) {
	view, err := h.mapService.Search(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		respondServiceError(w, h.logger, err, "search address")
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// Page serves the map page
func (h *MapHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.serveAsset(w, "map.html", "text/html; charset=utf-8")
}

// Script serves the script that draws the markers on the map page
func (h *MapHandler) Script(w http.ResponseWriter, r *http.Request) {
	h.serveAsset(w, "map.js", "text/javascript; charset=utf-8")
}

func (h *MapHandler) serveAsset(w http.ResponseWriter, name, contentType string) {
	data, err := fs.ReadFile(h.assets, name)
	if err != nil {
		h.logger.Error("failed to read map asset", zap.String("asset", name), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Map page is unavailable")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
