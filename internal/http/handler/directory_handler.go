package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/service"
	"go.uber.org/zap"
)

// DirectoryHandler serves the veterinarian, business and shelter listings
type DirectoryHandler struct {
	directoryService *service.DirectoryService
	logger           *zap.Logger
}

// NewDirectoryHandler creates a new directory handler instance
func NewDirectoryHandler(directoryService *service.DirectoryService, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		directoryService: directoryService,
		logger:           logger,
	}
}

func directoryParams(r *http.Request) service.DirectoryListParams {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()
	return service.DirectoryListParams{
		TypeCode:  q.Get("type"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Page:      page,
		PageSize:  pageSize,
	}
}

// ListVeterinarians godoc
// @Summary List veterinarians
// @Tags Directory
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or address"
// @Param sortBy query string false "Sort field" Enums(name, rating, createdAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(asc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.BusinessDTO}
// @Router /veterinarians [get]
func (h *DirectoryHandler) ListVeterinarians(w http.ResponseWriter, r *http.Request) {
	result, err := h.directoryService.ListVeterinarians(r.Context(), directoryParams(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "list veterinarians")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListBusinesses godoc
// @Summary List pet-friendly businesses
// @Description Businesses that are not veterinarians
// @Tags Directory
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param type query string false "Business type code"
// @Param search query string false "Search by name or address"
// @Param sortBy query string false "Sort field" Enums(name, rating, createdAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(asc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.BusinessDTO}
// @Router /businesses [get]
func (h *DirectoryHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	result, err := h.directoryService.ListBusinesses(r.Context(), directoryParams(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "list businesses")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetBusiness godoc
// @Summary Get business
// @Description Business or veterinarian detail with the owner's email and phone
// @Tags Directory
// @Produce json
// @Param id path string true "Business ID" format(uuid)
// @Success 200 {object} domain.BusinessDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /businesses/{id} [get]
func (h *DirectoryHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid business ID: must be a valid UUID")
		return
	}

	business, err := h.directoryService.GetBusiness(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get business")
		return
	}

	respondJSON(w, http.StatusOK, business)
}

// ListShelters godoc
// @Summary List shelters
// @Tags Directory
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or address"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ShelterDTO}
// @Router /shelters [get]
func (h *DirectoryHandler) ListShelters(w http.ResponseWriter, r *http.Request) {
	result, err := h.directoryService.ListShelters(r.Context(), directoryParams(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "list shelters")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetShelter godoc
// @Summary Get shelter
// @Tags Directory
// @Produce json
// @Param id path string true "Shelter ID" format(uuid)
// @Success 200 {object} domain.ShelterDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /shelters/{id} [get]
func (h *DirectoryHandler) GetShelter(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid shelter ID: must be a valid UUID")
		return
	}

	shelter, err := h.directoryService.GetShelter(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get shelter")
		return
	}

	respondJSON(w, http.StatusOK, shelter)
}
