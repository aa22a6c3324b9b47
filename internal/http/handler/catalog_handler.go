package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/petsafe/petsafe-api/internal/domain"
	"go.uber.org/zap"
)

// CatalogService is the lookup table behaviour shared by situations,
// animal types and business types
type CatalogService interface {
	List(ctx context.Context) ([]domain.CatalogDTO, error)
	GetByID(ctx context.Context, id uint) (*domain.CatalogDTO, error)
	Create(ctx context.Context, req *domain.CatalogRequest) (*domain.CatalogDTO, error)
	Update(ctx context.Context, id uint, req *domain.CatalogRequest) (*domain.CatalogDTO, error)
	Delete(ctx context.Context, id uint) error
}

// CatalogHandler serves one catalog. name is used in messages and logs.
type CatalogHandler struct {
	name           string
	catalogService CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a handler for the catalog called name
func NewCatalogHandler(name string, catalogService CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		name:           name,
		catalogService: catalogService,
		logger:         logger.With(zap.String("catalog", name)),
	}
}

func (h *CatalogHandler) parseID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid "+h.name+" ID: must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// List godoc
// @Summary List catalog entries
// @Description Used to fill the situation, animal type and business type selectors
// @Tags Catalogs
// @Produce json
// @Success 200 {array} domain.CatalogDTO
// @Router /situations [get]
// @Router /animal-types [get]
// @Router /business-types [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalogService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list "+h.name)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetByID godoc
// @Summary Get catalog entry
// @Tags Catalogs
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} domain.CatalogDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /situations/{id} [get]
// @Router /animal-types/{id} [get]
// @Router /business-types/{id} [get]
func (h *CatalogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	entry, err := h.catalogService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get "+h.name)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// Create godoc
// @Summary Create catalog entry
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param request body domain.CatalogRequest true "Entry"
// @Success 201 {object} domain.CatalogDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Code already exists"
// @Security ApiKeyAuth
// @Router /situations [post]
// @Router /animal-types [post]
// @Router /business-types [post]
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CatalogRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.catalogService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create "+h.name)
		return
	}

	h.logger.Info("catalog entry created", zap.Uint("id", entry.ID), zap.String("code", entry.Code))
	respondJSON(w, http.StatusCreated, entry)
}

// Update godoc
// @Summary Update catalog entry
// @Description Reserved entries can be renamed but keep their code
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param request body domain.CatalogRequest true "Entry"
// @Success 200 {object} domain.CatalogDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /situations/{id} [put]
// @Router /animal-types/{id} [put]
// @Router /business-types/{id} [put]
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.CatalogRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.catalogService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update "+h.name)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// Delete godoc
// @Summary Delete catalog entry
// @Description Reserved entries and entries still referenced cannot be deleted
// @Tags Catalogs
// @Param id path int true "Entry ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /situations/{id} [delete]
// @Router /animal-types/{id} [delete]
// @Router /business-types/{id} [delete]
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete "+h.name)
		return
	}

	h.logger.Info("catalog entry deleted", zap.Uint("id", id))
	w.WriteHeader(http.StatusNoContent)
}
