package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/service"
	"go.uber.org/zap"
)

// ReportHandler handles HTTP requests for animal reports
type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new report handler instance
func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// List godoc
// @Summary List reports
// @Description Paginated list of lost, found and in-adoption animals, newest first
// @Tags Reports
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param situation query string false "Situation code" Enums(lost, found, adoption, resolved)
// @Param animalType query string false "Animal type code"
// @Param mine query bool false "Only the caller's reports"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ReportDTO}
// @Failure 401 {object} domain.APIError "mine=true without a user account"
// @Router /reports [get]
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	mine, _ := strconv.ParseBool(r.URL.Query().Get("mine"))

	result, err := h.reportService.List(r.Context(), service.ReportListParams{
		SituationCode:  r.URL.Query().Get("situation"),
		AnimalTypeCode: r.URL.Query().Get("animalType"),
		Mine:           mine,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "list reports")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID" format(uuid)
// @Success 200 {object} domain.ReportDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /reports/{id} [get]
func (h *ReportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid report ID: must be a valid UUID")
		return
	}

	report, err := h.reportService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Create godoc
// @Summary Report an animal
// @Description Registers an animal with its situation. The address is composed from street, number and city and must resolve to a location.
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body domain.CreateReportRequest true "Report"
// @Success 201 {object} domain.ReportDTO
// @Failure 400 {object} domain.APIError "Validation failed or address not found"
// @Failure 401 {object} domain.APIError
// @Failure 503 {object} domain.APIError "Geocoding service unavailable"
// @Security BearerAuth
// @Router /reports [post]
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateReportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	report, err := h.reportService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create report")
		return
	}

	w.Header().Set("Location", "/api/v1/reports/"+report.ID.String())
	respondJSON(w, http.StatusCreated, report)
}

// Update godoc
// @Summary Update report
// @Description Updates situation, description, contact phone and optionally the location. Only the reporter may update.
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID" format(uuid)
// @Param request body domain.UpdateReportRequest true "Report"
// @Success 200 {object} domain.ReportDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 503 {object} domain.APIError "Geocoding service unavailable"
// @Security BearerAuth
// @Router /reports/{id} [put]
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid report ID: must be a valid UUID")
		return
	}

	var req domain.UpdateReportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	report, err := h.reportService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Delete godoc
// @Summary Delete report
// @Description Deletes a report and its animal. Allowed to the reporter and to the admin API key.
// @Tags Reports
// @Param id path string true "Report ID" format(uuid)
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid report ID: must be a valid UUID")
		return
	}

	if err := h.reportService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete report")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
