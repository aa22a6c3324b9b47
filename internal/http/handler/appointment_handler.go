package handler

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/service"
	"go.uber.org/zap"
)

// AppointmentHandler serves the caller's agenda
type AppointmentHandler struct {
	appointmentService *service.AppointmentService
	logger             *zap.Logger
}

// NewAppointmentHandler creates a new appointment handler instance
func NewAppointmentHandler(appointmentService *service.AppointmentService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService: appointmentService,
		logger:             logger,
	}
}

// List godoc
// @Summary List appointments
// @Description Returns the caller's appointments ordered by date and time, optionally for a single day
// @Tags Appointments
// @Produce json
// @Param date query string false "Day filter (YYYY-MM-DD)"
// @Success 200 {array} domain.AppointmentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /appointments [get]
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentService.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list appointments")
		return
	}

	respondJSON(w, http.StatusOK, appointments)
}

// HighlightedDates godoc
// @Summary Dates with appointments
// @Description Distinct dates that have at least one appointment, used to highlight the calendar
// @Tags Appointments
// @Produce json
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {object} domain.HighlightedDatesResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /appointments/highlighted-dates [get]
func (h *AppointmentHandler) HighlightedDates(w http.ResponseWriter, r *http.Request) {
	resp, err := h.appointmentService.HighlightedDates(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list highlighted dates")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Create godoc
// @Summary Create appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param request body domain.AppointmentRequest true "Appointment"
// @Success 201 {object} domain.AppointmentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /appointments [post]
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.AppointmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	appointment, err := h.appointmentService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create appointment")
		return
	}

	w.Header().Set("Location", "/api/v1/appointments/"+appointment.ID.String())
	respondJSON(w, http.StatusCreated, appointment)
}

// GetByID godoc
// @Summary Get appointment
// @Description Appointment detail with dd/MM/yyyy and HH:mm display strings
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID" format(uuid)
// @Success 200 {object} domain.AppointmentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid appointment ID: must be a valid UUID")
		return
	}

	appointment, err := h.appointmentService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get appointment")
		return
	}

	respondJSON(w, http.StatusOK, appointment)
}

// Update godoc
// @Summary Update appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID" format(uuid)
// @Param request body domain.AppointmentRequest true "Appointment"
// @Success 200 {object} domain.AppointmentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid appointment ID: must be a valid UUID")
		return
	}

	var req domain.AppointmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	appointment, err := h.appointmentService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update appointment")
		return
	}

	respondJSON(w, http.StatusOK, appointment)
}

// Delete godoc
// @Summary Delete appointment
// @Tags Appointments
// @Param id path string true "Appointment ID" format(uuid)
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid appointment ID: must be a valid UUID")
		return
	}

	if err := h.appointmentService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete appointment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportICS godoc
// @Summary Export agenda
// @Description Downloads every appointment of the caller as an iCalendar file
// @Tags Appointments
// @Produce text/calendar
// @Success 200 {string} string "iCalendar document"
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /appointments/export.ics [get]
func (h *AppointmentHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.appointmentService.ExportICS(r.Context(), &buf); err != nil {
		respondServiceError(w, h.logger, err, "export appointments")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agenda.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
