package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/petsafe/petsafe-api/internal/service"
	"go.uber.org/zap"
)

// multipartOverhead is the room left for form boundaries and headers on top of the photo itself
const multipartOverhead = 64 * 1024

type PhotoHandler struct {
	photoService *service.PhotoService
	maxUploadMB  int64
	logger       *zap.Logger
}

func NewPhotoHandler(photoService *service.PhotoService, maxUploadMB int64, logger *zap.Logger) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
		maxUploadMB:  maxUploadMB,
		logger:       logger,
	}
}

// @Summary Upload photo
// @Description Stores a jpg or png image and returns the key to reference it from registrations, profiles and reports
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image (jpg or png)"
// @Success 201 {object} domain.PhotoUploadResponse
// @Failure 400 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Failure 415 {object} domain.APIError
// @Router /photos [post]
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Limit request size
	limit := h.maxUploadMB*1024*1024 + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	photo, err := h.photoService.Upload(r.Context(), header.Filename, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "upload photo")
		return
	}

	respondJSON(w, http.StatusCreated, photo)
}

// @Summary Download photo
// @Tags Photos
// @Produce image/jpeg,image/png
// @Param key path string true "Photo key"
// @Success 200
// @Failure 404 {object} domain.APIError
// @Router /photos/{key} [get]
func (h *PhotoHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	body, contentType, err := h.photoService.Download(r.Context(), key)
	if err != nil {
		respondServiceError(w, h.logger, err, "download photo")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("photo download interrupted", zap.String("key", key), zap.Error(err))
	}
}
