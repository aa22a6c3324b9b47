package handler

import (
	"net/http"

	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/service"
	"go.uber.org/zap"
)

// UserHandler serves the caller's own profile
type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Me godoc
// @Summary Get current profile
// @Description Returns the authenticated account with its person, business or shelter profile
// @Tags Users
// @Produce json
// @Success 200 {object} domain.ProfileDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.GetProfile(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary Update current profile
// @Description Updates account and profile fields. Empty optional fields keep the stored value; a changed address is geocoded again.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.UpdateProfileRequest true "Profile"
// @Success 200 {object} domain.ProfileDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Email already registered"
// @Security BearerAuth
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
