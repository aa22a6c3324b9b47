package handler

import (
	"net/http"

	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/service"
	"go.uber.org/zap"
)

// AuthHandler handles login and account registration
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler instance
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Log in
// @Description Exchanges email and password for a bearer access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError "No account with that email and password"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "log in")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// RegisterPerson godoc
// @Summary Register a person
// @Description Creates a person account with its profile
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterPersonRequest true "Person account"
// @Success 201 {object} domain.ProfileDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Email already registered"
// @Router /auth/register/person [post]
func (h *AuthHandler) RegisterPerson(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterPersonRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.authService.RegisterPerson(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "register person")
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

// RegisterBusiness godoc
// @Summary Register a business or veterinarian
// @Description Creates a business account. The address is geocoded when possible; otherwise the business is picked up by the re-geocode job.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterBusinessRequest true "Business account"
// @Success 201 {object} domain.ProfileDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Email already registered"
// @Router /auth/register/business [post]
func (h *AuthHandler) RegisterBusiness(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterBusinessRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.authService.RegisterBusiness(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "register business")
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

// RegisterShelter godoc
// @Summary Register a shelter
// @Description Creates a shelter account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterShelterRequest true "Shelter account"
// @Success 201 {object} domain.ProfileDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Email already registered"
// @Router /auth/register/shelter [post]
func (h *AuthHandler) RegisterShelter(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterShelterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.authService.RegisterShelter(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "register shelter")
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}
