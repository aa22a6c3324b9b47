package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/auth"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/petsafe/petsafe-api/internal/mapper"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned when no account matches the email and password
	ErrInvalidCredentials = errors.New("no account with that email and password")

	// ErrEmailTaken is returned when the email belongs to another account
	ErrEmailTaken = errors.New("email is already registered")
)

// AuthService handles login and account registration
type AuthService struct {
	db               *gorm.DB
	userRepo         *repository.UserRepository
	personRepo       *repository.PersonRepository
	businessRepo     *repository.BusinessRepository
	shelterRepo      *repository.ShelterRepository
	businessTypeRepo *repository.BusinessTypeRepository
	tokens           *auth.TokenManager
	geocoder         geocoding.Geocoder
	storage          storage.Storage
	photos           mapper.PhotoURLs
	logger           *zap.Logger
	now              func() time.Time
}

// NewAuthService creates a new auth service instance
func NewAuthService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	personRepo *repository.PersonRepository,
	businessRepo *repository.BusinessRepository,
	shelterRepo *repository.ShelterRepository,
	businessTypeRepo *repository.BusinessTypeRepository,
	tokens *auth.TokenManager,
	geocoder geocoding.Geocoder,
	store storage.Storage,
	photos mapper.PhotoURLs,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		db:               db,
		userRepo:         userRepo,
		personRepo:       personRepo,
		businessRepo:     businessRepo,
		shelterRepo:      shelterRepo,
		businessTypeRepo: businessTypeRepo,
		tokens:           tokens,
		geocoder:         geocoder,
		storage:          store,
		photos:           photos,
		logger:           logger,
		now:              time.Now,
	}
}

// Login checks the credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login rejected", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        mapper.ToUserDTO(user, s.photos),
	}, nil
}

// checkAccountFields validates the fields shared by every registration form
func (s *AuthService) checkAccountFields(ctx context.Context, fields *domain.AccountFields, ve *ValidationError) error {
	if !fields.AcceptTerms {
		ve.Add("acceptTerms", msgTermsRequired)
	}
	checkPasswordLength(fields.Password, ve)
	if fields.Password != fields.ConfirmPassword {
		ve.Add("confirmPassword", msgPasswordsDiffer)
	}
	if err := checkPhotoKey(ctx, s.storage, fields.PhotoKey, "photoKey", ve); err != nil {
		return err
	}

	taken, err := s.userRepo.ExistsEmail(ctx, normalizeEmail(fields.Email), uuid.Nil)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		ve.Add("email", msgEmailTaken)
	}
	return nil
}

func (s *AuthService) newUser(fields *domain.AccountFields, name string, kind domain.AccountKind) (*domain.User, error) {
	hash, err := auth.HashPassword(fields.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(fields.Email),
		PasswordHash: hash,
		Phone:        strings.TrimSpace(fields.Phone),
		PhotoKey:     fields.PhotoKey,
		Kind:         kind,
	}, nil
}

// createUser inserts the account inside tx, mapping a unique email violation to ErrEmailTaken
func (s *AuthService) createUser(ctx context.Context, tx *gorm.DB, user *domain.User) error {
	if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// RegisterPerson creates a person account and its profile
func (s *AuthService) RegisterPerson(ctx context.Context, req *domain.RegisterPersonRequest) (*domain.ProfileDTO, error) {
	ve := &ValidationError{}
	if err := s.checkAccountFields(ctx, &req.AccountFields, ve); err != nil {
		return nil, err
	}
	birthDate := parsePastDate(req.BirthDate, "birthDate", s.now(), ve)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.newUser(&req.AccountFields, req.Name, domain.AccountKindPerson)
	if err != nil {
		return nil, err
	}
	person := &domain.Person{
		FirstName: strings.TrimSpace(req.FirstName),
		LastNames: strings.TrimSpace(req.LastNames),
		BirthDate: birthDate,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.createUser(ctx, tx, user); err != nil {
			return err
		}
		person.UserID = user.ID
		if err := s.personRepo.WithTx(tx).Create(ctx, person); err != nil {
			return fmt.Errorf("failed to create person: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("person registered", zap.String("user_id", user.ID.String()))
	return &domain.ProfileDTO{
		User:   mapper.ToUserDTO(user, s.photos),
		Person: mapper.ToPersonProfileDTO(person),
	}, nil
}

// RegisterBusiness creates a business account. A failed geocode leaves the
// business pending for the regeocode job.
func (s *AuthService) RegisterBusiness(ctx context.Context, req *domain.RegisterBusinessRequest) (*domain.ProfileDTO, error) {
	ve := &ValidationError{}
	if err := s.checkAccountFields(ctx, &req.AccountFields, ve); err != nil {
		return nil, err
	}
	businessType, err := s.businessTypeRepo.GetByID(ctx, req.BusinessTypeID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get business type: %w", err)
		}
		ve.Add("businessTypeId", "Unknown business type")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.newUser(&req.AccountFields, req.Name, domain.AccountKindBusiness)
	if err != nil {
		return nil, err
	}
	business := &domain.Business{
		Name:           strings.TrimSpace(req.Name),
		Description:    strings.TrimSpace(req.Description),
		Address:        strings.TrimSpace(req.Address),
		PhotoKey:       req.PhotoKey,
		BusinessTypeID: businessType.ID,
	}
	coords, attemptedAt := s.tryGeocode(ctx, business.Address)
	business.Latitude, business.Longitude, business.GeocodedAt = coords.Latitude, coords.Longitude, attemptedAt

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.createUser(ctx, tx, user); err != nil {
			return err
		}
		business.UserID = user.ID
		if err := s.businessRepo.WithTx(tx).Create(ctx, business); err != nil {
			return fmt.Errorf("failed to create business: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("business registered",
		zap.String("user_id", user.ID.String()),
		zap.String("business_type", businessType.Code),
		zap.Bool("geocoded", business.HasCoordinates()))

	business.User = user
	business.BusinessType = businessType
	dto := mapper.ToBusinessDTO(business, s.photos)
	return &domain.ProfileDTO{
		User:     mapper.ToUserDTO(user, s.photos),
		Business: &dto,
	}, nil
}

// RegisterShelter creates a shelter account
func (s *AuthService) RegisterShelter(ctx context.Context, req *domain.RegisterShelterRequest) (*domain.ProfileDTO, error) {
	ve := &ValidationError{}
	if err := s.checkAccountFields(ctx, &req.AccountFields, ve); err != nil {
		return nil, err
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.newUser(&req.AccountFields, req.Name, domain.AccountKindShelter)
	if err != nil {
		return nil, err
	}
	shelter := &domain.Shelter{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Address:     strings.TrimSpace(req.Address),
		PhotoKey:    req.PhotoKey,
	}
	coords, attemptedAt := s.tryGeocode(ctx, shelter.Address)
	shelter.Latitude, shelter.Longitude, shelter.GeocodedAt = coords.Latitude, coords.Longitude, attemptedAt

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.createUser(ctx, tx, user); err != nil {
			return err
		}
		shelter.UserID = user.ID
		if err := s.shelterRepo.WithTx(tx).Create(ctx, shelter); err != nil {
			return fmt.Errorf("failed to create shelter: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shelter registered",
		zap.String("user_id", user.ID.String()),
		zap.Bool("geocoded", shelter.HasCoordinates()))

	shelter.User = user
	dto := mapper.ToShelterDTO(shelter, s.photos)
	return &domain.ProfileDTO{
		User:    mapper.ToUserDTO(user, s.photos),
		Shelter: &dto,
	}, nil
}

// tryGeocode geocodes a directory address without failing the caller
func (s *AuthService) tryGeocode(ctx context.Context, address string) (repository.Coordinates, *time.Time) {
	return bestEffortGeocode(ctx, s.geocoder, address, s.now(), s.logger)
}

// bestEffortGeocode returns the coordinates of address, or empty coordinates
// when the lookup fails. The attempt time is nil when the geocoder could not
// be reached.
func bestEffortGeocode(ctx context.Context, geocoder geocoding.Geocoder, address string, now time.Time, logger *zap.Logger) (repository.Coordinates, *time.Time) {
	attemptedAt := now.UTC()
	coords, err := geocodeAddress(ctx, geocoder, address)
	if err != nil {
		logger.Warn("geocoding failed, address left pending",
			zap.String("address", address),
			zap.Error(err))
		if errors.Is(err, ErrGeocodingUnavailable) {
			return repository.Coordinates{}, nil
		}
		return repository.Coordinates{}, &attemptedAt
	}
	return coords, &attemptedAt
}
