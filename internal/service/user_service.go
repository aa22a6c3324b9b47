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

// UserService handles the authenticated account's profile
type UserService struct {
	db               *gorm.DB
	userRepo         *repository.UserRepository
	personRepo       *repository.PersonRepository
	businessRepo     *repository.BusinessRepository
	shelterRepo      *repository.ShelterRepository
	businessTypeRepo *repository.BusinessTypeRepository
	geocoder         geocoding.Geocoder
	storage          storage.Storage
	photos           mapper.PhotoURLs
	logger           *zap.Logger
	now              func() time.Time
}

// NewUserService creates a new user service instance
func NewUserService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	personRepo *repository.PersonRepository,
	businessRepo *repository.BusinessRepository,
	shelterRepo *repository.ShelterRepository,
	businessTypeRepo *repository.BusinessTypeRepository,
	geocoder geocoding.Geocoder,
	store storage.Storage,
	photos mapper.PhotoURLs,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		db:               db,
		userRepo:         userRepo,
		personRepo:       personRepo,
		businessRepo:     businessRepo,
		shelterRepo:      shelterRepo,
		businessTypeRepo: businessTypeRepo,
		geocoder:         geocoder,
		storage:          store,
		photos:           photos,
		logger:           logger,
		now:              time.Now,
	}
}

// profile is an account with whichever profile row its kind has
type profile struct {
	user     *domain.User
	person   *domain.Person
	business *domain.Business
	shelter  *domain.Shelter
}

func (s *UserService) load(ctx context.Context, userID uuid.UUID) (*profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	p := &profile{user: user}
	switch user.Kind {
	case domain.AccountKindPerson:
		p.person, err = s.personRepo.GetByUserID(ctx, userID)
	case domain.AccountKindBusiness:
		p.business, err = s.businessRepo.GetByUserID(ctx, userID)
	case domain.AccountKindShelter:
		p.shelter, err = s.shelterRepo.GetByUserID(ctx, userID)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get %s profile: %w", user.Kind, err)
	}
	return p, nil
}

func (s *UserService) toDTO(p *profile) *domain.ProfileDTO {
	dto := &domain.ProfileDTO{User: mapper.ToUserDTO(p.user, s.photos)}
	if p.person != nil {
		dto.Person = mapper.ToPersonProfileDTO(p.person)
	}
	if p.business != nil {
		p.business.User = p.user
		business := mapper.ToBusinessDTO(p.business, s.photos)
		dto.Business = &business
	}
	if p.shelter != nil {
		p.shelter.User = p.user
		shelter := mapper.ToShelterDTO(p.shelter, s.photos)
		dto.Shelter = &shelter
	}
	return dto
}

// GetProfile returns the authenticated account and its profile
func (s *UserService) GetProfile(ctx context.Context) (*domain.ProfileDTO, error) {
	userID, err := currentAccount(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toDTO(p), nil
}

// UpdateProfile edits the authenticated account. Empty profile fields keep the
// stored value, and a changed business or shelter address is geocoded again.
func (s *UserService) UpdateProfile(ctx context.Context, req *domain.UpdateProfileRequest) (*domain.ProfileDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok || !userCtx.IsAccount() {
		return nil, ErrUnauthorized
	}
	p, err := s.load(ctx, userCtx.UserID)
	if err != nil {
		return nil, err
	}

	ve := &ValidationError{}
	email := normalizeEmail(req.Email)
	if email != normalizeEmail(p.user.Email) {
		taken, err := s.userRepo.ExistsEmail(ctx, email, p.user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			ve.Add("email", msgEmailTaken)
		}
	}
	checkPasswordLength(req.Password, ve)
	if req.PhotoKey != p.user.PhotoKey {
		if err := checkPhotoKey(ctx, s.storage, req.PhotoKey, "photoKey", ve); err != nil {
			return nil, err
		}
	}

	var businessType *domain.BusinessType
	if p.business != nil && req.BusinessTypeID != 0 && req.BusinessTypeID != p.business.BusinessTypeID {
		businessType, err = s.businessTypeRepo.GetByID(ctx, req.BusinessTypeID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to get business type: %w", err)
			}
			ve.Add("businessTypeId", "Unknown business type")
		}
	}

	var birthDate time.Time
	if p.person != nil && req.BirthDate != "" {
		birthDate = parsePastDate(req.BirthDate, "birthDate", s.now(), ve)
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	p.user.Name = strings.TrimSpace(req.Name)
	p.user.Email = email
	p.user.Phone = strings.TrimSpace(req.Phone)
	if req.PhotoKey != "" {
		p.user.PhotoKey = req.PhotoKey
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		p.user.PasswordHash = hash
	}

	if p.person != nil {
		p.person.FirstName = keep(p.person.FirstName, req.FirstName)
		p.person.LastNames = keep(p.person.LastNames, req.LastNames)
		if !birthDate.IsZero() {
			p.person.BirthDate = birthDate
		}
	}
	if p.business != nil {
		p.business.Name = keep(p.business.Name, req.BusinessName)
		p.business.Description = keep(p.business.Description, req.Description)
		if req.PhotoKey != "" {
			p.business.PhotoKey = req.PhotoKey
		}
		if businessType != nil {
			p.business.BusinessTypeID = businessType.ID
			p.business.BusinessType = businessType
		}
		if address := strings.TrimSpace(req.Address); address != "" && address != p.business.Address {
			p.business.Address = address
			coords, attemptedAt := bestEffortGeocode(ctx, s.geocoder, address, s.now(), s.logger)
			p.business.Latitude, p.business.Longitude, p.business.GeocodedAt = coords.Latitude, coords.Longitude, attemptedAt
		}
	}
	if p.shelter != nil {
		p.shelter.Name = keep(p.shelter.Name, req.ShelterName)
		p.shelter.Description = keep(p.shelter.Description, req.Description)
		if req.PhotoKey != "" {
			p.shelter.PhotoKey = req.PhotoKey
		}
		if address := strings.TrimSpace(req.Address); address != "" && address != p.shelter.Address {
			p.shelter.Address = address
			coords, attemptedAt := bestEffortGeocode(ctx, s.geocoder, address, s.now(), s.logger)
			p.shelter.Latitude, p.shelter.Longitude, p.shelter.GeocodedAt = coords.Latitude, coords.Longitude, attemptedAt
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Update(ctx, p.user); err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		if p.person != nil {
			if err := s.personRepo.WithTx(tx).Update(ctx, p.person); err != nil {
				return fmt.Errorf("failed to update person: %w", err)
			}
		}
		if p.business != nil {
			if err := s.businessRepo.WithTx(tx).Update(ctx, p.business); err != nil {
				return fmt.Errorf("failed to update business: %w", err)
			}
		}
		if p.shelter != nil {
			if err := s.shelterRepo.WithTx(tx).Update(ctx, p.shelter); err != nil {
				return fmt.Errorf("failed to update shelter: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", zap.String("user_id", p.user.ID.String()))
	return s.toDTO(p), nil
}

// keep returns value trimmed, or current when value is blank
func keep(current, value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return current
}
