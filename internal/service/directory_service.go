package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/mapper"
	"github.com/petsafe/petsafe-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrBusinessNotFound is returned when a business is not found
	ErrBusinessNotFound = errors.New("business not found")

	// ErrShelterNotFound is returned when a shelter is not found
	ErrShelterNotFound = errors.New("shelter not found")
)

// DirectoryListParams are the query options of the directory listings
type DirectoryListParams struct {
	// TypeCode narrows businesses to one business type
	TypeCode  string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// DirectoryService lists veterinarians, pet-friendly businesses and shelters
type DirectoryService struct {
	businessRepo *repository.BusinessRepository
	shelterRepo  *repository.ShelterRepository
	photos       mapper.PhotoURLs
	logger       *zap.Logger
}

// NewDirectoryService creates a new directory service instance
func NewDirectoryService(
	businessRepo *repository.BusinessRepository,
	shelterRepo *repository.ShelterRepository,
	photos mapper.PhotoURLs,
	logger *zap.Logger,
) *DirectoryService {
	return &DirectoryService{
		businessRepo: businessRepo,
		shelterRepo:  shelterRepo,
		photos:       photos,
		logger:       logger,
	}
}

func (s *DirectoryService) listBusinesses(ctx context.Context, filters *repository.BusinessFilters, params DirectoryListParams) (*domain.PaginatedResponse, error) {
	page, pageSize := repository.NormalizePagination(params.Page, params.PageSize)
	sort := repository.SortConfig{Field: params.SortBy, Order: repository.SortOrderAsc}
	if params.SortOrder != "" {
		sort.Order = repository.ParseSortOrder(params.SortOrder)
	}

	businesses, total, err := s.businessRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}

	dtos := make([]domain.BusinessDTO, len(businesses))
	for i := range businesses {
		dtos[i] = mapper.ToBusinessDTO(&businesses[i], s.photos)
	}
	return paginated(dtos, total, page, pageSize), nil
}

// ListVeterinarians returns the businesses of type veterinary
func (s *DirectoryService) ListVeterinarians(ctx context.Context, params DirectoryListParams) (*domain.PaginatedResponse, error) {
	return s.listBusinesses(ctx, &repository.BusinessFilters{
		TypeCode: domain.BusinessTypeVeterinary,
		Search:   params.Search,
	}, params)
}

// ListBusinesses returns the pet-friendly businesses that are not veterinarians
func (s *DirectoryService) ListBusinesses(ctx context.Context, params DirectoryListParams) (*domain.PaginatedResponse, error) {
	filters := &repository.BusinessFilters{
		ExcludeTypeCode: domain.BusinessTypeVeterinary,
		Search:          params.Search,
	}
	if params.TypeCode != domain.BusinessTypeVeterinary {
		filters.TypeCode = params.TypeCode
	}
	return s.listBusinesses(ctx, filters, params)
}

// GetBusiness returns a business or veterinarian with its owner's contact details
func (s *DirectoryService) GetBusiness(ctx context.Context, id uuid.UUID) (*domain.BusinessDTO, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	dto := mapper.ToBusinessDTO(business, s.photos)
	return &dto, nil
}

// ListShelters returns a page of shelters
func (s *DirectoryService) ListShelters(ctx context.Context, params DirectoryListParams) (*domain.PaginatedResponse, error) {
	page, pageSize := repository.NormalizePagination(params.Page, params.PageSize)
	shelters, total, err := s.shelterRepo.List(ctx, page, pageSize, params.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to list shelters: %w", err)
	}

	dtos := make([]domain.ShelterDTO, len(shelters))
	for i := range shelters {
		dtos[i] = mapper.ToShelterDTO(&shelters[i], s.photos)
	}
	return paginated(dtos, total, page, pageSize), nil
}

// GetShelter returns a shelter with its owner's contact details
func (s *DirectoryService) GetShelter(ctx context.Context, id uuid.UUID) (*domain.ShelterDTO, error) {
	shelter, err := s.shelterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShelterNotFound
		}
		return nil, fmt.Errorf("failed to get shelter: %w", err)
	}
	dto := mapper.ToShelterDTO(shelter, s.photos)
	return &dto, nil
}
