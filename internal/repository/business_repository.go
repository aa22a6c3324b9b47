package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
	"gorm.io/gorm"
)

// BusinessFilters defines filter options for business listing
type BusinessFilters struct {
	// TypeCode keeps only businesses of this type
	TypeCode string
	// ExcludeTypeCode drops businesses of this type
	ExcludeTypeCode string
	Search          string
}

var businessSortableFields = map[string]string{
	"name":      "name",
	"rating":    "rating",
	"createdAt": "created_at",
}

// BusinessRepository handles business profile data access
type BusinessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) WithTx(tx *gorm.DB) *BusinessRepository {
	return &BusinessRepository{db: tx}
}

func (r *BusinessRepository) Create(ctx context.Context, business *domain.Business) error {
	return r.db.WithContext(ctx).Omit("User", "BusinessType").Create(business).Error
}

// GetByID loads a business with its owner account and type
func (r *BusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	var business domain.Business
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("BusinessType").
		First(&business, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *BusinessRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Business, error) {
	var business domain.Business
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("BusinessType").
		First(&business, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *BusinessRepository) applyFilters(query *gorm.DB, filters *BusinessFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.TypeCode != "" {
		query = query.Where("business_type_id IN (?)",
			r.db.Model(&domain.BusinessType{}).Select("id").Where("code = ?", filters.TypeCode))
	}
	if filters.ExcludeTypeCode != "" {
		query = query.Where("business_type_id NOT IN (?)",
			r.db.Model(&domain.BusinessType{}).Select("id").Where("code = ?", filters.ExcludeTypeCode))
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(address) LIKE ?", pattern, pattern, pattern)
	}
	return query
}

// List returns a page of businesses matching the filters
func (r *BusinessRepository) List(ctx context.Context, page, pageSize int, filters *BusinessFilters, sort SortConfig) ([]domain.Business, int64, error) {
	page, pageSize = NormalizePagination(page, pageSize)

	query := r.applyFilters(r.db.WithContext(ctx).Model(&domain.Business{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var businesses []domain.Business
	err := paginate(query, page, pageSize).
		Preload("User").
		Preload("BusinessType").
		Order(BuildOrderClause(sort, businessSortableFields, "name")).
		Find(&businesses).Error
	return businesses, total, err
}

// ListGeocoded returns every business with stored coordinates
func (r *BusinessRepository) ListGeocoded(ctx context.Context, filters *BusinessFilters) ([]domain.Business, error) {
	var businesses []domain.Business
	query := r.applyFilters(geocoded(r.db.WithContext(ctx).Model(&domain.Business{})), filters)
	err := query.
		Preload("User").
		Preload("BusinessType").
		Order("name ASC").
		Find(&businesses).Error
	return businesses, err
}

// ListPendingGeocode returns up to limit businesses still missing coordinates
func (r *BusinessRepository) ListPendingGeocode(ctx context.Context, limit int) ([]domain.Business, error) {
	var businesses []domain.Business
	err := pendingGeocode(r.db.WithContext(ctx).Model(&domain.Business{}), limit).Find(&businesses).Error
	return businesses, err
}

func (r *BusinessRepository) Update(ctx context.Context, business *domain.Business) error {
	return r.db.WithContext(ctx).Omit("User", "BusinessType").Save(business).Error
}

// UpdateCoordinates stores a geocoding attempt without touching other columns
func (r *BusinessRepository) UpdateCoordinates(ctx context.Context, id uuid.UUID, coords Coordinates, attemptedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Business{}).
		Where("id = ?", id).
		Updates(coordinateUpdates(coords, attemptedAt)).Error
}

func (r *BusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Business{}, "id = ?", id).Error
}

// ShelterRepository handles shelter profile data access
type ShelterRepository struct {
	db *gorm.DB
}

func NewShelterRepository(db *gorm.DB) *ShelterRepository {
	return &ShelterRepository{db: db}
}

func (r *ShelterRepository) WithTx(tx *gorm.DB) *ShelterRepository {
	return &ShelterRepository{db: tx}
}

func (r *ShelterRepository) Create(ctx context.Context, shelter *domain.Shelter) error {
	return r.db.WithContext(ctx).Omit("User").Create(shelter).Error
}

func (r *ShelterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Shelter, error) {
	var shelter domain.Shelter
	err := r.db.WithContext(ctx).Preload("User").First(&shelter, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &shelter, nil
}

func (r *ShelterRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Shelter, error) {
	var shelter domain.Shelter
	err := r.db.WithContext(ctx).Preload("User").First(&shelter, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &shelter, nil
}

// List returns a page of shelters ordered by name
func (r *ShelterRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.Shelter, int64, error) {
	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Shelter{})
	if search != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(address) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shelters []domain.Shelter
	err := paginate(query, page, pageSize).Preload("User").Order("name ASC").Find(&shelters).Error
	return shelters, total, err
}

func (r *ShelterRepository) ListGeocoded(ctx context.Context) ([]domain.Shelter, error) {
	var shelters []domain.Shelter
	err := geocoded(r.db.WithContext(ctx).Model(&domain.Shelter{})).
		Preload("User").
		Order("name ASC").
		Find(&shelters).Error
	return shelters, err
}

func (r *ShelterRepository) ListPendingGeocode(ctx context.Context, limit int) ([]domain.Shelter, error) {
	var shelters []domain.Shelter
	err := pendingGeocode(r.db.WithContext(ctx).Model(&domain.Shelter{}), limit).Find(&shelters).Error
	return shelters, err
}

func (r *ShelterRepository) Update(ctx context.Context, shelter *domain.Shelter) error {
	return r.db.WithContext(ctx).Omit("User").Save(shelter).Error
}

func (r *ShelterRepository) UpdateCoordinates(ctx context.Context, id uuid.UUID, coords Coordinates, attemptedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Shelter{}).
		Where("id = ?", id).
		Updates(coordinateUpdates(coords, attemptedAt)).Error
}

func (r *ShelterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Shelter{}, "id = ?", id).Error
}
