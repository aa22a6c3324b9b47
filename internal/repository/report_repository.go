package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
	"gorm.io/gorm"
)

// AnimalRepository handles animal data access
type AnimalRepository struct {
	db *gorm.DB
}

func NewAnimalRepository(db *gorm.DB) *AnimalRepository {
	return &AnimalRepository{db: db}
}

func (r *AnimalRepository) WithTx(tx *gorm.DB) *AnimalRepository {
	return &AnimalRepository{db: tx}
}

func (r *AnimalRepository) Create(ctx context.Context, animal *domain.Animal) error {
	return r.db.WithContext(ctx).Omit("Situation", "AnimalType").Create(animal).Error
}

func (r *AnimalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Animal, error) {
	var animal domain.Animal
	err := r.db.WithContext(ctx).
		Preload("Situation").
		Preload("AnimalType").
		First(&animal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &animal, nil
}

func (r *AnimalRepository) List(ctx context.Context, page, pageSize int) ([]domain.Animal, int64, error) {
	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Animal{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var animals []domain.Animal
	err := paginate(query, page, pageSize).
		Preload("Situation").
		Preload("AnimalType").
		Order("date DESC").
		Find(&animals).Error
	return animals, total, err
}

func (r *AnimalRepository) Update(ctx context.Context, animal *domain.Animal) error {
	return r.db.WithContext(ctx).Omit("Situation", "AnimalType").Save(animal).Error
}

func (r *AnimalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Animal{}, "id = ?", id).Error
}

// ReportFilters defines filter options for report listing
type ReportFilters struct {
	SituationCode  string
	AnimalTypeCode string
	ReporterID     *uuid.UUID
}

// ReportRepository handles report data access
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) WithTx(tx *gorm.DB) *ReportRepository {
	return &ReportRepository{db: tx}
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Omit("Animal", "User").Create(report).Error
}

func (r *ReportRepository) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Animal").
		Preload("Animal.Situation").
		Preload("Animal.AnimalType").
		Preload("User")
}

// GetByID loads a report with its animal, catalogs and reporter
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	var report domain.Report
	err := r.withDetails(r.db.WithContext(ctx)).First(&report, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) animalsWhere(condition string, args ...interface{}) *gorm.DB {
	return r.db.Model(&domain.Animal{}).Select("id").Where(condition, args...)
}

func (r *ReportRepository) applyFilters(query *gorm.DB, filters *ReportFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.SituationCode != "" {
		query = query.Where("animal_id IN (?)", r.animalsWhere("situation_id IN (?)",
			r.db.Model(&domain.Situation{}).Select("id").Where("code = ?", filters.SituationCode)))
	}
	if filters.AnimalTypeCode != "" {
		query = query.Where("animal_id IN (?)", r.animalsWhere("animal_type_id IN (?)",
			r.db.Model(&domain.AnimalType{}).Select("id").Where("code = ?", filters.AnimalTypeCode)))
	}
	if filters.ReporterID != nil {
		query = query.Where("user_id = ?", *filters.ReporterID)
	}
	return query
}

// List returns a page of reports, newest first
func (r *ReportRepository) List(ctx context.Context, page, pageSize int, filters *ReportFilters) ([]domain.Report, int64, error) {
	page, pageSize = NormalizePagination(page, pageSize)

	query := r.applyFilters(r.db.WithContext(ctx).Model(&domain.Report{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []domain.Report
	err := r.withDetails(paginate(query, page, pageSize)).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, total, err
}

// ListForMap returns geocoded reports whose animal is not resolved
func (r *ReportRepository) ListForMap(ctx context.Context) ([]domain.Report, error) {
	var reports []domain.Report
	query := geocoded(r.db.WithContext(ctx).Model(&domain.Report{})).
		Where("animal_id IN (?)", r.animalsWhere("situation_id NOT IN (?)",
			r.db.Model(&domain.Situation{}).Select("id").Where("code = ?", domain.SituationResolved)))
	err := r.withDetails(query).Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) ListPendingGeocode(ctx context.Context, limit int) ([]domain.Report, error) {
	var reports []domain.Report
	err := pendingGeocode(r.db.WithContext(ctx).Model(&domain.Report{}), limit).Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) Update(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Omit("Animal", "User").Save(report).Error
}

func (r *ReportRepository) UpdateCoordinates(ctx context.Context, id uuid.UUID, coords Coordinates, attemptedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Report{}).
		Where("id = ?", id).
		Updates(coordinateUpdates(coords, attemptedAt)).Error
}

func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Report{}, "id = ?", id).Error
}
