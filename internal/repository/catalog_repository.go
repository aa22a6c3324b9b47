package repository

import (
	"context"

	"github.com/petsafe/petsafe-api/internal/domain"
	"gorm.io/gorm"
)

// Catalog is any code/name lookup table
type Catalog interface {
	domain.Situation | domain.AnimalType | domain.BusinessType
}

// CatalogRepository handles data access for one lookup table
type CatalogRepository[T Catalog] struct {
	db *gorm.DB
}

type (
	SituationRepository    = CatalogRepository[domain.Situation]
	AnimalTypeRepository   = CatalogRepository[domain.AnimalType]
	BusinessTypeRepository = CatalogRepository[domain.BusinessType]
)

func NewSituationRepository(db *gorm.DB) *SituationRepository {
	return &SituationRepository{db: db}
}

func NewAnimalTypeRepository(db *gorm.DB) *AnimalTypeRepository {
	return &AnimalTypeRepository{db: db}
}

func NewBusinessTypeRepository(db *gorm.DB) *BusinessTypeRepository {
	return &BusinessTypeRepository{db: db}
}

func (r *CatalogRepository[T]) Create(ctx context.Context, entry *T) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *CatalogRepository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var entry T
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *CatalogRepository[T]) GetByCode(ctx context.Context, code string) (*T, error) {
	var entry T
	if err := r.db.WithContext(ctx).First(&entry, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns every entry ordered by id, the order the combo boxes show them in
func (r *CatalogRepository[T]) List(ctx context.Context) ([]T, error) {
	var entries []T
	err := r.db.WithContext(ctx).Order("id ASC").Find(&entries).Error
	return entries, err
}

func (r *CatalogRepository[T]) Update(ctx context.Context, entry *T) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *CatalogRepository[T]) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(new(T), "id = ?", id).Error
}

// InUse reports whether rows of the given table reference the entry through column
func (r *CatalogRepository[T]) InUse(ctx context.Context, table, column string, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(table).Where(column+" = ?", id).Count(&count).Error
	return count > 0, err
}
