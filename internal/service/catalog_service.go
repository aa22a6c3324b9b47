package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/mapper"
	"github.com/petsafe/petsafe-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrCatalogNotFound is returned when a catalog entry is not found
	ErrCatalogNotFound = errors.New("catalog entry not found")

	// ErrCatalogInUse is returned when deleting an entry that rows still reference
	ErrCatalogInUse = errors.New("catalog entry is in use")

	// ErrCatalogCodeTaken is returned when another entry already has the code
	ErrCatalogCodeTaken = errors.New("catalog code already exists")

	// ErrCatalogReserved is returned when deleting or recoding an entry the application relies on
	ErrCatalogReserved = errors.New("catalog entry is reserved")
)

// catalogReference is a column that points at a catalog entry
type catalogReference struct {
	table  string
	column string
}

// CatalogService manages one lookup table
type CatalogService[T repository.Catalog] struct {
	repo       *repository.CatalogRepository[T]
	name       string
	references []catalogReference
	reserved   map[string]bool
	toDTO      func(*T) *domain.CatalogDTO
	assign     func(entry *T, code, name string)
	logger     *zap.Logger
}

// NewSituationService creates the service for animal situations
func NewSituationService(repo *repository.SituationRepository, logger *zap.Logger) *CatalogService[domain.Situation] {
	return &CatalogService[domain.Situation]{
		repo:       repo,
		name:       "situation",
		references: []catalogReference{{table: "animals", column: "situation_id"}},
		reserved: map[string]bool{
			domain.SituationLost:     true,
			domain.SituationFound:    true,
			domain.SituationAdoption: true,
			domain.SituationResolved: true,
		},
		toDTO: mapper.ToSituationDTO,
		assign: func(e *domain.Situation, code, name string) {
			e.Code, e.Name = code, name
		},
		logger: logger,
	}
}

// NewAnimalTypeService creates the service for animal types
func NewAnimalTypeService(repo *repository.AnimalTypeRepository, logger *zap.Logger) *CatalogService[domain.AnimalType] {
	return &CatalogService[domain.AnimalType]{
		repo:       repo,
		name:       "animal type",
		references: []catalogReference{{table: "animals", column: "animal_type_id"}},
		reserved:   map[string]bool{},
		toDTO:      mapper.ToAnimalTypeDTO,
		assign: func(e *domain.AnimalType, code, name string) {
			e.Code, e.Name = code, name
		},
		logger: logger,
	}
}

// NewBusinessTypeService creates the service for business types
func NewBusinessTypeService(repo *repository.BusinessTypeRepository, logger *zap.Logger) *CatalogService[domain.BusinessType] {
	return &CatalogService[domain.BusinessType]{
		repo:       repo,
		name:       "business type",
		references: []catalogReference{{table: "businesses", column: "business_type_id"}},
		reserved:   map[string]bool{domain.BusinessTypeVeterinary: true},
		toDTO:      mapper.ToBusinessTypeDTO,
		assign: func(e *domain.BusinessType, code, name string) {
			e.Code, e.Name = code, name
		},
		logger: logger,
	}
}

// List returns every entry in id order
func (s *CatalogService[T]) List(ctx context.Context) ([]domain.CatalogDTO, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entries: %w", s.name, err)
	}
	dtos := make([]domain.CatalogDTO, len(entries))
	for i := range entries {
		dtos[i] = *s.toDTO(&entries[i])
	}
	return dtos, nil
}

func (s *CatalogService[T]) get(ctx context.Context, id uint) (*T, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCatalogNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", s.name, err)
	}
	return entry, nil
}

// GetByID returns a single entry
func (s *CatalogService[T]) GetByID(ctx context.Context, id uint) (*domain.CatalogDTO, error) {
	entry, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(entry), nil
}

// Create adds an entry
func (s *CatalogService[T]) Create(ctx context.Context, req *domain.CatalogRequest) (*domain.CatalogDTO, error) {
	entry := new(T)
	s.assign(entry, normalizeCode(req.Code), strings.TrimSpace(req.Name))
	if err := s.repo.Create(ctx, entry); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCatalogCodeTaken
		}
		return nil, fmt.Errorf("failed to create %s: %w", s.name, err)
	}

	dto := s.toDTO(entry)
	s.logger.Info("catalog entry created", zap.String("catalog", s.name), zap.String("code", dto.Code))
	return dto, nil
}

// Update renames an entry. Reserved entries keep their code.
func (s *CatalogService[T]) Update(ctx context.Context, id uint, req *domain.CatalogRequest) (*domain.CatalogDTO, error) {
	entry, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	current := s.toDTO(entry)
	code := normalizeCode(req.Code)
	if s.reserved[current.Code] && code != current.Code {
		return nil, ErrCatalogReserved
	}

	s.assign(entry, code, strings.TrimSpace(req.Name))
	if err := s.repo.Update(ctx, entry); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCatalogCodeTaken
		}
		return nil, fmt.Errorf("failed to update %s: %w", s.name, err)
	}
	return s.toDTO(entry), nil
}

// Delete removes an entry nothing references
func (s *CatalogService[T]) Delete(ctx context.Context, id uint) error {
	entry, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	dto := s.toDTO(entry)
	if s.reserved[dto.Code] {
		return ErrCatalogReserved
	}
	for _, ref := range s.references {
		inUse, err := s.repo.InUse(ctx, ref.table, ref.column, id)
		if err != nil {
			return fmt.Errorf("failed to check %s usage: %w", s.name, err)
		}
		if inUse {
			return ErrCatalogInUse
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.name, err)
	}
	s.logger.Info("catalog entry deleted", zap.String("catalog", s.name), zap.String("code", dto.Code))
	return nil
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
