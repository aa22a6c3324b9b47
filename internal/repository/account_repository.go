package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
	"gorm.io/gorm"
)

// UserRepository handles account data access
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail matches the email case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsEmail reports whether another account uses the email. excludeID may be uuid.Nil.
func (r *UserRepository) ExistsEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// List returns accounts ordered by name, optionally filtered by kind
func (r *UserRepository) List(ctx context.Context, kind domain.AccountKind, page, pageSize int) ([]domain.User, int64, error) {
	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.User{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	err := paginate(query.Order("name ASC"), page, pageSize).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id).Error
}

// PersonRepository handles person profile data access
type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) WithTx(tx *gorm.DB) *PersonRepository {
	return &PersonRepository{db: tx}
}

func (r *PersonRepository) Create(ctx context.Context, person *domain.Person) error {
	return r.db.WithContext(ctx).Omit("User").Create(person).Error
}

func (r *PersonRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Person, error) {
	var person domain.Person
	err := r.db.WithContext(ctx).Preload("User").First(&person, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *PersonRepository) Update(ctx context.Context, person *domain.Person) error {
	return r.db.WithContext(ctx).Omit("User").Save(person).Error
}

func (r *PersonRepository) List(ctx context.Context, page, pageSize int) ([]domain.Person, int64, error) {
	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Person{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var persons []domain.Person
	err := paginate(query.Preload("User").Order("last_names ASC, first_name ASC"), page, pageSize).Find(&persons).Error
	return persons, total, err
}

func (r *PersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Person{}, "id = ?", id).Error
}
