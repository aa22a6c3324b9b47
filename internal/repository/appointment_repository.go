package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
	"gorm.io/gorm"
)

// AppointmentRepository handles agenda data access. Every query is scoped to one user.
type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	return r.db.WithContext(ctx).Omit("User").Create(appointment).Error
}

// GetByID returns the appointment only when it belongs to userID
func (r *AppointmentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Appointment, error) {
	var appointment domain.Appointment
	err := r.db.WithContext(ctx).First(&appointment, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// ListByUser returns the whole agenda ordered by date then time
func (r *AppointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, time ASC").
		Find(&appointments).Error
	return appointments, err
}

// ListByUserAndDate returns the appointments of a single day
func (r *AppointmentRepository) ListByUserAndDate(ctx context.Context, userID uuid.UUID, day time.Time) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, day).
		Order("time ASC").
		Find(&appointments).Error
	return appointments, err
}

// ListDatesByUser returns the distinct days holding at least one appointment.
// from and to bound the window as [from, to) when non-zero.
func (r *AppointmentRepository) ListDatesByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	query := r.db.WithContext(ctx).Model(&domain.Appointment{}).Where("user_id = ?", userID)
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date < ?", to)
	}

	var dates []time.Time
	if err := query.Order("date ASC").Pluck("date", &dates).Error; err != nil {
		return nil, err
	}

	distinct := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if n := len(distinct); n > 0 && distinct[n-1].Equal(d) {
			continue
		}
		distinct = append(distinct, d)
	}
	return distinct, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, appointment *domain.Appointment) error {
	return r.db.WithContext(ctx).Omit("User").Save(appointment).Error
}

// Delete removes the appointment if it belongs to userID and reports whether a row was deleted
func (r *AppointmentRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Appointment{}, "id = ? AND user_id = ?", id, userID)
	return result.RowsAffected > 0, result.Error
}
