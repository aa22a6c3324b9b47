package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/petsafe/petsafe-api/internal/config"
	"github.com/petsafe/petsafe-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const healthCheckTimeout = 2 * time.Second

// NewDatabase opens the pooled PostgreSQL connection
func NewDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.ConnectionString()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// HealthCheck pings the database
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// HealthCheckWithStats pings the database and returns the pool statistics
func HealthCheckWithStats(ctx context.Context, db *gorm.DB) (sql.DBStats, error) {
	if err := HealthCheck(ctx, db); err != nil {
		return sql.DBStats{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return sql.DBStats{}, fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Stats(), nil
}

// AutoMigrate runs automatic migrations (for development and tests only)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Situation{},
		&domain.AnimalType{},
		&domain.BusinessType{},
		&domain.User{},
		&domain.Person{},
		&domain.Business{},
		&domain.Shelter{},
		&domain.Animal{},
		&domain.Report{},
		&domain.Appointment{},
	)
}

// DefaultSituations are seeded in this order so "adoption" keeps id 3
var DefaultSituations = []domain.Situation{
	{Code: domain.SituationLost, Name: "Perdido"},
	{Code: domain.SituationFound, Name: "Encontrado"},
	{Code: domain.SituationAdoption, Name: "En adopción"},
	{Code: domain.SituationResolved, Name: "Resuelto"},
}

var DefaultAnimalTypes = []domain.AnimalType{
	{Code: "dog", Name: "Perro"},
	{Code: "cat", Name: "Gato"},
	{Code: "bird", Name: "Pájaro"},
	{Code: "rabbit", Name: "Conejo"},
	{Code: "other", Name: "Otro"},
}

var DefaultBusinessTypes = []domain.BusinessType{
	{Code: domain.BusinessTypeVeterinary, Name: "Veterinario"},
	{Code: "pet_shop", Name: "Tienda de animales"},
	{Code: "grooming", Name: "Peluquería canina"},
	{Code: "pet_hotel", Name: "Residencia"},
	{Code: "pet_friendly", Name: "Local pet friendly"},
}

// SeedCatalogs inserts the default catalog rows, leaving existing codes untouched
func SeedCatalogs(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}

		for _, s := range DefaultSituations {
			row := s
			if err := tx.Clauses(onConflict).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to seed situation %s: %w", s.Code, err)
			}
		}
		for _, a := range DefaultAnimalTypes {
			row := a
			if err := tx.Clauses(onConflict).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to seed animal type %s: %w", a.Code, err)
			}
		}
		for _, b := range DefaultBusinessTypes {
			row := b
			if err := tx.Clauses(onConflict).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to seed business type %s: %w", b.Code, err)
			}
		}
		return nil
	})
}
