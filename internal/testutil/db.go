// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/database"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword is the plain password of every fixture account
const TestPassword = "secret123"

// SetupTestDB returns a migrated and seeded in-memory SQLite database
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedCatalogs(context.Background(), db))
	return db
}

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func Float(v float64) *float64 {
	return &v
}

// SituationID looks up a seeded situation by code
func SituationID(t *testing.T, db *gorm.DB, code string) uint {
	t.Helper()
	var s domain.Situation
	require.NoError(t, db.Where("code = ?", code).First(&s).Error)
	return s.ID
}

// AnimalTypeID looks up a seeded animal type by code
func AnimalTypeID(t *testing.T, db *gorm.DB, code string) uint {
	t.Helper()
	var a domain.AnimalType
	require.NoError(t, db.Where("code = ?", code).First(&a).Error)
	return a.ID
}

// BusinessTypeID looks up a seeded business type by code
func BusinessTypeID(t *testing.T, db *gorm.DB, code string) uint {
	t.Helper()
	var b domain.BusinessType
	require.NoError(t, db.Where("code = ?", code).First(&b).Error)
	return b.ID
}

// CreateTestUser creates an account whose password is TestPassword
func CreateTestUser(t *testing.T, db *gorm.DB, kind domain.AccountKind, name string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", kind, uuid.NewString()[:8]),
		PasswordHash: string(hash),
		Phone:        "600123123",
		PhotoKey:     "ab/cd/" + uuid.NewString() + ".jpg",
		Kind:         kind,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestPerson creates a person account with its profile
func CreateTestPerson(t *testing.T, db *gorm.DB, name string) (*domain.User, *domain.Person) {
	t.Helper()
	user := CreateTestUser(t, db, domain.AccountKindPerson, name)
	person := &domain.Person{
		UserID:    user.ID,
		FirstName: name,
		LastNames: "García López",
		BirthDate: Date(1990, time.March, 14),
	}
	require.NoError(t, db.Create(person).Error)
	return user, person
}

// CreateTestBusiness creates a business account. lat/lng may be nil for a pending geocode.
func CreateTestBusiness(t *testing.T, db *gorm.DB, name, typeCode string, lat, lng *float64) *domain.Business {
	t.Helper()
	user := CreateTestUser(t, db, domain.AccountKindBusiness, name)
	b := &domain.Business{
		UserID:         user.ID,
		Name:           name,
		Description:    name + " description",
		Address:        "Calle Colón, 1, Valencia",
		Latitude:       lat,
		Longitude:      lng,
		PhotoKey:       user.PhotoKey,
		BusinessTypeID: BusinessTypeID(t, db, typeCode),
	}
	if lat != nil {
		now := time.Now().UTC()
		b.GeocodedAt = &now
	}
	require.NoError(t, db.Omit("User", "BusinessType").Create(b).Error)
	b.User = user
	return b
}

// CreateTestShelter creates a shelter account
func CreateTestShelter(t *testing.T, db *gorm.DB, name string, lat, lng *float64) *domain.Shelter {
	t.Helper()
	user := CreateTestUser(t, db, domain.AccountKindShelter, name)
	s := &domain.Shelter{
		UserID:      user.ID,
		Name:        name,
		Description: name + " description",
		Address:     "Avenida del Puerto, 10, Valencia",
		Latitude:    lat,
		Longitude:   lng,
		PhotoKey:    user.PhotoKey,
	}
	if lat != nil {
		now := time.Now().UTC()
		s.GeocodedAt = &now
	}
	require.NoError(t, db.Omit("User").Create(s).Error)
	s.User = user
	return s
}

// CreateTestReport creates an animal and its report
func CreateTestReport(t *testing.T, db *gorm.DB, reporter *domain.User, situationCode, typeCode string, lat, lng *float64) *domain.Report {
	t.Helper()
	animal := &domain.Animal{
		SituationID:  SituationID(t, db, situationCode),
		AnimalTypeID: AnimalTypeID(t, db, typeCode),
		Description:  "Brown dog with a red collar",
		Date:         Date(2024, time.May, 1),
		PhotoKey:     "ef/gh/" + uuid.NewString() + ".png",
	}
	require.NoError(t, db.Omit("Situation", "AnimalType").Create(animal).Error)

	report := &domain.Report{
		AnimalID:     animal.ID,
		UserID:       reporter.ID,
		Location:     "Calle Xàtiva, 24, Valencia",
		ContactPhone: "611222333",
		Latitude:     lat,
		Longitude:    lng,
	}
	require.NoError(t, db.Omit("Animal", "User").Create(report).Error)
	report.Animal = animal
	return report
}

// CreateTestAppointment creates an agenda entry
func CreateTestAppointment(t *testing.T, db *gorm.DB, userID uuid.UUID, date time.Time, hhmm, animal string) *domain.Appointment {
	t.Helper()
	a := &domain.Appointment{
		UserID:     userID,
		Date:       date,
		Time:       hhmm,
		AnimalName: animal,
		Reason:     "Vaccination",
	}
	require.NoError(t, db.Omit("User").Create(a).Error)
	return a
}
