package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/petsafe/petsafe-api/internal/database"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestHealthCheck_Healthy(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()

	err := database.HealthCheck(context.Background(), db)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_PingFails(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err := database.HealthCheck(context.Background(), db)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheckWithStats(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()

	stats, err := database.HealthCheckWithStats(context.Background(), db)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedCatalogs_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	// SetupTestDB already seeds once
	require.NoError(t, database.SeedCatalogs(ctx, db))

	var count int64
	require.NoError(t, db.Model(&domain.Situation{}).Count(&count).Error)
	assert.Equal(t, int64(len(database.DefaultSituations)), count)

	var adoption domain.Situation
	require.NoError(t, db.Where("code = ?", domain.SituationAdoption).First(&adoption).Error)
	assert.Equal(t, uint(3), adoption.ID)

	var vet domain.BusinessType
	require.NoError(t, db.Where("code = ?", domain.BusinessTypeVeterinary).First(&vet).Error)
	assert.Equal(t, uint(1), vet.ID)
}
