package service_test

import (
	"context"
	"testing"

	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/service"
	"github.com/petsafe/petsafe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCatalogService_AnimalTypes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAnimalTypeService(repository.NewAnimalTypeRepository(db), zap.NewNop())
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, "dog", list[0].Code)

	created, err := svc.Create(ctx, &domain.CatalogRequest{Code: " Ferret ", Name: "Hurón"})
	require.NoError(t, err)
	assert.Equal(t, "ferret", created.Code)

	_, err = svc.Create(ctx, &domain.CatalogRequest{Code: "ferret", Name: "Otro hurón"})
	assert.ErrorIs(t, err, service.ErrCatalogCodeTaken)

	updated, err := svc.Update(ctx, created.ID, &domain.CatalogRequest{Code: "ferret", Name: "Hurones"})
	require.NoError(t, err)
	assert.Equal(t, "Hurones", updated.Name)

	t.Run("entry in use cannot be deleted", func(t *testing.T) {
		owner, _ := testutil.CreateTestPerson(t, db, "Dueña")
		testutil.CreateTestReport(t, db, owner, domain.SituationLost, "dog", nil, nil)
		assert.ErrorIs(t, svc.Delete(ctx, testutil.AnimalTypeID(t, db, "dog")), service.ErrCatalogInUse)
	})

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrCatalogNotFound)
}

func TestCatalogService_ReservedEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	situations := service.NewSituationService(repository.NewSituationRepository(db), zap.NewNop())
	businessTypes := service.NewBusinessTypeService(repository.NewBusinessTypeRepository(db), zap.NewNop())
	ctx := context.Background()

	resolved := testutil.SituationID(t, db, domain.SituationResolved)
	assert.ErrorIs(t, situations.Delete(ctx, resolved), service.ErrCatalogReserved)

	_, err := situations.Update(ctx, resolved, &domain.CatalogRequest{Code: "closed", Name: "Cerrado"})
	assert.ErrorIs(t, err, service.ErrCatalogReserved)

	renamed, err := situations.Update(ctx, resolved, &domain.CatalogRequest{Code: domain.SituationResolved, Name: "Resuelto"})
	require.NoError(t, err)
	assert.Equal(t, "Resuelto", renamed.Name)

	vet := testutil.BusinessTypeID(t, db, domain.BusinessTypeVeterinary)
	assert.ErrorIs(t, businessTypes.Delete(ctx, vet), service.ErrCatalogReserved)
	assert.NoError(t, businessTypes.Delete(ctx, testutil.BusinessTypeID(t, db, "pet_hotel")))
}
