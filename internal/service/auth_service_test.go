package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/petsafe/petsafe-api/internal/auth"
	"github.com/petsafe/petsafe-api/internal/config"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/service"
	"github.com/petsafe/petsafe-api/internal/storage"
	"github.com/petsafe/petsafe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createAuthService(db *gorm.DB, geocoder *fakeGeocoder) (*service.AuthService, *auth.TokenManager) {
	tokens := auth.NewTokenManager(&config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 60, Issuer: "petsafe-test"})
	svc := service.NewAuthService(
		db,
		repository.NewUserRepository(db),
		repository.NewPersonRepository(db),
		repository.NewBusinessRepository(db),
		repository.NewShelterRepository(db),
		repository.NewBusinessTypeRepository(db),
		tokens,
		geocoder,
		testStore,
		testPhotos,
		zap.NewNop(),
	)
	return svc, tokens
}

func accountFields(email string) domain.AccountFields {
	return domain.AccountFields{
		Email:           email,
		Phone:           "600111222",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		AcceptTerms:     true,
		PhotoKey:        testStore.PutPhoto(".jpg"),
	}
}

func personRequest(email string) *domain.RegisterPersonRequest {
	return &domain.RegisterPersonRequest{
		AccountFields: accountFields(email),
		Name:          "lucia",
		FirstName:     "Lucía",
		LastNames:     "Martínez Soler",
		BirthDate:     "1992-07-21",
	}
}

func TestAuthService_RegisterPersonAndLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, tokens := createAuthService(db, newFakeGeocoder())
	ctx := context.Background()

	profile, err := svc.RegisterPerson(ctx, personRequest("Lucia@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, "lucia@example.com", profile.User.Email)
	assert.Equal(t, domain.AccountKindPerson, profile.User.Kind)
	require.NotNil(t, profile.Person)
	assert.Equal(t, "1992-07-21", profile.Person.BirthDate)
	assert.Contains(t, profile.User.PhotoURL, "https://petsafe.test/api/v1/photos/")

	t.Run("login with registered credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, &domain.LoginRequest{Email: "LUCIA@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, profile.User.ID, resp.User.ID)

		userCtx, err := tokens.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, profile.User.ID, userCtx.UserID)
		assert.Equal(t, domain.AccountKindPerson, userCtx.Kind)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "lucia@example.com", Password: "nope"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("email already registered", func(t *testing.T) {
		_, err := svc.RegisterPerson(ctx, personRequest("lucia@EXAMPLE.com"))
		var ve *service.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "email")
	})
}

func TestAuthService_RegisterPerson_CollectsFieldErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _ := createAuthService(db, newFakeGeocoder())

	req := personRequest("ana@example.com")
	req.ConfirmPassword = "different"
	req.AcceptTerms = false
	req.BirthDate = time.Now().AddDate(0, 0, 2).Format(domain.DateLayout)
	req.PhotoKey = "../../etc/passwd"

	_, err := svc.RegisterPerson(context.Background(), req)
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 4)
	assert.Contains(t, ve.Fields, "confirmPassword")
	assert.Contains(t, ve.Fields, "acceptTerms")
	assert.Contains(t, ve.Fields, "birthDate")
	assert.Contains(t, ve.Fields, "photoKey")

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthService_RegisterPerson_TodayIsAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _ := createAuthService(db, newFakeGeocoder())

	req := personRequest("today@example.com")
	req.BirthDate = time.Now().Format(domain.DateLayout)
	_, err := svc.RegisterPerson(context.Background(), req)
	assert.NoError(t, err)
}

func TestAuthService_RegisterBusiness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	geocoder := newFakeGeocoder().add("Calle de la Paz, 5, Valencia", 39.4737, -0.3732)
	svc, _ := createAuthService(db, geocoder)
	ctx := context.Background()

	t.Run("geocoded veterinarian", func(t *testing.T) {
		profile, err := svc.RegisterBusiness(ctx, &domain.RegisterBusinessRequest{
			AccountFields:  accountFields("clinica@example.com"),
			Name:           "Clínica Veterinaria Paz",
			Description:    "Urgencias 24h",
			Address:        "Calle de la Paz, 5, Valencia",
			BusinessTypeID: testutil.BusinessTypeID(t, db, domain.BusinessTypeVeterinary),
		})
		require.NoError(t, err)
		require.NotNil(t, profile.Business)
		assert.True(t, profile.Business.IsVeterinary)
		assert.Equal(t, "clinica@example.com", profile.Business.Email)
		require.NotNil(t, profile.Business.Latitude)
		assert.InDelta(t, 39.4737, *profile.Business.Latitude, 1e-9)
		assert.Zero(t, profile.Business.Rating)
	})

	t.Run("unresolved address is left pending", func(t *testing.T) {
		profile, err := svc.RegisterBusiness(ctx, &domain.RegisterBusinessRequest{
			AccountFields:  accountFields("tienda@example.com"),
			Name:           "Tienda Guau",
			Description:    "Piensos",
			Address:        "Calle Inventada, 99, Valencia",
			BusinessTypeID: testutil.BusinessTypeID(t, db, "pet_shop"),
		})
		require.NoError(t, err)
		assert.Nil(t, profile.Business.Latitude)

		var stored domain.Business
		require.NoError(t, db.First(&stored, "id = ?", profile.Business.ID).Error)
		assert.Nil(t, stored.Latitude)
		assert.NotNil(t, stored.GeocodedAt)
	})

	t.Run("unknown business type", func(t *testing.T) {
		_, err := svc.RegisterBusiness(ctx, &domain.RegisterBusinessRequest{
			AccountFields:  accountFields("otro@example.com"),
			Name:           "Otro",
			Description:    "Otro",
			Address:        "Calle de la Paz, 5, Valencia",
			BusinessTypeID: 999,
		})
		var ve *service.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "businessTypeId")
	})
}

func TestAuthService_RegisterShelter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	geocoder := newFakeGeocoder().add("Camino de Moncada, 20, Valencia", 39.49, -0.38)
	svc, _ := createAuthService(db, geocoder)

	profile, err := svc.RegisterShelter(context.Background(), &domain.RegisterShelterRequest{
		AccountFields: accountFields("protectora@example.com"),
		Name:          "Protectora Huellas",
		Description:   "Adopciones todos los sábados",
		Address:       "Camino de Moncada, 20, Valencia",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountKindShelter, profile.User.Kind)
	require.NotNil(t, profile.Shelter)
	assert.Equal(t, "Protectora Huellas", profile.Shelter.Name)
	assert.NotNil(t, profile.Shelter.Latitude)
	assert.Equal(t, 1, geocoder.calls())
}

func TestAuthService_RegisterPerson_PasswordTooLong(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _ := createAuthService(db, newFakeGeocoder())

	for name, password := range map[string]string{
		"ascii":     strings.Repeat("x", 80),
		"multibyte": strings.Repeat("ñ", 40),
	} {
		t.Run(name, func(t *testing.T) {
			req := personRequest(name + "@example.com")
			req.Password = password
			req.ConfirmPassword = password

			_, err := svc.RegisterPerson(context.Background(), req)
			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, "password")
		})
	}
}

func TestAuthService_RegisterPerson_PhotoMustBeUploaded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _ := createAuthService(db, newFakeGeocoder())

	req := personRequest("sinfoto@example.com")
	req.PhotoKey = storage.NewKey(".jpg")

	_, err := svc.RegisterPerson(context.Background(), req)
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, map[string]string{"photoKey": "Unknown photo, upload it first"}, ve.Fields)
}

func TestAuthService_RegisterBusiness_OutageIsNotAnAttempt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	geocoder := newFakeGeocoder()
	geocoder.err = errors.New("connection refused")
	svc, _ := createAuthService(db, geocoder)

	profile, err := svc.RegisterBusiness(context.Background(), &domain.RegisterBusinessRequest{
		AccountFields:  accountFields("caida@example.com"),
		Name:           "Clínica Norte",
		Description:    "Urgencias",
		Address:        "Avenida del Puerto, 8, Valencia",
		BusinessTypeID: testutil.BusinessTypeID(t, db, "veterinary"),
	})
	require.NoError(t, err)

	var stored domain.Business
	require.NoError(t, db.First(&stored, "id = ?", profile.Business.ID).Error)
	assert.Nil(t, stored.Latitude)
	assert.Nil(t, stored.GeocodedAt)
}
