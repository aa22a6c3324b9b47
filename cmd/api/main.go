package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petsafe/petsafe-api/docs"
	"github.com/petsafe/petsafe-api/internal/auth"
	"github.com/petsafe/petsafe-api/internal/config"
	"github.com/petsafe/petsafe-api/internal/database"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/petsafe/petsafe-api/internal/http/handler"
	"github.com/petsafe/petsafe-api/internal/http/middleware"
	"github.com/petsafe/petsafe-api/internal/http/router"
	"github.com/petsafe/petsafe-api/internal/jobs"
	"github.com/petsafe/petsafe-api/internal/logger"
	"github.com/petsafe/petsafe-api/internal/mapper"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/service"
	"github.com/petsafe/petsafe-api/internal/storage"
	"github.com/petsafe/petsafe-api/web"
	"go.uber.org/zap"
)

// @title PetSafe API
// @version 1.0
// @description Lost, found and adoptable animals, the pet services directory, the map and the personal agenda

// @contact.name API Support
// @contact.email soporte@petsafe.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description Admin API key

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// In staging/production secrets may come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)
	if cfg.App.PublicURL != "" {
		docs.SwaggerInfo.Host = hostOf(cfg.App.PublicURL)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		log.Warn("Running gorm AutoMigrate, use cmd/migrate outside development")
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
	}
	if err := database.SeedCatalogs(ctx, db); err != nil {
		return fmt.Errorf("failed to seed catalogs: %w", err)
	}

	photoStore, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	var cache geocoding.Cache = geocoding.NoopCache{}
	redisCache, err := geocoding.NewRedisCache(ctx, &cfg.Redis)
	if err != nil {
		// geocoding works without the cache
		log.Warn("Redis unavailable, geocoding cache disabled", zap.Error(err))
	} else if redisCache != nil {
		cache = redisCache
		defer func() { _ = redisCache.Close() }()
		log.Info("Geocoding cache enabled", zap.String("redis", cfg.Redis.Address))
	}
	geocoder := geocoding.NewClient(&cfg.Geocoding, cache, log)

	photos := mapper.PhotoURLs{BaseURL: cfg.App.PublicURL}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	personRepo := repository.NewPersonRepository(db)
	businessRepo := repository.NewBusinessRepository(db)
	shelterRepo := repository.NewShelterRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	animalRepo := repository.NewAnimalRepository(db)
	reportRepo := repository.NewReportRepository(db)
	situationRepo := repository.NewSituationRepository(db)
	animalTypeRepo := repository.NewAnimalTypeRepository(db)
	businessTypeRepo := repository.NewBusinessTypeRepository(db)

	// Services
	tokens := auth.NewTokenManager(&cfg.Auth)
	authService := service.NewAuthService(db, userRepo, personRepo, businessRepo, shelterRepo, businessTypeRepo, tokens, geocoder, photoStore, photos, log)
	userService := service.NewUserService(db, userRepo, personRepo, businessRepo, shelterRepo, businessTypeRepo, geocoder, photoStore, photos, log)
	appointmentService := service.NewAppointmentService(appointmentRepo, log)
	reportService := service.NewReportService(db, reportRepo, animalRepo, situationRepo, animalTypeRepo, geocoder, photoStore, photos, log)
	directoryService := service.NewDirectoryService(businessRepo, shelterRepo, photos, log)
	mapService := service.NewMapService(reportRepo, businessRepo, shelterRepo, geocoder, cfg.Map, photos, log)
	photoService := service.NewPhotoService(photoStore, cfg.Storage.MaxUploadSizeMB*1024*1024, photos, log)
	geocodeService := service.NewGeocodeService(businessRepo, shelterRepo, reportRepo, geocoder, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, cfg.ApiKey.Value, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, authMiddleware, rateLimiter, router.Handlers{
		Health:        handler.NewHealthHandler(db, log),
		Auth:          handler.NewAuthHandler(authService, log),
		User:          handler.NewUserHandler(userService, log),
		Appointment:   handler.NewAppointmentHandler(appointmentService, log),
		Report:        handler.NewReportHandler(reportService, log),
		Directory:     handler.NewDirectoryHandler(directoryService, log),
		Map:           handler.NewMapHandler(mapService, web.Assets, log),
		Photo:         handler.NewPhotoHandler(photoService, cfg.Storage.MaxUploadSizeMB, log),
		Situations:    handler.NewCatalogHandler("situations", service.NewSituationService(situationRepo, log), log),
		AnimalTypes:   handler.NewCatalogHandler("animal-types", service.NewAnimalTypeService(animalTypeRepo, log), log),
		BusinessTypes: handler.NewCatalogHandler("business-types", service.NewBusinessTypeService(businessTypeRepo, log), log),
	})

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.RegeocodeEnabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterRegeocodeJob(scheduler, geocodeService, cfg.Jobs.RegeocodeCron, cfg.Jobs.RegeocodeBatchSize, log); err != nil {
			log.Error("Failed to register regeocode job", zap.Error(err))
		} else {
			scheduler.Start()
		}
	} else {
		log.Info("Regeocode job disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           rt.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		log.Info("Server stopped gracefully")
	}

	return nil
}

// hostOf returns the host[:port] of a public URL
func hostOf(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Host == "" {
		return publicURL
	}
	return u.Host
}
