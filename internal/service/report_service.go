package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/auth"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/petsafe/petsafe-api/internal/mapper"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrReportNotFound is returned when a report is not found
var ErrReportNotFound = errors.New("report not found")

const msgAddressNotFound = "Address not found, check street, number and city"

// ReportListParams are the query options of the report listing
type ReportListParams struct {
	SituationCode  string
	AnimalTypeCode string
	// Mine keeps only the caller's reports
	Mine     bool
	Page     int
	PageSize int
}

// ReportService handles lost, found and in-adoption animal reports
type ReportService struct {
	db             *gorm.DB
	reportRepo     *repository.ReportRepository
	animalRepo     *repository.AnimalRepository
	situationRepo  *repository.SituationRepository
	animalTypeRepo *repository.AnimalTypeRepository
	geocoder       geocoding.Geocoder
	storage        storage.Storage
	photos         mapper.PhotoURLs
	logger         *zap.Logger
	now            func() time.Time
}

// NewReportService creates a new report service instance
func NewReportService(
	db *gorm.DB,
	reportRepo *repository.ReportRepository,
	animalRepo *repository.AnimalRepository,
	situationRepo *repository.SituationRepository,
	animalTypeRepo *repository.AnimalTypeRepository,
	geocoder geocoding.Geocoder,
	store storage.Storage,
	photos mapper.PhotoURLs,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		db:             db,
		reportRepo:     reportRepo,
		animalRepo:     animalRepo,
		situationRepo:  situationRepo,
		animalTypeRepo: animalTypeRepo,
		geocoder:       geocoder,
		storage:        store,
		photos:         photos,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *ReportService) lookupSituation(ctx context.Context, id uint, ve *ValidationError) (*domain.Situation, error) {
	situation, err := s.situationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ve.Add("situationId", "Unknown situation")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get situation: %w", err)
	}
	return situation, nil
}

// locate geocodes the address of a report form. A missing match is a field error.
func (s *ReportService) locate(ctx context.Context, address string, ve *ValidationError) (repository.Coordinates, error) {
	coords, err := geocodeAddress(ctx, s.geocoder, address)
	if errors.Is(err, ErrAddressNotFound) {
		ve.Add("address", msgAddressNotFound)
		return coords, nil
	}
	return coords, err
}

// Create registers an animal and publishes its report
func (s *ReportService) Create(ctx context.Context, req *domain.CreateReportRequest) (*domain.ReportDTO, error) {
	reporterID, err := currentAccount(ctx)
	if err != nil {
		return nil, err
	}

	ve := &ValidationError{}
	situation, err := s.lookupSituation(ctx, req.SituationID, ve)
	if err != nil {
		return nil, err
	}
	animalType, err := s.animalTypeRepo.GetByID(ctx, req.AnimalTypeID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get animal type: %w", err)
		}
		ve.Add("animalTypeId", "Unknown animal type")
	}
	date := parsePastDate(req.Date, "date", s.now(), ve)
	if req.PhotoKey == "" {
		ve.Add("photoKey", msgRequired)
	}
	if err := checkPhotoKey(ctx, s.storage, req.PhotoKey, "photoKey", ve); err != nil {
		return nil, err
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	location := mapper.ComposeAddress(req.Street, req.Number, req.City)
	coords, err := s.locate(ctx, location, ve)
	if err != nil {
		return nil, err
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	attemptedAt := s.now().UTC()

	animal := &domain.Animal{
		SituationID:  situation.ID,
		AnimalTypeID: animalType.ID,
		Description:  strings.TrimSpace(req.Description),
		Date:         date,
		PhotoKey:     req.PhotoKey,
	}
	report := &domain.Report{
		UserID:       reporterID,
		Location:     location,
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		Latitude:     coords.Latitude,
		Longitude:    coords.Longitude,
		GeocodedAt:   &attemptedAt,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.animalRepo.WithTx(tx).Create(ctx, animal); err != nil {
			return fmt.Errorf("failed to create animal: %w", err)
		}
		report.AnimalID = animal.ID
		if err := s.reportRepo.WithTx(tx).Create(ctx, report); err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("report created",
		zap.String("report_id", report.ID.String()),
		zap.String("situation", situation.Code),
		zap.String("animal_type", animalType.Code))

	return s.GetByID(ctx, report.ID)
}

// List returns a page of reports, newest first
func (s *ReportService) List(ctx context.Context, params ReportListParams) (*domain.PaginatedResponse, error) {
	filters := &repository.ReportFilters{
		SituationCode:  params.SituationCode,
		AnimalTypeCode: params.AnimalTypeCode,
	}
	if params.Mine {
		reporterID, err := currentAccount(ctx)
		if err != nil {
			return nil, err
		}
		filters.ReporterID = &reporterID
	}

	page, pageSize := repository.NormalizePagination(params.Page, params.PageSize)
	reports, total, err := s.reportRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	dtos := make([]domain.ReportDTO, len(reports))
	for i := range reports {
		dtos[i] = mapper.ToReportDTO(&reports[i], s.photos)
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *ReportService) get(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// GetByID returns a report with its animal and reporter
func (s *ReportService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDTO, error) {
	report, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToReportDTO(report, s.photos)
	return &dto, nil
}

// Update edits a report. Only the reporter may change it.
func (s *ReportService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateReportRequest) (*domain.ReportDTO, error) {
	reporterID, err := currentAccount(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.UserID != reporterID {
		return nil, ErrPermissionDenied
	}

	ve := &ValidationError{}
	situation, err := s.lookupSituation(ctx, req.SituationID, ve)
	if err != nil {
		return nil, err
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if req.Street != "" && req.Number != "" && req.City != "" {
		location := mapper.ComposeAddress(req.Street, req.Number, req.City)
		if location != report.Location {
			coords, err := s.locate(ctx, location, ve)
			if err != nil {
				return nil, err
			}
			if err := ve.OrNil(); err != nil {
				return nil, err
			}
			attemptedAt := s.now().UTC()
			report.Location = location
			report.Latitude, report.Longitude, report.GeocodedAt = coords.Latitude, coords.Longitude, &attemptedAt
		}
	}

	animal := report.Animal
	if animal == nil {
		return nil, fmt.Errorf("report %s has no animal", report.ID)
	}
	animal.SituationID = situation.ID
	animal.Situation = situation
	animal.Description = strings.TrimSpace(req.Description)
	report.ContactPhone = strings.TrimSpace(req.ContactPhone)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.animalRepo.WithTx(tx).Update(ctx, animal); err != nil {
			return fmt.Errorf("failed to update animal: %w", err)
		}
		if err := s.reportRepo.WithTx(tx).Update(ctx, report); err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("report updated",
		zap.String("report_id", report.ID.String()),
		zap.String("situation", situation.Code))

	dto := mapper.ToReportDTO(report, s.photos)
	return &dto, nil
}

// Delete removes a report and its animal. The reporter and the admin key may delete.
func (s *ReportService) Delete(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	report, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !userCtx.IsAdmin && report.UserID != userCtx.UserID {
		return ErrPermissionDenied
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reportRepo.WithTx(tx).Delete(ctx, report.ID); err != nil {
			return fmt.Errorf("failed to delete report: %w", err)
		}
		if err := s.animalRepo.WithTx(tx).Delete(ctx, report.AnimalID); err != nil {
			return fmt.Errorf("failed to delete animal: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("report deleted",
		zap.String("report_id", report.ID.String()),
		zap.String("user_id", userCtx.UserID.String()))
	return nil
}
