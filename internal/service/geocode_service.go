package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/petsafe/petsafe-api/internal/metrics"
	"github.com/petsafe/petsafe-api/internal/repository"
	"go.uber.org/zap"
)

// RegeocodeResult summarizes one pass over the rows missing coordinates
type RegeocodeResult struct {
	Processed int
	Updated   int
	Failed    int
}

// pendingRow is an addressable row waiting for coordinates
type pendingRow struct {
	id      uuid.UUID
	address string
}

// GeocodeService fills in coordinates that could not be resolved on write
type GeocodeService struct {
	businessRepo *repository.BusinessRepository
	shelterRepo  *repository.ShelterRepository
	reportRepo   *repository.ReportRepository
	geocoder     geocoding.Geocoder
	logger       *zap.Logger
	now          func() time.Time
}

// NewGeocodeService creates a new geocode service instance
func NewGeocodeService(
	businessRepo *repository.BusinessRepository,
	shelterRepo *repository.ShelterRepository,
	reportRepo *repository.ReportRepository,
	geocoder geocoding.Geocoder,
	logger *zap.Logger,
) *GeocodeService {
	return &GeocodeService{
		businessRepo: businessRepo,
		shelterRepo:  shelterRepo,
		reportRepo:   reportRepo,
		geocoder:     geocoder,
		logger:       logger,
		now:          time.Now,
	}
}

// RegeocodePending geocodes up to batchSize rows of each kind. An unreachable
// geocoder ends the pass early; rows without a match are retried on later passes.
func (s *GeocodeService) RegeocodePending(ctx context.Context, batchSize int) (RegeocodeResult, error) {
	var result RegeocodeResult

	businesses, err := s.businessRepo.ListPendingGeocode(ctx, batchSize)
	if err != nil {
		return result, fmt.Errorf("failed to list pending businesses: %w", err)
	}
	rows := make([]pendingRow, len(businesses))
	for i, b := range businesses {
		rows[i] = pendingRow{id: b.ID, address: b.Address}
	}
	if err := s.process(ctx, "business", rows, s.businessRepo.UpdateCoordinates, &result); err != nil {
		return result, err
	}

	shelters, err := s.shelterRepo.ListPendingGeocode(ctx, batchSize)
	if err != nil {
		return result, fmt.Errorf("failed to list pending shelters: %w", err)
	}
	rows = make([]pendingRow, len(shelters))
	for i, sh := range shelters {
		rows[i] = pendingRow{id: sh.ID, address: sh.Address}
	}
	if err := s.process(ctx, "shelter", rows, s.shelterRepo.UpdateCoordinates, &result); err != nil {
		return result, err
	}

	reports, err := s.reportRepo.ListPendingGeocode(ctx, batchSize)
	if err != nil {
		return result, fmt.Errorf("failed to list pending reports: %w", err)
	}
	rows = make([]pendingRow, len(reports))
	for i, r := range reports {
		rows[i] = pendingRow{id: r.ID, address: r.Location}
	}
	if err := s.process(ctx, "report", rows, s.reportRepo.UpdateCoordinates, &result); err != nil {
		return result, err
	}

	return result, nil
}

type coordinateUpdater func(ctx context.Context, id uuid.UUID, coords repository.Coordinates, attemptedAt time.Time) error

func (s *GeocodeService) process(ctx context.Context, entity string, rows []pendingRow, update coordinateUpdater, result *RegeocodeResult) error {
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Processed++

		coords, err := geocodeAddress(ctx, s.geocoder, row.address)
		if err != nil && !errors.Is(err, ErrAddressNotFound) {
			result.Failed++
			metrics.RecordRegeocode(entity, false)
			return err
		}
		if updateErr := update(ctx, row.id, coords, s.now().UTC()); updateErr != nil {
			result.Failed++
			metrics.RecordRegeocode(entity, false)
			return fmt.Errorf("failed to store %s coordinates: %w", entity, updateErr)
		}

		if err != nil {
			result.Failed++
			metrics.RecordRegeocode(entity, false)
			s.logger.Info("address still not found",
				zap.String("entity", entity),
				zap.String("id", row.id.String()),
				zap.String("address", row.address))
			continue
		}
		result.Updated++
		metrics.RecordRegeocode(entity, true)
	}
	return nil
}
