package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/petsafe/petsafe-api/internal/config"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/petsafe/petsafe-api/internal/mapper"
	"github.com/petsafe/petsafe-api/internal/repository"
	"go.uber.org/zap"
)

// MapService aggregates the stored coordinates drawn on the map page
type MapService struct {
	reportRepo   *repository.ReportRepository
	businessRepo *repository.BusinessRepository
	shelterRepo  *repository.ShelterRepository
	geocoder     geocoding.Geocoder
	cfg          config.MapConfig
	photos       mapper.PhotoURLs
	logger       *zap.Logger
}

// NewMapService creates a new map service instance
func NewMapService(
	reportRepo *repository.ReportRepository,
	businessRepo *repository.BusinessRepository,
	shelterRepo *repository.ShelterRepository,
	geocoder geocoding.Geocoder,
	cfg config.MapConfig,
	photos mapper.PhotoURLs,
	logger *zap.Logger,
) *MapService {
	return &MapService{
		reportRepo:   reportRepo,
		businessRepo: businessRepo,
		shelterRepo:  shelterRepo,
		geocoder:     geocoder,
		cfg:          cfg,
		photos:       photos,
		logger:       logger,
	}
}

// Markers returns the default view and every geocoded marker. Rows still
// pending geocoding are left out.
func (s *MapService) Markers(ctx context.Context) (*domain.MapMarkersResponse, error) {
	reports, err := s.reportRepo.ListForMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list report markers: %w", err)
	}
	locales, err := s.businessRepo.ListGeocoded(ctx, &repository.BusinessFilters{ExcludeTypeCode: domain.BusinessTypeVeterinary})
	if err != nil {
		return nil, fmt.Errorf("failed to list business markers: %w", err)
	}
	vets, err := s.businessRepo.ListGeocoded(ctx, &repository.BusinessFilters{TypeCode: domain.BusinessTypeVeterinary})
	if err != nil {
		return nil, fmt.Errorf("failed to list veterinarian markers: %w", err)
	}
	shelters, err := s.shelterRepo.ListGeocoded(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shelter markers: %w", err)
	}

	resp := &domain.MapMarkersResponse{
		Map: domain.MapView{
			Lat:  s.cfg.DefaultLat,
			Lon:  s.cfg.DefaultLon,
			Zoom: s.cfg.DefaultZoom,
		},
		Reports:      make([]domain.ReportMarker, 0, len(reports)),
		Locales:      make([]domain.PlaceMarker, 0, len(locales)),
		Veterinarios: make([]domain.PlaceMarker, 0, len(vets)),
		Protectoras:  make([]domain.PlaceMarker, 0, len(shelters)),
	}
	for i := range reports {
		resp.Reports = append(resp.Reports, mapper.ToReportMarker(&reports[i], s.photos))
	}
	for i := range locales {
		resp.Locales = append(resp.Locales, mapper.ToBusinessMarker(&locales[i], s.photos))
	}
	for i := range vets {
		resp.Veterinarios = append(resp.Veterinarios, mapper.ToBusinessMarker(&vets[i], s.photos))
	}
	for i := range shelters {
		resp.Protectoras = append(resp.Protectoras, mapper.ToShelterMarker(&shelters[i], s.photos))
	}
	return resp, nil
}

// Search geocodes an address and returns the view centered on it
func (s *MapService) Search(ctx context.Context, address string) (*domain.MapView, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		ve := &ValidationError{}
		ve.Add("address", msgRequired)
		return nil, ve
	}
	coords, err := geocodeAddress(ctx, s.geocoder, address)
	if err != nil {
		return nil, err
	}
	return &domain.MapView{
		Lat:  *coords.Latitude,
		Lon:  *coords.Longitude,
		Zoom: s.cfg.SearchZoom,
	}, nil
}
