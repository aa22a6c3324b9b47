package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/auth"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/storage"
)

// Field messages shared by several forms
const (
	msgRequired        = "This field is required"
	msgDateInFuture    = "Date cannot be in the future"
	msgInvalidDate     = "Must be a date in YYYY-MM-DD format"
	msgInvalidPhoto    = "Unknown photo, upload it first"
	msgEmailTaken      = "Email is already registered"
	msgTermsRequired   = "You must accept the terms and conditions"
	msgPasswordsDiffer = "Passwords do not match"
	msgPasswordTooLong = "Must be at most 72 bytes"
)

// currentAccount returns the id of the authenticated account
func currentAccount(ctx context.Context) (uuid.UUID, error) {
	user, ok := auth.FromContext(ctx)
	if !ok || !user.IsAccount() {
		return uuid.Nil, ErrUnauthorized
	}
	return user.UserID, nil
}

// parsePastDate parses a YYYY-MM-DD date that must not be after today in the
// server's local time zone. Failures are recorded on ve under field.
func parsePastDate(value, field string, now time.Time, ve *ValidationError) time.Time {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, msgRequired)
		return time.Time{}
	}
	date, err := time.ParseInLocation(domain.DateLayout, value, time.UTC)
	if err != nil {
		ve.Add(field, msgInvalidDate)
		return time.Time{}
	}
	if date.Format(domain.DateLayout) > now.In(time.Local).Format(domain.DateLayout) {
		ve.Add(field, msgDateInFuture)
	}
	return date
}

// parseClock normalizes an "H:MM" or "HH:MM" time of day to "HH:MM"
func parseClock(value string) (string, string) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 || parts[0] == "" || len(parts[1]) != 2 {
		return "", "Time must be in HH:MM format"
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) > 2 {
		return "", "Time must be in HH:MM format"
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "Time must be in HH:MM format"
	}
	if hour < 0 || hour > 23 {
		return "", "Hour must be between 00 and 23"
	}
	if minute < 0 || minute > 59 {
		return "", "Minutes must be between 00 and 59"
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), ""
}

// checkPhotoKey records an error when key is set but no uploaded photo is stored under it
func checkPhotoKey(ctx context.Context, store storage.Storage, key, field string, ve *ValidationError) error {
	if key == "" {
		return nil
	}
	if !storage.ValidKey(key) {
		ve.Add(field, msgInvalidPhoto)
		return nil
	}
	exists, err := store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check photo: %w", err)
	}
	if !exists {
		ve.Add(field, msgInvalidPhoto)
	}
	return nil
}

// checkPasswordLength records an error when password is too long to hash
func checkPasswordLength(password string, ve *ValidationError) {
	if len(password) > auth.MaxPasswordBytes {
		ve.Add("password", msgPasswordTooLong)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// geocodeAddress resolves an address to stored coordinates. ErrAddressNotFound
// is returned when the geocoder has no match.
func geocodeAddress(ctx context.Context, geocoder geocoding.Geocoder, address string) (repository.Coordinates, error) {
	loc, err := geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, geocoding.ErrNotFound) {
			return repository.Coordinates{}, ErrAddressNotFound
		}
		return repository.Coordinates{}, fmt.Errorf("%w: %v", ErrGeocodingUnavailable, err)
	}
	lat, lon := loc.Lat, loc.Lon
	return repository.Coordinates{Latitude: &lat, Longitude: &lon}, nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// paginated builds the list envelope shared by paginated endpoints
func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
