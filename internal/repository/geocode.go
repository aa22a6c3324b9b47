package repository

import (
	"time"

	"gorm.io/gorm"
)

// Coordinates is the geocoding result stored on an addressable row. Nil values
// record a failed attempt.
type Coordinates struct {
	Latitude  *float64
	Longitude *float64
}

func coordinateUpdates(c Coordinates, attemptedAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"latitude":    c.Latitude,
		"longitude":   c.Longitude,
		"geocoded_at": attemptedAt,
	}
}

// pendingGeocode selects rows without coordinates, never-attempted rows first
// and then the longest-waiting ones.
func pendingGeocode(query *gorm.DB, limit int) *gorm.DB {
	return query.
		Where("latitude IS NULL OR longitude IS NULL").
		Order("geocoded_at IS NOT NULL, geocoded_at ASC, created_at ASC").
		Limit(limit)
}

func geocoded(query *gorm.DB) *gorm.DB {
	return query.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
}
