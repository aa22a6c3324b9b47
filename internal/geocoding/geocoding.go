// Package geocoding resolves postal addresses to coordinates through a
// Nominatim-compatible search endpoint.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/petsafe/petsafe-api/internal/config"
	"github.com/petsafe/petsafe-api/internal/metrics"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the service has no match for the address
var ErrNotFound = errors.New("address not found")

// Location is a resolved latitude/longitude pair
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocoder resolves an address to a location
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}

// Client queries Nominatim with an outbound throttle and an optional cache
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewClient builds a client from configuration. cache may be nil.
func NewClient(cfg *config.GeocodingConfig, cache Cache, logger *zap.Logger) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	timeout := cfg.TimeoutDuration()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cache == nil {
		cache = NoopCache{}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "PetSafe"
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		cache:      cache,
		cacheTTL:   cfg.CacheTTLDuration(),
		logger:     logger,
	}
}

// Geocode returns the first match for address, or ErrNotFound
func (c *Client) Geocode(ctx context.Context, address string) (Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Location{}, ErrNotFound
	}

	key := CacheKey(address)
	if loc, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("geocode cache read failed", zap.String("address", address), zap.Error(err))
	} else if ok {
		metrics.RecordGeocode(metrics.GeocodeCacheHit)
		return loc, nil
	}

	start := time.Now()
	loc, err := c.search(ctx, address)
	metrics.ObserveGeocodeDuration(time.Since(start))

	switch {
	case errors.Is(err, ErrNotFound):
		metrics.RecordGeocode(metrics.GeocodeNotFound)
		return Location{}, err
	case err != nil:
		metrics.RecordGeocode(metrics.GeocodeError)
		c.logger.Warn("geocoding request failed", zap.String("address", address), zap.Error(err))
		return Location{}, err
	}

	metrics.RecordGeocode(metrics.GeocodeFound)
	if err := c.cache.Set(ctx, key, loc, c.cacheTTL); err != nil {
		c.logger.Warn("geocode cache write failed", zap.String("address", address), zap.Error(err))
	}
	return loc, nil
}

func (c *Client) search(ctx context.Context, address string) (Location, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Location{}, fmt.Errorf("geocoding throttle: %w", err)
	}

	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to build geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Location{}, fmt.Errorf("failed to read geocoding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	return parseSearchResponse(body)
}

// parseSearchResponse reads the first result of a Nominatim search. Nominatim
// returns coordinates as strings.
func parseSearchResponse(body []byte) (Location, error) {
	if !gjson.ValidBytes(body) {
		return Location{}, errors.New("geocoding service returned invalid JSON")
	}
	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return Location{}, errors.New("geocoding service returned an unexpected payload")
	}

	first := result.Get("0")
	if !first.Exists() {
		return Location{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(first.Get("lat").String(), 64)
	if err != nil {
		return Location{}, fmt.Errorf("invalid latitude in geocoding response: %w", err)
	}
	lon, err := strconv.ParseFloat(first.Get("lon").String(), 64)
	if err != nil {
		return Location{}, fmt.Errorf("invalid longitude in geocoding response: %w", err)
	}
	return Location{Lat: lat, Lon: lon}, nil
}
