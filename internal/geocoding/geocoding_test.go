package geocoding_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petsafe/petsafe-api/internal/config"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryCache struct {
	mu    sync.Mutex
	items map[string]geocoding.Location
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string]geocoding.Location{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (geocoding.Location, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.items[key]
	return loc, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, loc geocoding.Location, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = loc
	return nil
}

func newNominatim(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(baseURL string, cache geocoding.Cache) *geocoding.Client {
	return geocoding.NewClient(&config.GeocodingConfig{
		BaseURL:           baseURL,
		UserAgent:         "PetSafe",
		RequestsPerSecond: 1000,
		Timeout:           5,
		CacheTTL:          1,
	}, cache, zap.NewNop())
}

func TestClient_Geocode_Found(t *testing.T) {
	srv := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Calle Colón, 1, Valencia", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "PetSafe", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"place_id":1,"lat":"39.4699075","lon":"-0.3762881","display_name":"Valencia"}]`))
	})

	loc, err := newClient(srv.URL, nil).Geocode(context.Background(), "Calle Colón, 1, Valencia")
	require.NoError(t, err)
	assert.InDelta(t, 39.4699075, loc.Lat, 1e-9)
	assert.InDelta(t, -0.3762881, loc.Lon, 1e-9)
}

func TestClient_Geocode_EmptyResultIsNotFound(t *testing.T) {
	srv := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := newClient(srv.URL, nil).Geocode(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, geocoding.ErrNotFound)
}

func TestClient_Geocode_BlankAddress(t *testing.T) {
	_, err := newClient("http://127.0.0.1:0", nil).Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, geocoding.ErrNotFound)
}

func TestClient_Geocode_ServerError(t *testing.T) {
	srv := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := newClient(srv.URL, nil).Geocode(context.Background(), "Valencia")
	require.Error(t, err)
	assert.NotErrorIs(t, err, geocoding.ErrNotFound)
}

func TestClient_Geocode_InvalidPayload(t *testing.T) {
	for _, body := range []string{`not json`, `{"error":"x"}`, `[{"lat":"abc","lon":"1"}]`} {
		srv := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		_, err := newClient(srv.URL, nil).Geocode(context.Background(), "Valencia")
		assert.Error(t, err, body)
		assert.NotErrorIs(t, err, geocoding.ErrNotFound, body)
	}
}

func TestClient_Geocode_UsesCache(t *testing.T) {
	var calls int32
	srv := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`[{"lat":"40.0","lon":"-3.0"}]`))
	})
	client := newClient(srv.URL, newMemoryCache())

	first, err := client.Geocode(context.Background(), "Gran Vía, 1, Madrid")
	require.NoError(t, err)
	second, err := client.Geocode(context.Background(), "  gran vía,  1, MADRID ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Geocode_ContextCancelled(t *testing.T) {
	srv := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(srv.URL, nil).Geocode(ctx, "Valencia")
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, geocoding.CacheKey("Calle  Mayor, 3,Valencia"), geocoding.CacheKey(" calle mayor, 3,valencia "))
	assert.NotEqual(t, geocoding.CacheKey("Calle Mayor, 3"), geocoding.CacheKey("Calle Mayor, 4"))
}

func TestNewRedisCache_DisabledWithoutAddress(t *testing.T) {
	cache, err := geocoding.NewRedisCache(context.Background(), &config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, cache)
}
