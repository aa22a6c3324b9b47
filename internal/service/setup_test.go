package service_test

import (
	"context"
	"strings"
	"sync"

	"github.com/petsafe/petsafe-api/internal/auth"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/geocoding"
	"github.com/petsafe/petsafe-api/internal/mapper"
	"github.com/petsafe/petsafe-api/internal/testutil"
)

var testPhotos = mapper.PhotoURLs{BaseURL: "https://petsafe.test"}

var testStore = testutil.NewMemoryStorage()

// fakeGeocoder resolves the addresses it knows and reports the rest as not found
type fakeGeocoder struct {
	mu        sync.Mutex
	known     map[string]geocoding.Location
	err       error
	addresses []string
}

func newFakeGeocoder() *fakeGeocoder {
	return &fakeGeocoder{known: map[string]geocoding.Location{}}
}

func (f *fakeGeocoder) add(address string, lat, lon float64) *fakeGeocoder {
	f.known[strings.ToLower(address)] = geocoding.Location{Lat: lat, Lon: lon}
	return f
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (geocoding.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses = append(f.addresses, address)
	if f.err != nil {
		return geocoding.Location{}, f.err
	}
	loc, ok := f.known[strings.ToLower(address)]
	if !ok {
		return geocoding.Location{}, geocoding.ErrNotFound
	}
	return loc, nil
}

func (f *fakeGeocoder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.addresses)
}

func accountContext(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Kind:   user.Kind,
	})
}

func adminContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:  auth.SystemUserID,
		Name:    "API Key",
		IsAdmin: true,
	})
}
