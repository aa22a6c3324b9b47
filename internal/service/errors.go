package service

import (
	"errors"
	"sort"
	"strings"
)

// Common service errors
var (
	// ErrPermissionDenied is returned when the caller does not own the resource
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned when the caller is not an authenticated account
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserNotFound is returned when an account is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrAddressNotFound is returned when an address cannot be geocoded
	ErrAddressNotFound = errors.New("address not found")

	// ErrGeocodingUnavailable is returned when the geocoding service cannot be reached
	ErrGeocodingUnavailable = errors.New("geocoding service unavailable")
)

// ValidationError collects field errors so they are reported together
type ValidationError struct {
	Fields map[string]string
}

// Add records a message for a field, keeping the first one per field
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil returns the error when any field failed, nil otherwise
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
