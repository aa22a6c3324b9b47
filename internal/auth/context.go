package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
)

// UserContext holds the authenticated caller
type UserContext struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Kind   domain.AccountKind
	// IsAdmin is set for callers authenticated with the admin API key
	IsAdmin bool
}

type contextKey string

const (
	userContextKey    contextKey = "userContext"
	callerRecorderKey contextKey = "callerRecorder"
)

// CallerRecorder receives the caller authenticated further down the handler
// chain so outer middleware, like request logging, can read it afterwards
type CallerRecorder struct {
	User *UserContext
}

// WithCallerRecorder installs a recorder filled by WithUserContext
func WithCallerRecorder(ctx context.Context) (context.Context, *CallerRecorder) {
	rec := &CallerRecorder{}
	return context.WithValue(ctx, callerRecorderKey, rec), rec
}

// SystemUserID identifies API key callers
var SystemUserID = uuid.Nil

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	if rec, ok := ctx.Value(callerRecorderKey).(*CallerRecorder); ok {
		rec.User = user
	}
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// IsAccount reports whether the caller is a real account rather than the API key
func (u *UserContext) IsAccount() bool {
	return u.UserID != SystemUserID
}
