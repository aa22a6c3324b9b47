package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/petsafe/petsafe-api/internal/domain"
	"go.uber.org/zap"
)

// Middleware handles authentication for HTTP requests
type Middleware struct {
	tokens *TokenManager
	apiKey string
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(tokens *TokenManager, apiKey string, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		apiKey: apiKey,
		logger: logger,
	}
}

// apiKeyUser is the caller created for requests carrying a valid admin API key
func apiKeyUser() *UserContext {
	return &UserContext{
		UserID:  SystemUserID,
		Name:    "System",
		Email:   "system@petsafe.local",
		IsAdmin: true,
	}
}

// resolve authenticates the request. ok is false when no credentials were sent.
func (m *Middleware) resolve(r *http.Request) (user *UserContext, ok bool, err error) {
	if key := r.Header.Get("x-api-key"); key != "" {
		if !m.validateAPIKey(key) {
			return nil, true, ErrInvalidToken
		}
		return apiKeyUser(), true, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, true, ErrInvalidToken
	}

	user, err = m.tokens.ValidateToken(parts[1])
	return user, true, err
}

// Authenticate rejects requests without a valid bearer token or API key
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, sent, err := m.resolve(r)
		if !sent {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		if err != nil {
			m.logger.Warn("authentication failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("path", r.URL.Path),
			zap.String("user_id", user.UserID.String()),
			zap.Bool("api_key", user.IsAdmin),
		)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
	})
}

// OptionalAuthenticate attaches the caller when credentials are valid and
// otherwise continues unauthenticated
func (m *Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, sent, err := m.resolve(r)
		if sent && err == nil {
			r = r.WithContext(WithUserContext(r.Context(), user))
		} else if sent {
			m.logger.Debug("optional auth: invalid credentials, continuing unauthenticated",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAccount rejects API key callers on endpoints that act on the caller's own data
func (m *Middleware) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !user.IsAccount() {
			writeError(w, http.StatusForbidden, "this endpoint requires a user account")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin ensures the caller used the admin API key
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !user.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func writeError(w http.ResponseWriter, status int, detail string) {
	errType := domain.ErrorTypeUnauthorized
	if status == http.StatusForbidden {
		errType = domain.ErrorTypeForbidden
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
