package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/repository"
)

// Principal is the authenticated identity derived from a validated token:
// the account's current ID, name, email and role as read from the store on
// this request.
//
// The principal is passed to handlers as an explicit argument (see Handler)
// rather than being stashed in the request context — no ambient
// request-scoped state, and a handler's signature tells you whether it runs
// authenticated.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  model.Role
}

// Handler is an http handler that additionally receives the authenticated
// principal.
type Handler func(w http.ResponseWriter, r *http.Request, principal Principal)

// Middleware turns bearer tokens into principals.
//
// Every protected request pays one user lookup: the token is trusted only
// for identity, and the current role/name are re-read so role changes or
// account deletion take effect immediately instead of living on in a token
// minted 30 days ago.
type Middleware struct {
	tokens *TokenService
	users  repository.UserRepository
	logger *slog.Logger
}

// NewMiddleware creates the auth middleware with its dependencies.
func NewMiddleware(tokens *TokenService, users repository.UserRepository, logger *slog.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// Require wraps next so it only runs for an authenticated request.
//
// Failure modes, all 401:
//   - missing/blank Authorization header → "no token"
//   - bad signature, expired, malformed  → "token failed"
//   - valid token, account gone          → "user not found"
func (m *Middleware) Require(next Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.authenticate(r)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		next(w, r, principal)
	}
}

// RequireRole wraps next so it only runs for an authenticated request whose
// account currently holds the given role. Role mismatch is 403.
func (m *Middleware) RequireRole(role model.Role, next Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.authenticate(r)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		if principal.Role != role {
			writeAuthError(w, apperror.Forbidden("الوصول مرفوض - صلاحيات غير كافية"))
			return
		}
		next(w, r, principal)
	}
}

// authenticate extracts the bearer token, validates it, and re-reads the
// account record to build the principal.
func (m *Middleware) authenticate(r *http.Request) (Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer") {
		return Principal{}, apperror.Unauthorized("Not authorized, no token")
	}

	tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	if tokenStr == "" {
		return Principal{}, apperror.Unauthorized("Not authorized, no token provided")
	}

	accountID, err := m.tokens.Validate(tokenStr)
	if err != nil {
		m.logger.Warn("token validation failed", slog.String("error", err.Error()))
		return Principal{}, apperror.Unauthorized("Not authorized, token failed")
	}

	user, err := m.users.GetByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return Principal{}, apperror.Unauthorized("Not authorized, user not found")
		}
		m.logger.Error("auth user lookup failed",
			slog.String("userID", accountID),
			slog.String("error", err.Error()),
		)
		return Principal{}, err
	}

	return Principal{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

// writeAuthError writes an auth failure in the same JSON shape the handler
// package uses. Duplicated here (rather than importing handler) to keep the
// dependency direction handler → auth.
func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	errorType := "internal_error"
	message := "An internal error occurred"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		switch {
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errorType,
		"message": message,
	})
}
