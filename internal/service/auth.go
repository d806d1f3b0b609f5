// Package service contains the business logic layer of the application.
//
// The layering follows handler → service → repository: handlers parse HTTP
// and translate errors, services enforce the rules (validation, role
// routing, merge and upsert semantics), repositories talk to the database.
// Services receive repository interfaces, never concrete stores, so tests
// run against in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/auth"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/repository"
)

// AuthService handles registration, login and profile management.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the account and its freshly issued token, so the
// handler can serialize both in one response.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a student account and issues a token.
//
// Rules:
//   - name, email and password are required
//   - the email must not already be registered (Conflict otherwise)
//   - the role is always student; instructor accounts come from the seed
//     command, never from this endpoint
//
// A concurrent registration of the same email can slip past the pre-check;
// the UNIQUE index in the store catches it and the Conflict is returned all
// the same.
func (s *AuthService) Register(ctx context.Context, name, email, password string, profile *model.Profile) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" || email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "بيانات المستخدم غير صالحة")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("البريد الإلكتروني مسجل بالفعل")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "بيانات المستخدم غير صالحة")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	}
	if profile != nil {
		user.Profile = *profile
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %s: %w", email, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the credentials and issues a token.
//
// A wrong email and a wrong password produce the same Unauthorized response,
// so the endpoint doesn't reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("البريد الإلكتروني أو كلمة المرور غير صحيحة")
		}
		return nil, fmt.Errorf("service/auth: looking up user %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("البريد الإلكتروني أو كلمة المرور غير صحيحة")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// GetProfile returns the current account view for the principal.
func (s *AuthService) GetProfile(ctx context.Context, principal auth.Principal) (*model.User, error) {
	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", principal.ID, err)
	}
	return user, nil
}

// UpdateProfile applies a partial update to the principal's account and
// returns the full updated view.
//
// Name is replace-if-present (an empty/absent name keeps the existing one).
// The profile merge is the explicit two-level merge in
// model.Profile.Apply: direct fields overwrite, absent fields are kept, and
// the `needs` flags merge one level deeper. Updating only `age` leaves
// `chronicDiseases` (and unticked needs flags) untouched.
func (s *AuthService) UpdateProfile(ctx context.Context, principal auth.Principal, name string, profile *model.ProfileUpdate) (*model.User, error) {
	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	user.Profile.Apply(profile)

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to update profile",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: updating user %s: %w", user.ID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))

	return user, nil
}
