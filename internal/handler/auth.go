package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/auth"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/service"
)

// AuthHandler exposes registration, login and the profile endpoints.
//
// The token travels as a bearer string in the Authorization header; the
// register/login responses include it next to the account view so the
// client can store it.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// authResponse is the account view plus the issued token, flattened the way
// the clients expect it.
type authResponse struct {
	*model.User
	Token string `json:"token"`
}

// HandleRegister creates a student account.
//
// HTTP: POST /api/auth/register (public)
// Body: {name, email, password, profile?}
// 201 with account view + token; 409 if the email is taken.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string         `json:"name"`
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Profile  *model.Profile `json:"profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "بيانات المستخدم غير صالحة"))
		return
	}

	result, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password, req.Profile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: result.User, Token: result.Token})
}

// HandleLogin authenticates an account.
//
// HTTP: POST /api/auth/login (public)
// Body: {email, password}
// 200 with account view + token; 401 on bad credentials.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "بيانات الدخول غير صالحة"))
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: result.User, Token: result.Token})
}

// HandleGetProfile returns the authenticated account's current view.
//
// HTTP: GET /api/auth/profile
func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	user, err := h.auth.GetProfile(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile applies a partial name/profile update and returns the
// full updated account view.
//
// HTTP: PUT /api/auth/profile
// Body: {name?, profile?} — profile fields merge per the two-level rules.
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	var req struct {
		Name    string               `json:"name"`
		Profile *model.ProfileUpdate `json:"profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "بيانات التحديث غير صالحة"))
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), principal, req.Name, req.Profile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
