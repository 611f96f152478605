package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/course-registration/internal/auth"
	"github.com/sakif/course-registration/internal/model"
	"github.com/sakif/course-registration/internal/service"
)

// Authenticator is the part of service.AuthService the HTTP layer uses.
type Authenticator interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Logout(ctx context.Context, token string)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// CookieConfig controls the session cookie set at login.
type CookieConfig struct {
	// TTL should match the token lifetime so the cookie and token expire together.
	TTL time.Duration
	// Secure restricts the cookie to HTTPS. Enable it in production.
	Secure bool
}

// AuthHandler serves account sign-up, login, logout and the current-user
// lookup.
//
//	POST /api/auth/register → HandleRegister
//	POST /api/auth/login    → HandleLogin
//	POST /api/auth/logout   → HandleLogout (auth required)
//	GET  /api/auth/me       → HandleMe     (auth required)
type AuthHandler struct {
	auth   Authenticator
	cookie CookieConfig
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authenticator Authenticator, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authenticator,
		cookie: cookie,
		logger: logger,
	}
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IDNumber  string `json:"idNumber"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse wraps a user profile with an optional acknowledgement.
type UserResponse struct {
	Message string      `json:"message,omitempty"`
	User    *model.User `json:"user"`
}

// LoginResponse is the body of a successful login. The token is also set
// as an HttpOnly cookie; API clients may send it as a bearer token instead.
type LoginResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/auth/register
// REQUEST BODY: {"firstName","lastName","idNumber","email","password"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.logger.Debug("invalid register body", slog.String("error", err.Error()))
		writeBadRequest(w, invalidRequestData)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IDNumber:  req.IDNumber,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, UserResponse{
		Message: "Registration successful",
		User:    user,
	})
}

// HandleLogin verifies credentials and starts a session.
//
// HTTP: POST /api/auth/login
// REQUEST BODY: {"email","password"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.logger.Debug("invalid login body", slog.String("error", err.Error()))
		writeBadRequest(w, invalidRequestData)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// HttpOnly keeps the token away from page scripts; SameSite=Lax keeps
	// it off cross-site POSTs.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful",
		User:    result.User,
		Token:   result.Token,
	})
}

// HandleLogout revokes the caller's token and clears the cookie.
//
// HTTP: POST /api/auth/logout
// Auth: Required
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context(), auth.TokenFromRequest(r))

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/auth/me
// Auth: Required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{User: user})
}
