package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/handler/dto"
	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/validator"
)

// AuthHandler handles HTTP requests for account and session operations.
type AuthHandler struct {
	svc           *service.AuthService
	logger        *slog.Logger
	cookieName    string
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies should be false
// only in development, where the app is served over plain HTTP.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, cookieName string, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		logger:        logger,
		cookieName:    cookieName,
		secureCookies: secureCookies,
	}
}

// Signup handles POST /api/v1/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	v := validator.New()
	v.CheckEmail(req.Email)
	v.CheckPassword(req.Password)
	v.Check(len(req.Name) <= 100, "name", "must be at most 100 characters long")
	if !v.Valid() {
		writeValidationError(w, v.Errors())
		return
	}

	user, cookieValue, err := h.svc.Signup(r.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
			return
		}
		h.logger.Error("signup_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "SIGNUP_FAILED", "Failed to create account")
		return
	}

	h.logger.Info("user_signed_up", "user_id", user.ID)

	h.setSessionCookie(w, cookieValue)
	writeSuccess(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, cookieValue, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		h.logger.Error("login_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to log in")
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	h.setSessionCookie(w, cookieValue)
	writeSuccess(w, http.StatusOK, dto.ToUserResponse(user))
}

// Logout handles POST /api/v1/auth/logout. Runs behind session auth.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if err := h.svc.Logout(r.Context(), identity.SessionToken); err != nil {
		h.logger.Error("logout_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to log out")
		return
	}

	h.clearSessionCookie(w)
	writeSuccess(w, http.StatusOK, dto.LogoutResponse{LoggedOut: true})
}

// Me handles GET /api/v1/auth/me. Runs behind session auth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// The session outlived its account.
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		h.logger.Error("current_user_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "GET_USER_FAILED", "Failed to fetch current user")
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToUserResponse(user))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.svc.SessionMaxAge().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
