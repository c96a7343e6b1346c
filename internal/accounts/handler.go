package accounts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"projectshelf-backend/internal/auth"
	"projectshelf-backend/internal/httpx"
	"projectshelf-backend/internal/middleware"
	"projectshelf-backend/internal/transport"
	"projectshelf-backend/internal/validation"
)

type Handler struct {
	service      *Service
	sessions     *auth.Manager
	validate     *validation.Validator
	log          *slog.Logger
	cookieSecure bool
}

func NewHandler(service *Service, sessions *auth.Manager, validate *validation.Validator, log *slog.Logger, cookieSecure bool) *Handler {
	return &Handler{
		service:      service,
		sessions:     sessions,
		validate:     validate,
		log:          log,
		cookieSecure: cookieSecure,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req RegisterRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Validation failed", httpx.ValidationDetails(h.validate.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, err := h.service.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			transport.WriteError(w, http.StatusBadRequest, "Username already taken", []transport.FieldError{{Field: "username", Message: "already taken"}})
		case errors.Is(err, ErrEmailTaken):
			transport.WriteError(w, http.StatusBadRequest, "Email already registered", []transport.FieldError{{Field: "email", Message: "already registered"}})
		default:
			log.Error("register: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "Server error creating account", nil)
		}
		return
	}

	if !h.setSession(w, log, user.ID, user.Username) {
		return
	}

	log.Info("register: account created", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
	transport.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req LoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Validation failed", httpx.ValidationDetails(h.validate.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			transport.WriteError(w, http.StatusUnauthorized, "Invalid username or password", nil)
			return
		}
		log.Error("login: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error logging in", nil)
		return
	}

	if !h.setSession(w, log, user.ID, user.Username) {
		return
	}

	log.Info("login: ok", slog.Int64("user_id", user.ID))
	transport.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	transport.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req ProfileRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Validation failed", httpx.ValidationDetails(h.validate.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	updated, err := h.service.UpdateProfile(ctx, user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			transport.WriteError(w, http.StatusBadRequest, "Username already taken", []transport.FieldError{{Field: "username", Message: "already taken"}})
		case errors.Is(err, ErrEmailTaken):
			transport.WriteError(w, http.StatusBadRequest, "Email already registered", []transport.FieldError{{Field: "email", Message: "already registered"}})
		case errors.Is(err, ErrUnknownTheme):
			transport.WriteError(w, http.StatusBadRequest, "Unknown theme", []transport.FieldError{{Field: "theme", Message: "unknown theme"}})
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "User not found", nil)
		default:
			log.Error("update profile: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "Server error updating profile", nil)
		}
		return
	}

	log.Info("update profile: ok", slog.Int64("user_id", user.ID))
	transport.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req ChangePasswordRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Validation failed", httpx.ValidationDetails(h.validate.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.ChangePassword(ctx, user.ID, req); err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			transport.WriteError(w, http.StatusUnauthorized, "Current password is incorrect", nil)
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "User not found", nil)
		default:
			log.Error("change password: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "Server error changing password", nil)
		}
		return
	}

	log.Info("change password: ok", slog.Int64("user_id", user.ID))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *Handler) setSession(w http.ResponseWriter, log *slog.Logger, userID int64, username string) bool {
	token, err := h.sessions.NewSessionToken(userID, username)
	if err != nil {
		log.Error("session: token signing failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error creating session", nil)
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
