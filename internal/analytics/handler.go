package analytics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"projectshelf-backend/internal/httpx"
	"projectshelf-backend/internal/middleware"
	"projectshelf-backend/internal/transport"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	log     *slog.Logger
}

func NewHandler(service *Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) GetUserSummary(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	summary, err := h.service.UserSummary(ctx, user.ID)
	if err != nil {
		log.Error("analytics summary: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error fetching analytics", nil)
		return
	}

	log.Info("analytics summary: ok", slog.Int64("user_id", user.ID), slog.Int("total", summary.TotalVisits))
	transport.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetCaseStudySummary(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid case study id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	summary, err := h.service.CaseStudySummary(ctx, id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "Case study not found", nil)
		case errors.Is(err, ErrForbidden):
			transport.WriteError(w, http.StatusForbidden, "You don't have permission to view analytics for this case study", nil)
		default:
			log.Error("case study analytics: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "Server error fetching case study analytics", nil)
		}
		return
	}

	log.Info("case study analytics: ok", slog.Int64("case_study_id", id))
	transport.WriteJSON(w, http.StatusOK, summary)
}

type hitRequest struct {
	CaseStudyID *int64 `json:"caseStudyId"`
}

// RecordHit is public; the visit is attributed to the user named in the path.
func (h *Handler) RecordHit(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		transport.WriteError(w, http.StatusBadRequest, "Missing username", nil)
		return
	}

	var req hitRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r.Body, &req); err != nil {
			transport.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.service.RecordHit(ctx, username, req.CaseStudyID, httpx.ClientIP(r), r.Referer())
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			transport.WriteError(w, http.StatusNotFound, "User not found", nil)
			return
		}
		log.Error("record hit: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error recording visit", nil)
		return
	}

	log.Info("record hit: ok", slog.String("username", username))
	transport.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Visit recorded"})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
