package portfolio

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"projectshelf-backend/internal/httpx"
	"projectshelf-backend/internal/middleware"
	"projectshelf-backend/internal/store"
	"projectshelf-backend/internal/transport"
	"projectshelf-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service  *Service
	validate *validation.Validator
	log      *slog.Logger
}

func NewHandler(service *Service, validate *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, validate: validate, log: log}
}

func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	studies, err := h.service.ListOwn(ctx, user.ID)
	if err != nil {
		log.Error("list case studies: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error fetching case studies", nil)
		return
	}
	if studies == nil {
		studies = []store.CaseStudy{}
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"caseStudies": studies})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req CaseStudyRequest
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

	cs, err := h.service.Create(ctx, user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBadTitle):
			transport.WriteError(w, http.StatusBadRequest, "Title must contain letters or digits", []transport.FieldError{{Field: "title", Message: "cannot be turned into a slug"}})
		case errors.Is(err, store.ErrConflict):
			transport.WriteError(w, http.StatusConflict, "A case study with this slug already exists", nil)
		default:
			log.Error("create case study: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "Server error creating case study", nil)
		}
		return
	}

	log.Info("create case study: ok", slog.Int64("case_study_id", cs.ID), slog.String("slug", cs.Slug))
	transport.WriteJSON(w, http.StatusCreated, cs)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req CaseStudyPatchRequest
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

	cs, err := h.service.Update(ctx, user.ID, id, req)
	if err != nil {
		h.writeOwnedError(w, log, err, "update case study")
		return
	}

	log.Info("update case study: ok", slog.Int64("case_study_id", cs.ID))
	transport.WriteJSON(w, http.StatusOK, cs)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Delete(ctx, user.ID, id); err != nil {
		h.writeOwnedError(w, log, err, "delete case study")
		return
	}

	log.Info("delete case study: ok", slog.Int64("case_study_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"message": "Case study deleted"})
}

func (h *Handler) PublicPortfolio(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	identifier := chi.URLParam(r, "identifier")

	var viewerID int64
	if user, ok := middleware.SessionUser(r.Context()); ok {
		viewerID = user.ID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.service.PublicPortfolio(ctx, identifier, viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "Portfolio not found", nil)
			return
		}
		log.Error("public portfolio: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error fetching portfolio", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CaseStudyByID(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid case study id", nil)
		return
	}

	var viewerID int64
	if user, ok := middleware.SessionUser(r.Context()); ok {
		viewerID = user.ID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.service.CaseStudyByID(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "Case study not found", nil)
			return
		}
		log.Error("case study by id: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error fetching case study", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) PublicCaseStudy(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	username := chi.URLParam(r, "username")
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	detail, err := h.service.PublicCaseStudyBySlug(ctx, username, slug, httpx.ClientIP(r), r.Referer())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "Case study not found", nil)
			return
		}
		log.Error("public case study: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error fetching case study", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) AddTimelineItem(w http.ResponseWriter, r *http.Request) {
	createChild(h, w, r, "timeline item", func(ctx context.Context, userID, caseStudyID int64, req TimelineItemRequest) (store.TimelineItem, error) {
		return h.service.AddTimelineItem(ctx, userID, caseStudyID, req)
	})
}

func (h *Handler) UpdateTimelineItem(w http.ResponseWriter, r *http.Request) {
	updateChild(h, w, r, "timeline item", func(ctx context.Context, userID, id int64, req TimelineItemPatchRequest) (store.TimelineItem, error) {
		return h.service.UpdateTimelineItem(ctx, userID, id, req)
	})
}

func (h *Handler) DeleteTimelineItem(w http.ResponseWriter, r *http.Request) {
	h.deleteChild(w, r, "timeline item", h.service.DeleteTimelineItem)
}

func (h *Handler) AddTestimonial(w http.ResponseWriter, r *http.Request) {
	createChild(h, w, r, "testimonial", func(ctx context.Context, userID, caseStudyID int64, req TestimonialRequest) (store.Testimonial, error) {
		return h.service.AddTestimonial(ctx, userID, caseStudyID, req)
	})
}

func (h *Handler) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	updateChild(h, w, r, "testimonial", func(ctx context.Context, userID, id int64, req TestimonialPatchRequest) (store.Testimonial, error) {
		return h.service.UpdateTestimonial(ctx, userID, id, req)
	})
}

func (h *Handler) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	h.deleteChild(w, r, "testimonial", h.service.DeleteTestimonial)
}

func (h *Handler) AddMetric(w http.ResponseWriter, r *http.Request) {
	createChild(h, w, r, "metric", func(ctx context.Context, userID, caseStudyID int64, req MetricRequest) (store.Metric, error) {
		return h.service.AddMetric(ctx, userID, caseStudyID, req)
	})
}

func (h *Handler) UpdateMetric(w http.ResponseWriter, r *http.Request) {
	updateChild(h, w, r, "metric", func(ctx context.Context, userID, id int64, req MetricPatchRequest) (store.Metric, error) {
		return h.service.UpdateMetric(ctx, userID, id, req)
	})
}

func (h *Handler) DeleteMetric(w http.ResponseWriter, r *http.Request) {
	h.deleteChild(w, r, "metric", h.service.DeleteMetric)
}

// createChild factors the shared decode/validate/ownership flow for the
// three child resources.
func createChild[Req any, Res any](h *Handler, w http.ResponseWriter, r *http.Request, kind string, create func(ctx context.Context, userID, caseStudyID int64, req Req) (Res, error)) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	caseStudyID, err := httpx.ParseID(chi.URLParam(r, "caseStudyId"))
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid case study id", nil)
		return
	}

	var req Req
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

	res, err := create(ctx, user.ID, caseStudyID, req)
	if err != nil {
		h.writeOwnedError(w, log, err, "create "+kind)
		return
	}

	log.Info("create "+kind+": ok", slog.Int64("case_study_id", caseStudyID))
	transport.WriteJSON(w, http.StatusCreated, res)
}

func updateChild[Req any, Res any](h *Handler, w http.ResponseWriter, r *http.Request, kind string, update func(ctx context.Context, userID, id int64, req Req) (Res, error)) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid id", nil)
		return
	}

	var req Req
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

	res, err := update(ctx, user.ID, id, req)
	if err != nil {
		h.writeOwnedError(w, log, err, "update "+kind)
		return
	}

	log.Info("update "+kind+": ok", slog.Int64("id", id))
	transport.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) deleteChild(w http.ResponseWriter, r *http.Request, kind string, del func(ctx context.Context, userID, id int64) error) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := del(ctx, user.ID, id); err != nil {
		h.writeOwnedError(w, log, err, "delete "+kind)
		return
	}

	log.Info("delete "+kind+": ok", slog.Int64("id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

func (h *Handler) writeOwnedError(w http.ResponseWriter, log *slog.Logger, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, ErrForbidden):
		transport.WriteError(w, http.StatusForbidden, "You don't have permission to modify this case study", nil)
	case errors.Is(err, ErrBadTitle):
		transport.WriteError(w, http.StatusBadRequest, "Title must contain letters or digits", []transport.FieldError{{Field: "title", Message: "cannot be turned into a slug"}})
	case errors.Is(err, store.ErrConflict):
		transport.WriteError(w, http.StatusConflict, "A case study with this slug already exists", nil)
	default:
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error", nil)
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
