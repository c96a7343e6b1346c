package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"projectshelf-backend/internal/httpx"
	"projectshelf-backend/internal/middleware"
	"projectshelf-backend/internal/store"
	"projectshelf-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service  *Service
	log      *slog.Logger
	tempDir  string
	maxBytes int64
	maxFiles int
}

func NewHandler(service *Service, log *slog.Logger, tempDir string, maxBytes int64, maxFiles int) *Handler {
	return &Handler{
		service:  service,
		log:      log,
		tempDir:  tempDir,
		maxBytes: maxBytes,
		maxFiles: maxFiles,
	}
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	if !h.service.Configured() {
		transport.WriteError(w, http.StatusServiceUnavailable, "Media uploads are not configured", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid multipart body or file too large", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Missing file field", nil)
		return
	}
	defer file.Close()

	caseStudyID, err := h.optionalCaseStudyID(r)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid caseStudyId", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	m, err := h.saveOne(ctx, log, user.ID, caseStudyID, file, header)
	if err != nil {
		h.writeUploadError(w, log, err)
		return
	}

	log.Info("media upload: ok", slog.Int64("media_id", m.ID), slog.String("type", m.Type))
	transport.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	user, ok := middleware.SessionUser(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	if !h.service.Configured() {
		transport.WriteError(w, http.StatusServiceUnavailable, "Media uploads are not configured", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes*int64(h.maxFiles)+1<<20)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid multipart body or file too large", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		transport.WriteError(w, http.StatusBadRequest, "Missing files field", nil)
		return
	}
	if len(headers) > h.maxFiles {
		transport.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Too many files, at most %d per request", h.maxFiles), nil)
		return
	}

	caseStudyID, err := h.optionalCaseStudyID(r)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid caseStudyId", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	saved := make([]store.Media, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			transport.WriteError(w, http.StatusBadRequest, "Unreadable file in batch", nil)
			return
		}
		m, err := h.saveOne(ctx, log, user.ID, caseStudyID, file, header)
		file.Close()
		if err != nil {
			h.writeUploadError(w, log, err)
			return
		}
		saved = append(saved, m)
	}

	log.Info("media upload batch: ok", slog.Int("count", len(saved)))
	transport.WriteJSON(w, http.StatusCreated, map[string]interface{}{"media": saved})
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

	media, err := h.service.ListOwn(ctx, user.ID)
	if err != nil {
		log.Error("list media: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error fetching media", nil)
		return
	}
	if media == nil {
		media = []store.Media{}
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"media": media})
}

func (h *Handler) ListByCaseStudy(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "Invalid case study id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	media, err := h.service.ListByCaseStudy(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "Case study not found", nil)
			return
		}
		log.Error("list case study media: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error fetching media", nil)
		return
	}
	if media == nil {
		media = []store.Media{}
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"media": media})
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
		transport.WriteError(w, http.StatusBadRequest, "Invalid media id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, user.ID, id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "Media not found", nil)
		case errors.Is(err, ErrForbidden):
			transport.WriteError(w, http.StatusForbidden, "You don't have permission to delete this media", nil)
		default:
			log.Error("delete media: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "Server error deleting media", nil)
		}
		return
	}

	log.Info("delete media: ok", slog.Int64("media_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"message": "Media deleted"})
}

// saveOne spools the part to a temp file so the remote client can re-read
// it, and removes the temp file on every path.
func (h *Handler) saveOne(ctx context.Context, log *slog.Logger, userID int64, caseStudyID *int64, file multipart.File, header *multipart.FileHeader) (store.Media, error) {
	if header.Size > h.maxBytes {
		return store.Media{}, fmt.Errorf("%w: %s exceeds %d bytes", errFileTooLarge, header.Filename, h.maxBytes)
	}

	tempPath := filepath.Join(h.tempDir, "upload-"+uuid.NewString())
	temp, err := os.Create(tempPath)
	if err != nil {
		return store.Media{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			log.Warn("media upload: temp file not removed", slog.String("path", tempPath), slog.String("error", removeErr.Error()))
		}
	}()

	_, copyErr := io.Copy(temp, io.LimitReader(file, h.maxBytes+1))
	closeErr := temp.Close()
	if copyErr != nil {
		return store.Media{}, fmt.Errorf("spool upload: %w", copyErr)
	}
	if closeErr != nil {
		return store.Media{}, fmt.Errorf("spool upload: %w", closeErr)
	}

	return h.service.SaveUpload(ctx, userID, caseStudyID, tempPath, header.Filename, header.Header.Get("Content-Type"))
}

var errFileTooLarge = errors.New("file too large")

func (h *Handler) writeUploadError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrNoUploader):
		transport.WriteError(w, http.StatusServiceUnavailable, "Media uploads are not configured", nil)
	case errors.Is(err, ErrUnsupported):
		transport.WriteError(w, http.StatusBadRequest, "Only image and video uploads are supported", nil)
	case errors.Is(err, errFileTooLarge):
		transport.WriteError(w, http.StatusBadRequest, "File exceeds the upload size limit", nil)
	case errors.Is(err, ErrWrongGallery):
		transport.WriteError(w, http.StatusForbidden, "You don't have permission to attach media to this case study", nil)
	case errors.Is(err, store.ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "Case study not found", nil)
	default:
		log.Error("media upload: failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Server error uploading media", nil)
	}
}

func (h *Handler) optionalCaseStudyID(r *http.Request) (*int64, error) {
	raw := r.FormValue("caseStudyId")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New("invalid caseStudyId")
	}
	return &id, nil
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
