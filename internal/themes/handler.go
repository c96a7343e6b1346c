package themes

import (
	"log/slog"
	"net/http"
	"strings"

	"projectshelf-backend/internal/transport"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	log *slog.Logger
}

func NewHandler(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"themes": All(),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if !IsKnown(id) {
		transport.WriteError(w, http.StatusNotFound, "Theme not found", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, Resolve(id))
}

// CSS serves the rendered stylesheet; unknown ids get the default theme so
// public pages always have something to link.
func (h *Handler) CSS(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(RenderCSS(id)))
}
