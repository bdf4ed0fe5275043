package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/landscape-lab/internal/storage"
	"github.com/go-chi/chi/v5"
)

// MediaHandler serves plant and material images publicly.
type MediaHandler struct {
	Store storage.Store
}

// publicMediaPrefixes are the key prefixes readable without a token. Project
// attachments live under "projects/" and are only served through the
// owner-checked project file endpoints.
var publicMediaPrefixes = []string{"plants/", "materials/"}

func isPublicMedia(key string) bool {
	for _, p := range publicMediaPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// Serve streams the object named by the wildcard path segment.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if storage.ValidateKey(key) != nil || !isPublicMedia(key) {
		JSONError(w, "media not found", http.StatusNotFound)
		return
	}
	rc, err := h.Store.Open(r.Context(), key)
	if err != nil {
		writeError(w, r, err, "media")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentTypeFor(key, ""))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil && !errors.Is(err, http.ErrAbortHandler) {
		slog.Warn("media stream interrupted", "key", key, "error", err)
	}
}
