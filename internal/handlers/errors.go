package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/landscape-lab/internal/auth"
	"github.com/crucial707/landscape-lab/internal/middleware"
	"github.com/crucial707/landscape-lab/internal/repo"
	"github.com/crucial707/landscape-lab/internal/storage"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// writeError maps err onto the HTTP error taxonomy. resource names the target
// in 404 and 409 messages. Unclassified errors are logged and answered with 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var maxBytes *http.MaxBytesError
	var invalid *invalidField
	switch {
	case errors.As(err, &invalid):
		JSONValidationError(w, "validation failed", map[string]string{invalid.field: invalid.message}, http.StatusBadRequest)
	case errors.Is(err, auth.ErrUnauthenticated):
		middleware.Unauthorized(w, "unauthenticated")
	case errors.Is(err, auth.ErrForbidden):
		JSONError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		JSONError(w, resource+" not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrConflict):
		JSONError(w, resource+" already exists", http.StatusConflict)
	case errors.As(err, &maxBytes):
		JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
	default:
		slog.Error("request failed",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

// invalidField is returned from repository callbacks when a merged record
// breaks a cross-field rule the request alone could not be checked against.
type invalidField struct {
	field   string
	message string
}

func (e *invalidField) Error() string { return e.field + " " + e.message }
