package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/crucial707/landscape-lab/internal/middleware"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errBadJSON wraps body decoding failures so callers can answer 400.
var errBadJSON = errors.New("invalid JSON")

// decodeJSON decodes the body into v, rejecting unknown fields and trailing data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON value", errBadJSON)
	}
	return nil
}

// decodeAndValidate decodes and validates the body into v. On failure it writes
// the response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(r, v); err != nil {
		if errors.Is(err, errBadJSON) {
			JSONError(w, err.Error(), http.StatusBadRequest)
		} else {
			writeError(w, r, err, "")
		}
		return false
	}
	return validateStruct(w, v)
}

// validateStruct writes a 400 with per-field messages when v fails validation.
func validateStruct(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		JSONError(w, "validation failed", http.StatusBadRequest)
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gtefield":
		return "must not be less than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return "invalid value"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// page holds limit/offset pagination from the query string.
type page struct {
	Limit  int
	Offset int
}

func parsePage(r *http.Request) page {
	p := page{Limit: defaultLimit}
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			p.Limit = min(val, maxLimit)
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			p.Offset = val
		}
	}
	return p
}

func writePage[T any](w http.ResponseWriter, items []T, total int, p page) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"total":  total,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// pathID parses the named chi URL parameter as a positive integer. On failure
// it answers 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request, name, resource string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		JSONError(w, "invalid "+resource+" id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated user. Routes using it sit behind
// middleware.Authenticate; a missing user answers 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		middleware.Unauthorized(w, "missing bearer token")
		return nil, false
	}
	return u, true
}
