package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/landscape-lab/internal/auth"
	"github.com/crucial707/landscape-lab/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, or nil outside Authenticate.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// GetUserID returns the authenticated user's id and whether one is present.
func GetUserID(ctx context.Context) (int, bool) {
	if u := UserFromContext(ctx); u != nil {
		return u.ID, true
	}
	return 0, false
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate resolves the bearer token to an active user and stores it in the
// request context. Requests without a valid token get 401.
func Authenticate(a *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				Unauthorized(w, "missing bearer token")
				return
			}
			u, err := a.VerifyRequestToken(r.Context(), token)
			if errors.Is(err, auth.ErrUnauthenticated) {
				Unauthorized(w, "invalid or expired token")
				return
			}
			if err != nil {
				slog.Error("verify request token", "error", err)
				writeJSONError(w, "internal server error", http.StatusInternalServerError)
				return
			}
			recordUser(r.Context(), u.ID)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// Authorize applies the rule declared for op to the authenticated user. Use it
// for operations that do not depend on a resource owner (admin-only listings).
// Must run after Authenticate.
func Authorize(a *auth.Authenticator, op auth.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFromContext(r.Context())
			if u == nil {
				Unauthorized(w, "missing bearer token")
				return
			}
			if err := a.Authorize(u, op, 0); err != nil {
				writeJSONError(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Unauthorized writes a 401 JSON error with the Bearer challenge header.
func Unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, msg, http.StatusUnauthorized)
}

func writeJSONError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
