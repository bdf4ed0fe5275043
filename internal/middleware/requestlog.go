package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// responseWriter wraps http.ResponseWriter to capture status and size.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// userSlot lets RequestLog see the user that Authenticate attaches further down
// the chain, since the inner request context is not visible here.
type userSlot struct{ id int }

const userSlotKey ctxKey = "user_slot"

// RequestLog logs each request with request_id, method, path, status, duration,
// size and, once authenticated, user_id. 5xx responses log at ERROR, 4xx at WARN.
// Use after RequestID middleware so the ID is available.
func RequestLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			slot := &userSlot{}
			next.ServeHTTP(wrap, r.WithContext(contextWithSlot(r.Context(), slot)))

			level := slog.LevelInfo
			switch {
			case wrap.status >= 500:
				level = slog.LevelError
			case wrap.status >= 400:
				level = slog.LevelWarn
			}
			attrs := []any{
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrap.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"size", wrap.size,
			}
			if slot.id != 0 {
				attrs = append(attrs, "user_id", slot.id)
			}
			logger.Log(r.Context(), level, "request", attrs...)
		})
	}
}

func contextWithSlot(ctx context.Context, s *userSlot) context.Context {
	return context.WithValue(ctx, userSlotKey, s)
}

func recordUser(ctx context.Context, id int) {
	if s, ok := ctx.Value(userSlotKey).(*userSlot); ok {
		s.id = id
	}
}
