package middleware

import (
	"mime"
	"net/http"
)

// DefaultMaxBodyBytes is the default maximum JSON or form body size (1 MiB).
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes caps request bodies. Multipart uploads may use up to uploadBytes;
// every other body is held to bodyBytes. Oversized bodies fail when read and
// the handler answers 413.
func MaxBytes(bodyBytes, uploadBytes int64) func(http.Handler) http.Handler {
	if bodyBytes <= 0 {
		bodyBytes = DefaultMaxBodyBytes
	}
	if uploadBytes < bodyBytes {
		uploadBytes = bodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				limit := bodyBytes
				if isMultipart(r) {
					limit = uploadBytes
				}
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}
