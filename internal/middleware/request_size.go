package middleware

import (
	"net/http"
)

// MaxRequestSize bounds form and JSON submissions
const MaxRequestSize = 1 << 20 // 1MB

// RequestSizeLimitMiddleware rejects or truncates request bodies larger than limit bytes
func RequestSizeLimitMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"success":false,"message":"Request body too large."}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
