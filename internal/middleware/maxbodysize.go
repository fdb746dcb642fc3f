package middleware

import "net/http"

// NewMaxBodySizeHandler returns a middleware that limits incoming request
// body sizes to limit bytes. Oversized bodies make the handler's read
// fail with http.MaxBytesError, which the JSON decode paths surface as a
// 400. Inline base64 images are the only legitimately large payloads, so
// wire this with a limit comfortably above the compressed-image ceiling.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
