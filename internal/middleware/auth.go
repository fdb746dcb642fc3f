package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dararith/vehicle-inventory/backend/internal/auth"
)

// sessionKey is the context key under which the validated session rides.
type sessionKey struct{}

// SessionFromContext returns the session attached by RequireSession.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(auth.Session)
	return s, ok
}

// RequireSession rejects requests without a valid session token (cookie
// or Authorization bearer) with 401, and attaches the session to the
// request context otherwise. List and detail reads need nothing more.
func RequireSession(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := svc.FromRequest(r)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects sessions without the Admin role with 403.
// Wire it after RequireSession.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !session.IsAdmin() {
				writeAuthError(w, http.StatusForbidden, "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError emits the same {ok:false, error} envelope the handlers
// use, so clients see one error shape regardless of which layer rejected
// the request.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": message})
}
