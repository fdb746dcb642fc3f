package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// SyncVehicles handles POST /api/cron/sync-vehicles.
// A scheduler calls this with a bearer secret to refresh the cache ahead
// of TTL expiry. The comparison is constant-time; an unset secret
// disables the endpoint entirely rather than leaving it open.
func (s *Server) SyncVehicles(w http.ResponseWriter, r *http.Request) {
	if !s.cronAuthorized(r) {
		respondJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "invalid cron secret"})
		return
	}

	result, err := s.vehicles.Sync(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"count":       result.Count,
		"durationMs":  result.Duration.Milliseconds(),
		"refreshedAt": result.RefreshedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) cronAuthorized(r *http.Request) bool {
	if s.cronSecret == "" {
		return false
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cronSecret)) == 1
}
