package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// respondJSON writes any payload with the given status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondData writes the standard success envelope {ok:true, data}.
func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, map[string]any{"ok": true, "data": data})
}

// respondError maps a service error onto the failure taxonomy: one
// status per error class, one {ok:false, error} envelope for every
// failure. Unclassified errors become an opaque 500; their detail goes
// to the log, not the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		message = userMessage(err)
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		message = "admin role required"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = "vehicle not found"
	case errors.Is(err, domain.ErrTimeout):
		status = http.StatusBadGateway
		message = "the upstream spreadsheet took too long to respond"
	case errors.Is(err, domain.ErrUpstream):
		status = http.StatusBadGateway
		message = userMessage(err)
	case errors.Is(err, domain.ErrConfig):
		status = http.StatusInternalServerError
		message = userMessage(err)
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "error", err, "path", r.URL.Path)
	}

	respondJSON(w, status, map[string]any{"ok": false, "error": message})
}

// userMessage extracts the human-readable part from a wrapped sentinel
// error, stripping the layered "service.VehicleService.Op:" prefixes.
// e.g. "service.VehicleService.Create: validation error: Brand is required"
// → "validation error: Brand is required".
func userMessage(err error) string {
	msg := err.Error()
	for {
		i := strings.Index(msg, ": ")
		if i < 0 {
			break
		}
		prefix := msg[:i]
		if !strings.HasPrefix(prefix, "service.") && !strings.HasPrefix(prefix, "sheet.") {
			break
		}
		msg = msg[i+2:]
	}
	return msg
}
