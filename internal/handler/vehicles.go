package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 16 << 20

// ListVehicles handles GET /api/vehicles.
// Supports ?lite= (strip market-price fields) and ?maxRows= (response
// cap, clamped to 5000). The envelope carries meta computed over the
// full dataset regardless of projections.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	var maxRows *int
	if raw := r.URL.Query().Get("maxRows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: maxRows must be an integer", domain.ErrValidation))
			return
		}
		maxRows = &n
	}
	lite := queryBool(r, "lite")

	vehicles, meta, err := s.vehicles.List(r.Context(), domain.NewListParams(maxRows, lite))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "data": vehicles, "meta": meta})
}

// GetVehicle handles GET /api/vehicles/{id}.
func (s *Server) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := s.vehicles.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, vehicle)
}

// CreateVehicle handles POST /api/vehicles.
// Accepts a JSON body or a multipart form whose "image" part becomes the
// inline image the service uploads to Drive.
func (s *Server) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	input, err := parseVehiclePayload(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.vehicles.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, created)
}

// UpdateVehicle handles PUT /api/vehicles/{id}.
func (s *Server) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	input, err := parseVehiclePayload(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.vehicles.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, updated)
}

// DeleteVehicle handles DELETE /api/vehicles/{id}.
// The optional body supplies the image file ID (or URL) so the upstream
// can garbage-collect the Drive image; absent both, the service resolves
// it best-effort.
func (s *Server) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ImageFileID string `json:"imageFileId"`
		ImageURL    string `json:"imageUrl"`
	}
	if r.Body != nil {
		// A missing or empty body is fine; only malformed JSON is not.
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, r, fmt.Errorf("%w: malformed request body", domain.ErrValidation))
			return
		}
	}

	id := chi.URLParam(r, "id")
	if err := s.vehicles.Delete(r.Context(), id, body.ImageFileID, body.ImageURL); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"VehicleId": id})
}

// ClearCache handles POST /api/vehicles/clear-cache. No session is
// required: it can only force a refetch, never expose or mutate data.
func (s *Server) ClearCache(w http.ResponseWriter, r *http.Request) {
	s.vehicles.ClearCache()
	respondData(w, http.StatusOK, map[string]string{"status": "cache cleared"})
}

// ExportVehicles handles GET /api/vehicles/export, streaming the full
// dataset as CSV.
func (s *Server) ExportVehicles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="vehicles.csv"`)
	if err := s.vehicles.ExportCSV(r.Context(), w); err != nil {
		// Headers may already be out; log rather than emit a half-CSV
		// JSON error body.
		respondError(w, r, err)
	}
}

// --- request parsing --------------------------------------------------------

// parseVehiclePayload builds the vehicle input from either a JSON body
// or a multipart form. Multipart field names match the canonical JSON
// field names; an "image" file part is folded into Vehicle.Image as a
// data URI for the service's upload pipeline.
func parseVehiclePayload(r *http.Request) (domain.Vehicle, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "multipart/form-data" {
		return parseMultipartVehicle(r)
	}

	var v domain.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return domain.Vehicle{}, fmt.Errorf("%w: malformed request body", domain.ErrValidation)
	}
	return v, nil
}

func parseMultipartVehicle(r *http.Request) (domain.Vehicle, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return domain.Vehicle{}, fmt.Errorf("%w: malformed multipart form", domain.ErrValidation)
	}

	v := domain.Vehicle{
		VehicleID: r.FormValue("VehicleId"),
		Category:  r.FormValue("Category"),
		Brand:     r.FormValue("Brand"),
		Model:     r.FormValue("Model"),
		Plate:     r.FormValue("Plate"),
		TaxType:   r.FormValue("TaxType"),
		Condition: r.FormValue("Condition"),
		BodyType:  r.FormValue("BodyType"),
		Color:     r.FormValue("Color"),
		Image:     r.FormValue("Image"),
		Time:      r.FormValue("Time"),
		Fast:      formBool(r.FormValue("Fast")),
	}
	if raw := r.FormValue("Year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Vehicle{}, fmt.Errorf("%w: Year must be an integer", domain.ErrValidation)
		}
		v.Year = &n
	}
	if raw := r.FormValue("PriceNew"); raw != "" {
		n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return domain.Vehicle{}, fmt.Errorf("%w: PriceNew must be a number", domain.ErrValidation)
		}
		v.PriceNew = &n
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		raw, err := io.ReadAll(file)
		if err != nil {
			return domain.Vehicle{}, fmt.Errorf("%w: unreadable image part", domain.ErrValidation)
		}
		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		v.Image = "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
	}

	return v, nil
}

func formBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1", "on":
		return true
	}
	return false
}

func queryBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
