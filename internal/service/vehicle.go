// Package service contains the business logic for the vehicle inventory
// API. Services validate inputs, enforce the cache-coherency rules, and
// orchestrate upstream calls. No HTTP or raw-row handling lives above or
// below this layer's boundaries: handlers speak domain types, the sheet
// package speaks rows.
package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dararith/vehicle-inventory/backend/internal/cache"
	"github.com/dararith/vehicle-inventory/backend/internal/domain"
	"github.com/dararith/vehicle-inventory/backend/internal/sheet"
)

// Upstream defines the spreadsheet operations the service depends on.
// *sheet.Client satisfies it; tests inject a mock. It embeds the
// fetch-page contract so the service can hand itself to
// sheet.FetchAllRows directly.
type Upstream interface {
	FetchPage(ctx context.Context, limit, offset int) (sheet.Page, error)
	GetByID(ctx context.Context, id string) (sheet.RawRow, error)
	Add(ctx context.Context, payload sheet.RawRow) (sheet.RawRow, error)
	Update(ctx context.Context, id string, payload sheet.RawRow) (sheet.RawRow, error)
	Delete(ctx context.Context, id, imageFileID string) error
	UploadImage(ctx context.Context, req sheet.UploadRequest) (sheet.UploadResult, error)
}

// VehicleService implements the vehicle list synchronization and
// reconciliation logic behind the API surface. It is the exclusive owner
// of the cache slot: nothing else may create or invalidate entries.
type VehicleService struct {
	upstream Upstream
	cache    cache.Store
	folders  map[string]string
	logger   *slog.Logger
	now      func() time.Time
}

// NewVehicleService constructs a VehicleService. folders maps display
// category names to Drive folder IDs for image uploads; now is the
// clock, nil for time.Now.
func NewVehicleService(upstream Upstream, store cache.Store, folders map[string]string, logger *slog.Logger) *VehicleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VehicleService{
		upstream: upstream,
		cache:    store,
		folders:  folders,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns the projected vehicle list plus aggregates computed over
// the complete dataset. The cache always holds the full normalized set;
// maxRows and lite are applied to the response only, after meta has been
// computed, so `total` can never regress to "max row index".
func (s *VehicleService) List(ctx context.Context, params domain.ListParams) ([]domain.Vehicle, domain.VehicleMeta, error) {
	vehicles := s.cache.Get()
	if vehicles == nil {
		var err error
		vehicles, err = s.refresh(ctx)
		if err != nil {
			return nil, domain.VehicleMeta{}, fmt.Errorf("service.VehicleService.List: %w", err)
		}
	}

	meta := domain.ComputeMeta(vehicles)
	return projectList(vehicles, params), meta, nil
}

// GetByID resolves a single vehicle through three strategies in order:
// the upstream getById fast path, a cache scan, and finally a full fetch
// plus linear scan. Only after all three miss does it report not found.
func (s *VehicleService) GetByID(ctx context.Context, id string) (domain.Vehicle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByID: %w: id is required", domain.ErrValidation)
	}

	if row, err := s.upstream.GetByID(ctx, id); err == nil {
		return sheet.ToVehicle(row), nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Debug("getById fast path unavailable, falling back", "id", id, "error", err)
	}

	if cached := s.cache.Get(); cached != nil {
		for _, v := range cached {
			if v.VehicleID == id {
				return v, nil
			}
		}
	}

	vehicles, err := s.refresh(ctx)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByID: %w", err)
	}
	for _, v := range vehicles {
		if v.VehicleID == id {
			return v, nil
		}
	}
	return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByID: %w", domain.ErrNotFound)
}

// Create validates and persists a new vehicle. An inline base64 image is
// uploaded to the category's Drive folder first and its URL replaces the
// inline data before the record is sent upstream; any upload failure
// aborts the create. The cache is cleared before success is reported.
func (s *VehicleService) Create(ctx context.Context, input domain.Vehicle) (domain.Vehicle, error) {
	if err := s.validate(input); err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
	}

	v := input
	if isInlineImage(v.Image) {
		stored, err := s.uploadInline(ctx, v.Category, "", v.Image)
		if err != nil {
			return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
		}
		v.Image = stored
	}

	echoed, err := s.upstream.Add(ctx, sheet.ToPayload(v))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
	}
	s.cache.Clear()

	if echoed != nil {
		return sheet.ToVehicle(echoed), nil
	}
	return v, nil
}

// Update validates and overwrites an existing vehicle. No local existence
// check happens first: the upstream "update" action is authoritative on
// not-found. The image pipeline matches Create, keyed by the existing ID
// instead of a generated name. The cache is cleared before success is
// reported.
func (s *VehicleService) Update(ctx context.Context, id string, input domain.Vehicle) (domain.Vehicle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w: id is required", domain.ErrValidation)
	}
	if err := s.validate(input); err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w", err)
	}

	v := input
	v.VehicleID = id
	if isInlineImage(v.Image) {
		stored, err := s.uploadInline(ctx, v.Category, id, v.Image)
		if err != nil {
			return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w", err)
		}
		v.Image = stored
	}

	echoed, err := s.upstream.Update(ctx, id, sheet.ToPayload(v))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w", err)
	}
	s.cache.Clear()

	if echoed != nil {
		return sheet.ToVehicle(echoed), nil
	}
	return v, nil
}

// Delete removes a vehicle. The image file ID for upstream garbage
// collection is resolved best-effort: the caller-supplied value wins,
// then the image URL, then a lookup through the usual three strategies.
// Resolution failure never blocks the delete; the orphaned file is
// logged instead. The cache is cleared before success is reported.
func (s *VehicleService) Delete(ctx context.Context, id, imageFileID, imageURL string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("service.VehicleService.Delete: %w: id is required", domain.ErrValidation)
	}

	fileID := strings.TrimSpace(imageFileID)
	if fileID == "" && imageURL != "" {
		fileID = driveFileID(imageURL)
	}
	if fileID == "" {
		fileID = s.resolveImageFileID(ctx, id)
	}
	if fileID == "" {
		s.logger.Warn("deleting vehicle without image cleanup", "id", id)
	}

	if err := s.upstream.Delete(ctx, id, fileID); err != nil {
		return fmt.Errorf("service.VehicleService.Delete: %w", err)
	}
	s.cache.Clear()
	return nil
}

// ClearCache forces eviction of the cache slot.
func (s *VehicleService) ClearCache() {
	s.cache.Clear()
}

// refresh runs the full pagination fetch, normalizes every row, drops
// rows lacking a usable VehicleId, and replaces the cache slot with the
// complete set.
func (s *VehicleService) refresh(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := sheet.FetchAllRows(ctx, s.upstream)
	if err != nil {
		return nil, err
	}

	vehicles := make([]domain.Vehicle, 0, len(rows))
	for _, row := range rows {
		v := sheet.ToVehicle(row)
		if strings.TrimSpace(v.VehicleID) == "" {
			continue
		}
		vehicles = append(vehicles, v)
	}

	s.cache.Set(vehicles)
	return vehicles, nil
}

// validate enforces the create/update business rules.
func (s *VehicleService) validate(v domain.Vehicle) error {
	required := []struct{ field, value string }{
		{"Category", v.Category},
		{"Brand", v.Brand},
		{"Model", v.Model},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, f.field)
		}
	}
	if v.Year != nil {
		maxYear := s.now().Year() + 2
		if *v.Year < 1900 || *v.Year > maxYear {
			return fmt.Errorf("%w: Year must be between 1900 and %d", domain.ErrValidation, maxYear)
		}
	}
	if v.PriceNew != nil && *v.PriceNew < 0 {
		return fmt.Errorf("%w: PriceNew must not be negative", domain.ErrValidation)
	}
	return nil
}

// uploadInline pushes an inline data-URI image to the category's Drive
// folder and returns the stored URL. fileBase keys the stored name;
// empty means a generated one (create flow).
func (s *VehicleService) uploadInline(ctx context.Context, category, fileBase, dataURI string) (string, error) {
	mimeType, data, err := parseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	display := sheet.NormalizeCategory(category)
	folder, ok := s.folders[display]
	if !ok {
		return "", fmt.Errorf("%w: no image folder configured for category %q", domain.ErrValidation, category)
	}

	if fileBase == "" {
		fileBase = uuid.NewString()
	}

	result, err := s.upstream.UploadImage(ctx, sheet.UploadRequest{
		FolderID: folder,
		Category: sheet.CategoryToSheet(display),
		MimeType: mimeType,
		FileName: fileBase + extensionForMime(mimeType),
		Data:     data,
	})
	if err != nil {
		return "", err
	}

	if result.URL != "" {
		return result.URL, nil
	}
	return "https://drive.google.com/uc?id=" + result.FileID, nil
}

// resolveImageFileID looks up a vehicle's stored image and extracts its
// Drive file ID, using the same three-strategy resolution as GetByID.
// All failures degrade to "": this is best-effort cleanup, not a hard
// dependency of the delete.
func (s *VehicleService) resolveImageFileID(ctx context.Context, id string) string {
	if row, err := s.upstream.GetByID(ctx, id); err == nil {
		return driveFileID(sheet.ToVehicle(row).Image)
	}

	if cached := s.cache.Get(); cached != nil {
		for _, v := range cached {
			if v.VehicleID == id {
				return driveFileID(v.Image)
			}
		}
	}

	vehicles, err := s.refresh(ctx)
	if err != nil {
		s.logger.Warn("image file-id resolution failed", "id", id, "error", err)
		return ""
	}
	for _, v := range vehicles {
		if v.VehicleID == id {
			return driveFileID(v.Image)
		}
	}
	return ""
}

// projectList applies the response-only projections: row cap, lite mode,
// and image redaction. It copies; the cached slice is never mutated.
func projectList(full []domain.Vehicle, p domain.ListParams) []domain.Vehicle {
	n := len(full)
	if p.MaxRows > 0 && p.MaxRows < n {
		n = p.MaxRows
	}
	out := make([]domain.Vehicle, n)
	for i := 0; i < n; i++ {
		v := full[i]
		if p.Lite {
			v = v.StripMarket()
		}
		// Inline blobs and absurdly long values would bloat every list
		// response; the detail endpoint still returns them untouched.
		if isInlineImage(v.Image) || len(v.Image) > 2048 {
			v.Image = ""
		}
		out[i] = v
	}
	return out
}

func isInlineImage(image string) bool {
	return strings.HasPrefix(image, "data:")
}

// parseDataURI splits "data:image/jpeg;base64,XXXX" into its MIME type
// and base64 payload, validating that the payload decodes.
func parseDataURI(uri string) (mimeType, data string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", fmt.Errorf("%w: image is not a data URI", domain.ErrValidation)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok || payload == "" {
		return "", "", fmt.Errorf("%w: malformed image data URI", domain.ErrValidation)
	}
	mimeType = header
	if i := strings.Index(header, ";"); i >= 0 {
		mimeType = header[:i]
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return "", "", fmt.Errorf("%w: image payload is not valid base64", domain.ErrValidation)
	}
	return mimeType, payload, nil
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

// driveFileID extracts the file ID from the Drive URL shapes the sheet
// stores: uc?id=<ID>, open?id=<ID>, and /file/d/<ID>/view.
func driveFileID(raw string) string {
	if raw == "" || isInlineImage(raw) {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if id := u.Query().Get("id"); id != "" {
		return id
	}
	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if part == "d" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1]
		}
	}
	return ""
}
