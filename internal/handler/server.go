// Package handler implements the HTTP handlers for the vehicle inventory
// API. All handlers are methods on Server; routes are split into
// domain-specific files (vehicles.go, cron.go, health.go) but share the
// same struct so they can access its dependencies.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
	"github.com/dararith/vehicle-inventory/backend/internal/service"
)

// VehicleServicer defines the business operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler
// tests inject a mock without touching the service layer or the upstream.
type VehicleServicer interface {
	List(ctx context.Context, params domain.ListParams) ([]domain.Vehicle, domain.VehicleMeta, error)
	GetByID(ctx context.Context, id string) (domain.Vehicle, error)
	Create(ctx context.Context, input domain.Vehicle) (domain.Vehicle, error)
	Update(ctx context.Context, id string, input domain.Vehicle) (domain.Vehicle, error)
	Delete(ctx context.Context, id, imageFileID, imageURL string) error
	ClearCache()
	Sync(ctx context.Context) (service.SyncResult, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

// Middleware matches the chi middleware shape.
type Middleware = func(http.Handler) http.Handler

// Server implements every API endpoint over a VehicleServicer.
type Server struct {
	vehicles   VehicleServicer
	cronSecret string
}

// NewServer constructs the Server with all its dependencies. cronSecret
// guards the proactive sync endpoint; empty disables it.
func NewServer(vehicles VehicleServicer, cronSecret string) *Server {
	return &Server{vehicles: vehicles, cronSecret: cronSecret}
}

// Routes assembles the full route tree. requireSession guards all
// vehicle reads; requireAdmin additionally guards writes and the export.
// The clear-cache endpoint takes no session and the cron endpoint
// carries its own bearer check.
func (s *Server) Routes(requireSession, requireAdmin Middleware) chi.Router {
	r := chi.NewRouter()

	r.Route("/api/vehicles", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", s.ListVehicles)
			r.Get("/{id}", s.GetVehicle)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireSession, requireAdmin)
			r.Get("/export", s.ExportVehicles)
			r.Post("/", s.CreateVehicle)
			r.Put("/{id}", s.UpdateVehicle)
			r.Delete("/{id}", s.DeleteVehicle)
		})
		r.Post("/clear-cache", s.ClearCache)
	})

	r.Post("/api/cron/sync-vehicles", s.SyncVehicles)
	r.Get("/healthz", s.GetHealth)

	return r
}
