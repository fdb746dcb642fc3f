package client

import (
	"context"
	"sync"
	"time"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// Lister is the slice of the API the sync controller needs.
type Lister interface {
	List(ctx context.Context, opts ListOptions) ([]domain.Vehicle, domain.VehicleMeta, error)
}

// Controller owns the synchronized vehicle list on the consumer side. It
// exposes the fetched state, refetches on demand, and tracks mutations
// broadcast on the Bus so every view of the list stays consistent
// without a shared state manager.
//
// Refetch is safe to call concurrently with an in-flight fetch: each
// call bumps an internal generation counter and a response is discarded
// if a newer fetch started while it was in flight, so a slow stale
// response can never overwrite a fresher result.
type Controller struct {
	api  Lister
	bus  *Bus
	snap SnapshotStore
	opts ListOptions

	mu          sync.Mutex
	generation  uint64
	vehicles    []domain.Vehicle
	meta        domain.VehicleMeta
	hasMeta     bool
	loading     bool
	errMessage  string
	lastSync    time.Time
	unsubscribe func()
}

// NewController constructs a Controller. bus may be nil when no
// cross-component invalidation is needed; snap may be nil to skip
// snapshot persistence. When a snapshot store is supplied, its last
// saved state is loaded immediately so callers have data to paint before
// the first fetch completes.
func NewController(api Lister, bus *Bus, snap SnapshotStore, opts ListOptions) *Controller {
	c := &Controller{api: api, bus: bus, snap: snap, opts: opts}

	if snap != nil {
		if loaded, err := snap.Load(); err == nil && loaded != nil {
			c.vehicles = loaded.Vehicles
			c.meta = loaded.Meta
			c.hasMeta = true
			c.lastSync = loaded.SyncedAt
		}
	}
	if bus != nil {
		c.unsubscribe = bus.Subscribe(c.adopt)
	}
	return c
}

// Close detaches the controller from the Bus.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Refetch fetches the list and replaces the held state wholesale on
// success. On failure it records a human-readable error and clears the
// vehicles and meta: showing stale aggregates next to an error banner is
// worse than showing nothing.
func (c *Controller) Refetch(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.loading = true
	c.mu.Unlock()

	vehicles, meta, err := c.api.List(ctx, c.opts)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		// A newer fetch started while this one was in flight; its result
		// owns the state now.
		return nil
	}
	c.loading = false

	if err != nil {
		c.errMessage = err.Error()
		c.vehicles = nil
		c.hasMeta = false
		c.meta = domain.VehicleMeta{}
		return err
	}

	c.errMessage = ""
	c.vehicles = vehicles
	c.meta = meta
	c.hasMeta = true
	c.lastSync = time.Now()

	if c.snap != nil {
		// Snapshot persistence is best-effort; a failed save never fails
		// the sync.
		_ = c.snap.Save(&Snapshot{Vehicles: vehicles, Meta: meta, SyncedAt: c.lastSync})
	}
	return nil
}

// adopt replaces the held list with one broadcast on the Bus, keeping
// the aggregates consistent by recomputing them locally.
func (c *Controller) adopt(vehicles []domain.Vehicle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vehicles = vehicles
	c.meta = domain.ComputeMeta(vehicles)
	c.hasMeta = true
	c.errMessage = ""
}

// Vehicles returns a copy of the current list.
func (c *Controller) Vehicles() []domain.Vehicle {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Vehicle, len(c.vehicles))
	copy(out, c.vehicles)
	return out
}

// Meta returns the current aggregates and whether any are held.
func (c *Controller) Meta() (domain.VehicleMeta, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta, c.hasMeta
}

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the human-readable message of the last failed fetch, or "".
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMessage
}

// LastSyncTime returns when the last successful fetch completed.
func (c *Controller) LastSyncTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

// replace swaps the held list in place. Used by the optimistic mutator,
// which owns its own snapshots.
func (c *Controller) replace(vehicles []domain.Vehicle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vehicles = vehicles
}
