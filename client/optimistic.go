package client

import (
	"context"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// MutationAPI is the slice of the API the optimistic mutator needs.
type MutationAPI interface {
	Update(ctx context.Context, id string, v domain.Vehicle) (domain.Vehicle, error)
	Delete(ctx context.Context, id, imageFileID, imageURL string) error
}

// Mutator wraps update and delete with optimistic local state: the
// caller-visible list changes synchronously before the network call is
// issued, then the change is either confirmed (success; no further
// visual change) or rolled back to the snapshot captured at invocation
// time (failure).
//
// Each mutation moves through idle → applied-locally → confirmed, or
// idle → applied-locally → rolled-back. At most one mutation per vehicle
// ID should be in flight at a time; the mutator does not enforce that.
// The calling UI is expected to disable the triggering control while a
// mutation is pending.
type Mutator struct {
	api        MutationAPI
	controller *Controller
	bus        *Bus

	// OnError, when set, receives the failure and the pre-mutation
	// record after a rollback. Use it for the error toast.
	OnError func(err error, original domain.Vehicle)
}

// NewMutator constructs a Mutator operating on the controller's list.
// bus may be nil; when set, confirmed mutations publish the replaced
// list so other subscribed views update without refetching.
func NewMutator(api MutationAPI, controller *Controller, bus *Bus) *Mutator {
	return &Mutator{api: api, controller: controller, bus: bus}
}

// Update applies the updated record locally, then issues the network
// call. original is the pre-mutation record reinstated on failure; it is
// captured here as a value, not recomputed at rollback time.
func (m *Mutator) Update(ctx context.Context, id string, updated, original domain.Vehicle) error {
	snapshot := m.controller.Vehicles()

	updated.VehicleID = id
	m.applyUpdate(id, updated)

	if _, err := m.api.Update(ctx, id, updated); err != nil {
		m.rollback(snapshot)
		if m.OnError != nil {
			m.OnError(err, original)
		}
		return err
	}

	m.confirm()
	return nil
}

// Delete removes the vehicle locally, then issues the network call.
// On failure the removed vehicle is reinserted unless a concurrent
// refetch already brought it back.
func (m *Mutator) Delete(ctx context.Context, v domain.Vehicle) error {
	snapshot := m.controller.Vehicles()

	m.applyDelete(v.VehicleID)

	if err := m.api.Delete(ctx, v.VehicleID, "", v.Image); err != nil {
		m.reinsert(snapshot, v)
		if m.OnError != nil {
			m.OnError(err, v)
		}
		return err
	}

	m.confirm()
	return nil
}

// applyUpdate is the applied-locally transition for an update.
func (m *Mutator) applyUpdate(id string, updated domain.Vehicle) {
	list := m.controller.Vehicles()
	for i := range list {
		if list[i].VehicleID == id {
			list[i] = updated
		}
	}
	m.controller.replace(list)
}

// applyDelete is the applied-locally transition for a delete.
func (m *Mutator) applyDelete(id string) {
	list := m.controller.Vehicles()
	out := list[:0]
	for _, v := range list {
		if v.VehicleID != id {
			out = append(out, v)
		}
	}
	m.controller.replace(out)
}

// confirm is the confirmed transition: the optimistic state is already
// what the server now holds, so the only work is telling other views.
func (m *Mutator) confirm() {
	if m.bus != nil {
		m.bus.Publish(m.controller.Vehicles())
	}
}

// rollback restores the pre-mutation snapshot wholesale.
func (m *Mutator) rollback(snapshot []domain.Vehicle) {
	m.controller.replace(snapshot)
}

// reinsert restores the snapshot for a failed delete, guarding against
// double-insertion when a concurrent refetch already restored the row.
func (m *Mutator) reinsert(snapshot []domain.Vehicle, v domain.Vehicle) {
	current := m.controller.Vehicles()
	for _, existing := range current {
		if existing.VehicleID == v.VehicleID {
			// Already back; leave the current list alone.
			return
		}
	}
	m.controller.replace(snapshot)
}
