package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dararith/vehicle-inventory/backend/client"
	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// mockMutationAPI is a test double for client.MutationAPI.
type mockMutationAPI struct {
	update func(ctx context.Context, id string, v domain.Vehicle) (domain.Vehicle, error)
	delete func(ctx context.Context, id, imageFileID, imageURL string) error
}

func (m *mockMutationAPI) Update(ctx context.Context, id string, v domain.Vehicle) (domain.Vehicle, error) {
	return m.update(ctx, id, v)
}

func (m *mockMutationAPI) Delete(ctx context.Context, id, imageFileID, imageURL string) error {
	return m.delete(ctx, id, imageFileID, imageURL)
}

var _ client.MutationAPI = (*mockMutationAPI)(nil)

func seedVehicles() []domain.Vehicle {
	return []domain.Vehicle{
		{VehicleID: "1", Brand: "Honda", Model: "Fit"},
		{VehicleID: "2", Brand: "Toyota", Model: "Vios"},
		{VehicleID: "3", Brand: "Suzuki", Model: "Swift"},
	}
}

// newSeededController returns a controller already holding seedVehicles.
func newSeededController(t *testing.T, bus *client.Bus) *client.Controller {
	t.Helper()
	c := client.NewController(listerOf(seedVehicles()...), bus, nil, client.ListOptions{})
	t.Cleanup(c.Close)
	require.NoError(t, c.Refetch(context.Background()))
	return c
}

// ---- Update ----------------------------------------------------------------

func TestMutatorUpdate_AppliedBeforeNetworkCall(t *testing.T) {
	var seenDuringCall string
	var controller *client.Controller
	api := &mockMutationAPI{
		update: func(_ context.Context, _ string, _ domain.Vehicle) (domain.Vehicle, error) {
			for _, v := range controller.Vehicles() {
				if v.VehicleID == "2" {
					seenDuringCall = v.Brand
				}
			}
			return domain.Vehicle{}, nil
		},
	}
	controller = newSeededController(t, nil)
	m := client.NewMutator(api, controller, nil)

	updated := domain.Vehicle{Brand: "Mazda", Model: "2"}
	original := seedVehicles()[1]
	require.NoError(t, m.Update(context.Background(), "2", updated, original))

	assert.Equal(t, "Mazda", seenDuringCall, "the local list must change before the call resolves")
}

func TestMutatorUpdate_FailureRollsBackExactly(t *testing.T) {
	api := &mockMutationAPI{
		update: func(_ context.Context, _ string, _ domain.Vehicle) (domain.Vehicle, error) {
			return domain.Vehicle{}, errors.New("server rejected")
		},
	}
	controller := newSeededController(t, nil)
	before := controller.Vehicles()

	var reportedErr error
	var reportedOriginal domain.Vehicle
	m := client.NewMutator(api, controller, nil)
	m.OnError = func(err error, original domain.Vehicle) {
		reportedErr = err
		reportedOriginal = original
	}

	original := seedVehicles()[1]
	err := m.Update(context.Background(), "2", domain.Vehicle{Brand: "Mazda"}, original)

	require.Error(t, err)
	assert.Equal(t, before, controller.Vehicles(), "rollback must restore the pre-mutation list exactly")
	assert.Equal(t, reportedErr, err)
	assert.Equal(t, original, reportedOriginal)
}

func TestMutatorUpdate_ConfirmPublishesToBus(t *testing.T) {
	api := &mockMutationAPI{
		update: func(_ context.Context, _ string, _ domain.Vehicle) (domain.Vehicle, error) {
			return domain.Vehicle{}, nil
		},
	}
	bus := client.NewBus()
	var published [][]domain.Vehicle
	bus.Subscribe(func(v []domain.Vehicle) { published = append(published, v) })

	controller := newSeededController(t, nil)
	m := client.NewMutator(api, controller, bus)

	require.NoError(t, m.Update(context.Background(), "2", domain.Vehicle{Brand: "Mazda", Model: "2"}, seedVehicles()[1]))

	require.Len(t, published, 1)
	var found bool
	for _, v := range published[0] {
		if v.VehicleID == "2" {
			found = true
			assert.Equal(t, "Mazda", v.Brand)
		}
	}
	assert.True(t, found)
}

func TestMutatorUpdate_FailurePublishesNothing(t *testing.T) {
	api := &mockMutationAPI{
		update: func(_ context.Context, _ string, _ domain.Vehicle) (domain.Vehicle, error) {
			return domain.Vehicle{}, errors.New("boom")
		},
	}
	bus := client.NewBus()
	var publishes int
	bus.Subscribe(func(_ []domain.Vehicle) { publishes++ })

	controller := newSeededController(t, nil)
	m := client.NewMutator(api, controller, bus)

	require.Error(t, m.Update(context.Background(), "2", domain.Vehicle{Brand: "Mazda"}, seedVehicles()[1]))

	assert.Zero(t, publishes)
}

// ---- Delete ----------------------------------------------------------------

func TestMutatorDelete_RemovedBeforeNetworkCall(t *testing.T) {
	var countDuringCall int
	var controller *client.Controller
	api := &mockMutationAPI{
		delete: func(_ context.Context, id, _, imageURL string) error {
			countDuringCall = len(controller.Vehicles())
			assert.Equal(t, "2", id)
			return nil
		},
	}
	controller = newSeededController(t, nil)
	m := client.NewMutator(api, controller, nil)

	require.NoError(t, m.Delete(context.Background(), seedVehicles()[1]))

	assert.Equal(t, 2, countDuringCall)
	assert.Len(t, controller.Vehicles(), 2)
}

func TestMutatorDelete_FailureReinserts(t *testing.T) {
	api := &mockMutationAPI{
		delete: func(_ context.Context, _, _, _ string) error {
			return errors.New("server rejected")
		},
	}
	controller := newSeededController(t, nil)
	before := controller.Vehicles()

	var reportedOriginal domain.Vehicle
	m := client.NewMutator(api, controller, nil)
	m.OnError = func(_ error, original domain.Vehicle) { reportedOriginal = original }

	target := seedVehicles()[1]
	require.Error(t, m.Delete(context.Background(), target))

	assert.Equal(t, before, controller.Vehicles())
	assert.Equal(t, target, reportedOriginal)
}

func TestMutatorDelete_ReinsertGuardAgainstConcurrentRefetch(t *testing.T) {
	// A refetch completing between the failed delete and its rollback has
	// already restored the row; reinserting the snapshot on top of that
	// would duplicate it.
	bus := client.NewBus()
	controller := newSeededController(t, bus)
	api := &mockMutationAPI{
		delete: func(_ context.Context, _, _, _ string) error {
			// Simulate the concurrent refetch bringing the row back while
			// the delete call is still in flight.
			bus.Publish(seedVehicles())
			return errors.New("server rejected")
		},
	}
	m := client.NewMutator(api, controller, nil)

	require.Error(t, m.Delete(context.Background(), seedVehicles()[1]))

	got := controller.Vehicles()
	require.Len(t, got, 3)
	count := 0
	for _, v := range got {
		if v.VehicleID == "2" {
			count++
		}
	}
	assert.Equal(t, 1, count, "the guard must prevent double insertion")
}

func TestMutatorDelete_PassesImageURL(t *testing.T) {
	var gotURL string
	api := &mockMutationAPI{
		delete: func(_ context.Context, _, imageFileID, imageURL string) error {
			assert.Empty(t, imageFileID)
			gotURL = imageURL
			return nil
		},
	}
	controller := newSeededController(t, nil)
	m := client.NewMutator(api, controller, nil)

	v := seedVehicles()[0]
	v.Image = "https://drive.google.com/uc?id=f-1"
	require.NoError(t, m.Delete(context.Background(), v))

	assert.Equal(t, "https://drive.google.com/uc?id=f-1", gotURL)
}
