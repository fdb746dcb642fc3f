package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dararith/vehicle-inventory/backend/client"
	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := client.NewBus()

	var a, b [][]domain.Vehicle
	bus.Subscribe(func(v []domain.Vehicle) { a = append(a, v) })
	bus.Subscribe(func(v []domain.Vehicle) { b = append(b, v) })

	bus.Publish([]domain.Vehicle{{VehicleID: "1"}})

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
	assert.Equal(t, "1", a[0][0].VehicleID)
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := client.NewBus()

	var got int
	unsub := bus.Subscribe(func(_ []domain.Vehicle) { got++ })

	bus.Publish(nil)
	unsub()
	bus.Publish(nil)

	assert.Equal(t, 1, got)
}

func TestBus_DoubleUnsubscribeHarmless(t *testing.T) {
	bus := client.NewBus()
	unsub := bus.Subscribe(func(_ []domain.Vehicle) {})

	unsub()
	unsub()

	bus.Publish(nil) // must not panic
}

func TestBus_PublishWithNoSubscribers(t *testing.T) {
	client.NewBus().Publish([]domain.Vehicle{{VehicleID: "1"}})
}
