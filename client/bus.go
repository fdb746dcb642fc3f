package client

import (
	"sync"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// Bus is the cross-component invalidation channel: whoever successfully
// mutates the vehicle list publishes the replaced array, and every
// subscriber updates its local view without a network round-trip. It
// carries exactly one message type, the replaced vehicle list.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func([]domain.Vehicle)
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: map[int]func([]domain.Vehicle){}}
}

// Subscribe registers fn and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (b *Bus) Subscribe(fn func([]domain.Vehicle)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers the replaced list to every subscriber, synchronously
// and in no particular order. Subscribers must not block.
func (b *Bus) Publish(vehicles []domain.Vehicle) {
	b.mu.Lock()
	fns := make([]func([]domain.Vehicle), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(vehicles)
	}
}
