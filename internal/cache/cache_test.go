package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dararith/vehicle-inventory/backend/internal/cache"
	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func sample() []domain.Vehicle {
	return []domain.Vehicle{{VehicleID: "1", Brand: "Honda"}}
}

func TestMemory_MissBeforeFirstSet(t *testing.T) {
	store := cache.NewMemory(time.Minute, nil)

	assert.Nil(t, store.Get())
}

func TestMemory_HitWithinTTL(t *testing.T) {
	clock := newFakeClock()
	store := cache.NewMemory(10*time.Minute, clock.Now)

	store.Set(sample())
	clock.Advance(9 * time.Minute)

	got := store.Get()
	assert.Len(t, got, 1)
	assert.Equal(t, "1", got[0].VehicleID)
}

func TestMemory_ExpiresAtTTL(t *testing.T) {
	clock := newFakeClock()
	store := cache.NewMemory(10*time.Minute, clock.Now)

	store.Set(sample())
	clock.Advance(10 * time.Minute)

	assert.Nil(t, store.Get())
}

func TestMemory_SetResetsTheClock(t *testing.T) {
	clock := newFakeClock()
	store := cache.NewMemory(10*time.Minute, clock.Now)

	store.Set(sample())
	clock.Advance(9 * time.Minute)
	store.Set(sample())
	clock.Advance(9 * time.Minute)

	assert.NotNil(t, store.Get())
}

func TestMemory_Clear(t *testing.T) {
	store := cache.NewMemory(time.Hour, nil)

	store.Set(sample())
	store.Clear()

	assert.Nil(t, store.Get())
}

func TestMemory_ZeroTTLDisablesCaching(t *testing.T) {
	store := cache.NewMemory(0, nil)

	store.Set(sample())

	assert.Nil(t, store.Get())
}

func TestMemory_EmptyListIsNotAMiss(t *testing.T) {
	// A cached empty dataset is a valid entry; only nil means miss.
	store := cache.NewMemory(time.Hour, nil)

	store.Set([]domain.Vehicle{})

	assert.NotNil(t, store.Get())
	assert.Empty(t, store.Get())
}
