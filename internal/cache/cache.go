// Package cache implements the process-wide vehicle list cache: one slot,
// TTL-based, no per-key sharding. The service layer is the only writer;
// every successful mutation clears the slot so the next read refetches.
//
// Multi-instance deployments get one slot per process that can disagree
// for up to one TTL window. That is accepted, not corrected: there is no
// cross-instance coordination. The Store interface exists so a
// shared key-value store can later replace the in-process slot without
// touching callers.
package cache

import (
	"sync"
	"time"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// DefaultTTL is the cache validity window used when config supplies none.
const DefaultTTL = 10 * time.Minute

// Store is the single-slot vehicle cache contract.
// Implementations never return errors: a cache that cannot answer
// behaves as a miss.
type Store interface {
	// Get returns the cached list, or nil on miss, expiry, or disabled
	// caching. Expired entries are evicted lazily here, never returned.
	Get() []domain.Vehicle
	// Set replaces the slot with the given list, timestamped now.
	Set(vehicles []domain.Vehicle)
	// Clear empties the slot unconditionally.
	Clear()
}

// Memory is the in-process Store. A TTL of exactly 0 disables caching:
// every Get returns nil and forces a fresh fetch.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	at   time.Time
	data []domain.Vehicle
}

// NewMemory constructs a Memory store with the given TTL. now is the
// clock; pass nil for time.Now. Tests inject a fake clock so TTL expiry
// is verifiable without real time passing.
func NewMemory(ttl time.Duration, now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{ttl: ttl, now: now}
}

// Get returns the cached list while the entry is younger than the TTL,
// evicting lazily otherwise. Callers must treat the returned slice as
// read-only: the slot hands out the stored slice, not a copy.
func (m *Memory) Get() []domain.Vehicle {
	if m.ttl == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	if m.now().Sub(m.at) >= m.ttl {
		m.data = nil
		m.at = time.Time{}
		return nil
	}
	return m.data
}

// Set replaces the slot. The last successful Set wins regardless of which
// request started first, an accepted race mitigated by the short TTL and
// by mutation-triggered invalidation.
func (m *Memory) Set(vehicles []domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = vehicles
	m.at = m.now()
}

// Clear empties the slot.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.at = time.Time{}
}
