package service

import (
	"context"
	"fmt"
	"time"
)

// SyncResult reports the outcome of a proactive cache refresh.
type SyncResult struct {
	// Count is the number of valid vehicles now in the cache.
	Count int
	// Duration is how long the full pagination fetch took.
	Duration time.Duration
	// RefreshedAt is when the new snapshot was stored.
	RefreshedAt time.Time
}

// Sync refreshes the cache proactively, ahead of TTL expiry, so the
// first dashboard load after a quiet period hits a warm slot. Driven by
// the bearer-protected cron endpoint.
func (s *VehicleService) Sync(ctx context.Context) (SyncResult, error) {
	start := s.now()
	vehicles, err := s.refresh(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("service.VehicleService.Sync: %w", err)
	}
	return SyncResult{
		Count:       len(vehicles),
		Duration:    s.now().Sub(start),
		RefreshedAt: s.now(),
	}, nil
}
