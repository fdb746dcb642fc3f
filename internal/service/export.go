package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// ExportCSV streams the complete vehicle list as CSV: one header row in
// domain.ExportColumns order, then one record per vehicle. It reads
// through the cache like List but applies no projections; an export is
// always the full dataset.
func (s *VehicleService) ExportCSV(ctx context.Context, w io.Writer) error {
	vehicles := s.cache.Get()
	if vehicles == nil {
		var err error
		vehicles, err = s.refresh(ctx)
		if err != nil {
			return fmt.Errorf("service.VehicleService.ExportCSV: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ExportColumns); err != nil {
		return fmt.Errorf("service.VehicleService.ExportCSV: write header: %w", err)
	}
	for _, v := range vehicles {
		if err := cw.Write(domain.ExportRecord(v)); err != nil {
			return fmt.Errorf("service.VehicleService.ExportCSV: write record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("service.VehicleService.ExportCSV: flush: %w", err)
	}
	return nil
}
