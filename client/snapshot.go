package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// Snapshot is the persisted mirror of a successful sync, used to paint
// instantly on the next start before any network call resolves.
type Snapshot struct {
	Vehicles []domain.Vehicle   `json:"vehicles"`
	Meta     domain.VehicleMeta `json:"meta"`
	SyncedAt time.Time          `json:"syncedAt"`
}

// SnapshotStore persists the last successful sync. Load returns
// (nil, nil) when no snapshot exists yet.
type SnapshotStore interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
}

// FileSnapshotStore keeps the snapshot as a JSON file.
type FileSnapshotStore struct {
	path string
}

// NewFileSnapshotStore constructs a store writing to path.
func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path}
}

// Load reads and decodes the snapshot file. A missing file is not an
// error; a corrupt one is.
func (s *FileSnapshotStore) Load() (*Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("client.FileSnapshotStore.Load: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("client.FileSnapshotStore.Load: decode: %w", err)
	}
	return &snap, nil
}

// Save writes the snapshot atomically: temp file then rename, so a crash
// mid-write never leaves a torn snapshot behind.
func (s *FileSnapshotStore) Save(snap *Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("client.FileSnapshotStore.Save: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("client.FileSnapshotStore.Save: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("client.FileSnapshotStore.Save: %w", err)
	}
	return nil
}
