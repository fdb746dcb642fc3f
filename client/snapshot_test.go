package client_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dararith/vehicle-inventory/backend/client"
	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

func TestFileSnapshotStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store := client.NewFileSnapshotStore(path)

	saved := &client.Snapshot{
		Vehicles: []domain.Vehicle{{VehicleID: "1", Brand: "Honda"}},
		Meta:     domain.VehicleMeta{Total: 1},
		SyncedAt: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved.Vehicles, loaded.Vehicles)
	assert.Equal(t, saved.Meta, loaded.Meta)
	assert.True(t, saved.SyncedAt.Equal(loaded.SyncedAt))
}

func TestFileSnapshotStore_MissingFileIsNotAnError(t *testing.T) {
	store := client.NewFileSnapshotStore(filepath.Join(t.TempDir(), "absent.json"))

	loaded, err := store.Load()

	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileSnapshotStore_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{torn write"), 0o644))

	_, err := client.NewFileSnapshotStore(path).Load()

	assert.Error(t, err)
}

func TestFileSnapshotStore_SaveReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store := client.NewFileSnapshotStore(path)

	require.NoError(t, store.Save(&client.Snapshot{Vehicles: []domain.Vehicle{{VehicleID: "old"}}}))
	require.NoError(t, store.Save(&client.Snapshot{Vehicles: []domain.Vehicle{{VehicleID: "new"}}}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Vehicles, 1)
	assert.Equal(t, "new", loaded.Vehicles[0].VehicleID)

	// No temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
