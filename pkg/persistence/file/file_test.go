package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/persistence"
	"github.com/dukex/decmed/pkg/persistence/file"
)

func TestStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store := file.NewStore("file://" + t.TempDir())

	_, err := store.Load(ctx, models.ClientHospital)
	require.True(t, persistence.IsSessionNotFound(err))

	snapshot := &persistence.Snapshot{
		Client:     models.ClientHospital,
		Role:       models.RoleRef(models.RoleMedicalPersonnel),
		SignedInAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, snapshot))

	loaded, err := store.Load(ctx, models.ClientHospital)
	require.NoError(t, err)
	assert.Equal(t, snapshot, loaded)

	_, err = store.Load(ctx, models.ClientPatient)
	assert.True(t, persistence.IsSessionNotFound(err))

	require.NoError(t, store.Clear(ctx, models.ClientHospital))
	require.NoError(t, store.Clear(ctx, models.ClientHospital))

	_, err = store.Load(ctx, models.ClientHospital)
	assert.True(t, persistence.IsSessionNotFound(err))
}

func TestStore_CorruptSnapshot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "session-patient.json"), []byte("{"), 0o600))

	_, err := file.NewStore(root).Load(context.Background(), models.ClientPatient)
	assert.True(t, persistence.IsCorruptSession(err))
}

func TestStore_HealthCheck(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, file.NewStore(t.TempDir()).HealthCheck(ctx))
	assert.Error(t, file.NewStore(filepath.Join(t.TempDir(), "missing")).HealthCheck(ctx))
}
