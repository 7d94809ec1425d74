package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCleanupService_Sweep(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "stale.mp3")
	fresh := filepath.Join(dir, "fresh.mp3")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	svc := NewUploadCleanupService(dir, time.Hour, testLogger())
	stats, err := svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 1, stats.Removed)
	assert.Zero(t, stats.Failed)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestUploadCleanupService_MissingDir(t *testing.T) {
	svc := NewUploadCleanupService(filepath.Join(t.TempDir(), "absent"), time.Hour, testLogger())

	stats, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Scanned)
}

func TestUploadCleanupService_Cancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp3"), []byte("x"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewUploadCleanupService(dir, time.Hour, testLogger())
	_, err := svc.Sweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
