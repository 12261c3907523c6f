package janitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubely/database"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestSweepScratch(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := now.Add(-48 * time.Hour)

	touch(t, filepath.Join(dir, "stale.mp4"), old)
	touch(t, filepath.Join(dir, "stale.processing.mp4"), old)
	touch(t, filepath.Join(dir, "fresh.mp4"), now)
	touch(t, filepath.Join(dir, "thumb.png"), old)

	j := &Janitor{AssetsDir: dir, MaxAge: 24 * time.Hour, now: func() time.Time { return now }}
	removed, err := j.SweepScratch()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.NoFileExists(t, filepath.Join(dir, "stale.mp4"))
	assert.NoFileExists(t, filepath.Join(dir, "stale.processing.mp4"))
	assert.FileExists(t, filepath.Join(dir, "fresh.mp4"))
	assert.FileExists(t, filepath.Join(dir, "thumb.png"))
}

func TestSweepScratchDisabled(t *testing.T) {
	removed, err := (&Janitor{}).SweepScratch()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRunOnceExpiresTempURLs(t *testing.T) {
	d, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := database.NewTempURLStore(d)
	ctx := context.Background()
	token, err := store.CreateTempURL(ctx, "other/a.mp4", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	j := &Janitor{DB: d, TempURLs: store, AssetsDir: t.TempDir(), MaxAge: time.Hour}
	j.RunOnce()

	var count int64
	require.NoError(t, d.Model(&database.TempURL{}).Where("token = ?", token).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	j := &Janitor{}
	_, err := j.Start("not a schedule")
	assert.Error(t, err)

	c, err := j.Start("@every 1h")
	require.NoError(t, err)
	c.Stop()
}
