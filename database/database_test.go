package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tubely/media"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := Open(":memory:", &media.Video{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return d
}

func strPtr(s string) *string { return &s }

func TestVideoStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewVideoStore(openTestDB(t))

	video := media.Video{ID: "v1", UserID: "u1", Title: "boots", Description: "a video about boots"}
	require.NoError(t, store.Create(ctx, &video))

	got, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "boots", got.Title)
	assert.Nil(t, got.VideoURL)

	got.VideoURL = strPtr("landscape/abc.mp4")
	require.NoError(t, store.Update(ctx, got))

	updated, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, updated.VideoURL)
	assert.Equal(t, "landscape/abc.mp4", *updated.VideoURL)
	assert.Equal(t, "boots", updated.Title)
	assert.Equal(t, "u1", updated.UserID)
}

func TestVideoStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewVideoStore(openTestDB(t))

	_, err := store.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = store.Update(ctx, media.Video{ID: "missing"})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = store.Delete(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestVideoStoreListByUser(t *testing.T) {
	ctx := context.Background()
	store := NewVideoStore(openTestDB(t))

	for _, v := range []media.Video{
		{ID: "a", UserID: "u1"},
		{ID: "b", UserID: "u2"},
		{ID: "c", UserID: "u1"},
	} {
		v := v
		require.NoError(t, store.Create(ctx, &v))
	}

	videos, err := store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, videos, 2)

	require.NoError(t, store.Delete(ctx, "a"))
	videos, err = store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, videos, 1)
}

func TestTempURLStore(t *testing.T) {
	ctx := context.Background()
	store := NewTempURLStore(openTestDB(t))
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	live, err := store.CreateTempURL(ctx, "landscape/a.mp4", now.Add(time.Hour))
	require.NoError(t, err)
	expired, err := store.CreateTempURL(ctx, "portrait/b.mp4", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.NotEqual(t, live, expired)

	key, err := store.Lookup(ctx, live)
	require.NoError(t, err)
	assert.Equal(t, "landscape/a.mp4", key)

	_, err = store.Lookup(ctx, expired)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestGetPanicsWithoutInit(t *testing.T) {
	saved := db
	db = nil
	defer func() { db = saved }()
	assert.Panics(t, func() { Get() })
}
