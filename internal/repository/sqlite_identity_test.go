package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/punchclock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityRepo_SaveLoadClear(t *testing.T) {
	repo := NewSQLiteIdentityRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	_, err := repo.LoadIdentity(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	want := testutil.TestIdentity(7)
	require.NoError(t, repo.SaveIdentity(ctx, want))

	got, err := repo.LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	require.NoError(t, repo.ClearIdentity(ctx))
	_, err = repo.LoadIdentity(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIdentityRepo_UndecodableCacheIsDropped(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteIdentityRepo(database)
	ctx := context.Background()

	_, err := database.Exec(`INSERT INTO local_store (key, value, updated_at) VALUES ('user_cache_v1', '{broken', '')`)
	require.NoError(t, err)

	_, err = repo.LoadIdentity(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM local_store`).Scan(&n))
	assert.Zero(t, n)
}

func TestIdentityRepo_FlashIsTakenOnce(t *testing.T) {
	repo := NewSQLiteIdentityRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	msg, err := repo.TakeFlash(ctx)
	require.NoError(t, err)
	assert.Empty(t, msg)

	require.NoError(t, repo.SetFlash(ctx, "Session expired. Please sign in again."))

	msg, err = repo.TakeFlash(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Session expired. Please sign in again.", msg)

	msg, err = repo.TakeFlash(ctx)
	require.NoError(t, err)
	assert.Empty(t, msg)
}
