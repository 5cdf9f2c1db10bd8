package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionRepo(t *testing.T) *SQLiteActionRepo {
	t.Helper()
	return NewSQLiteActionRepo(testutil.NewTestDB(t))
}

func collectIDs(t *testing.T, repo *SQLiteActionRepo) []string {
	t.Helper()
	var ids []string
	for a, err := range repo.IterateOrdered(context.Background()) {
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	return ids
}

func TestActionRepo_PutAndGet(t *testing.T) {
	repo := actionRepo(t)
	ctx := context.Background()

	arrive, err := domain.NewArrive(domain.LocationHome, &domain.Geo{Lat: 48.1, Lng: 11.5})
	require.NoError(t, err)
	a := testutil.NewTestAction(testutil.WithActionID("a1"), testutil.WithPayload(arrive))
	require.NoError(t, repo.Put(ctx, a))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, a.CreatedAtMs, got.CreatedAtMs)
	assert.Equal(t, domain.ClockArrive, got.Payload.Kind)
	assert.Equal(t, "a1", got.Payload.ClientEventID)
	require.NotNil(t, got.Payload.Location)
	assert.Equal(t, domain.LocationHome, *got.Payload.Location)
	require.NotNil(t, got.Payload.Geo)
	assert.InDelta(t, 48.1, got.Payload.Geo.Lat, 1e-9)
}

func TestActionRepo_Get_NotFound(t *testing.T) {
	repo := actionRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrStorage)
}

func TestActionRepo_Put_SameIDOverwrites(t *testing.T) {
	repo := actionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("dup"), testutil.WithCreatedAtMs(10))))
	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("dup"), testutil.WithCreatedAtMs(20))))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.CreatedAtMs)
}

func TestActionRepo_IterateOrdered_OldestFirst(t *testing.T) {
	repo := actionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("t3"), testutil.WithCreatedAtMs(300))))
	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("t1"), testutil.WithCreatedAtMs(100))))
	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("t2"), testutil.WithCreatedAtMs(200))))

	assert.Equal(t, []string{"t1", "t2", "t3"}, collectIDs(t, repo))
}

func TestActionRepo_IterateOrdered_TiesBrokenByID(t *testing.T) {
	repo := actionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("b"), testutil.WithCreatedAtMs(5))))
	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("a"), testutil.WithCreatedAtMs(5))))

	assert.Equal(t, []string{"a", "b"}, collectIDs(t, repo))
}

func TestActionRepo_IterateOrdered_DeleteDuringIteration(t *testing.T) {
	repo := actionRepo(t)
	ctx := context.Background()

	for i, id := range []string{"x1", "x2", "x3"} {
		require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID(id), testutil.WithCreatedAtMs(int64(i+1)))))
	}

	var seen []string
	for a, err := range repo.IterateOrdered(ctx) {
		require.NoError(t, err)
		seen = append(seen, a.ID)
		require.NoError(t, repo.Delete(ctx, a.ID))
	}

	assert.Equal(t, []string{"x1", "x2", "x3"}, seen)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestActionRepo_IterateOrdered_Restartable(t *testing.T) {
	repo := actionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("r1"), testutil.WithCreatedAtMs(1))))
	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("r2"), testutil.WithCreatedAtMs(2))))

	seq := repo.IterateOrdered(ctx)
	for a, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, "r1", a.ID)
		break
	}

	var again []string
	for a, err := range seq {
		require.NoError(t, err)
		again = append(again, a.ID)
	}
	assert.Equal(t, []string{"r1", "r2"}, again)
}

func TestActionRepo_EmptyQueue(t *testing.T) {
	repo := actionRepo(t)

	assert.Empty(t, collectIDs(t, repo))
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	oldest, err := repo.OldestEnqueuedAt(context.Background())
	require.NoError(t, err)
	assert.True(t, oldest.IsZero())
}

func TestActionRepo_CorruptPayloadIsStorageFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActionRepo(database)
	ctx := context.Background()

	_, err := database.Exec(`INSERT INTO pending_actions (id, created_at_ms, kind, payload) VALUES ('bad', 1, 'GO', 'not json')`)
	require.NoError(t, err)

	_, err = repo.Get(ctx, "bad")
	assert.ErrorIs(t, err, ErrStorage)

	var iterErr error
	for _, err := range repo.IterateOrdered(ctx) {
		iterErr = err
	}
	assert.ErrorIs(t, iterErr, ErrStorage)
}

func TestActionRepo_ClosedDatabaseIsStorageFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActionRepo(database)
	require.NoError(t, database.Close())

	err := repo.Put(context.Background(), testutil.NewTestAction())
	var sf *StorageFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, "upserting pending action", sf.Op)

	_, err = repo.Count(context.Background())
	assert.ErrorIs(t, err, ErrStorage)
}

func TestActionRepo_MaxCreatedAtMs(t *testing.T) {
	repo := actionRepo(t)
	ctx := context.Background()

	ms, err := repo.MaxCreatedAtMs(ctx)
	require.NoError(t, err)
	assert.Zero(t, ms)

	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("m2"), testutil.WithCreatedAtMs(200))))
	require.NoError(t, repo.Put(ctx, testutil.NewTestAction(testutil.WithActionID("m1"), testutil.WithCreatedAtMs(100))))

	ms, err = repo.MaxCreatedAtMs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(200), ms)
}
