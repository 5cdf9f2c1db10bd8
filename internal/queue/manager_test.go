package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("offline")

type recordingSender struct {
	mu     sync.Mutex
	sent   []string
	failOn map[string]error
	delay  time.Duration
}

func (s *recordingSender) SendClockEvent(_ context.Context, ev domain.ClockEvent) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failOn[ev.ClientEventID]; ok {
		return err
	}
	s.sent = append(s.sent, ev.ClientEventID)
	return nil
}

func (s *recordingSender) setFail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn == nil {
		s.failOn = make(map[string]error)
	}
	if err == nil {
		delete(s.failOn, id)
		return
	}
	s.failOn[id] = err
}

func (s *recordingSender) sentIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestManager(t *testing.T, sender Sender, opts ...Option) (*Manager, *repository.SQLiteActionRepo) {
	t.Helper()
	store := repository.NewSQLiteActionRepo(testutil.NewTestDB(t))
	return NewManager(store, sender, opts...), store
}

func enqueueIDs(t *testing.T, m *Manager, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := m.Enqueue(context.Background(), domain.ClockEvent{Kind: domain.ClockDepart, ClientEventID: id})
		require.NoError(t, err)
	}
}

func TestEnqueue_AssignsIDAndTimestamp(t *testing.T) {
	now := time.Date(2026, 10, 16, 7, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	m, store := newTestManager(t, &recordingSender{}, WithClock(fixedClock(now)))

	arrive, err := domain.NewArrive(domain.LocationOffice, nil)
	require.NoError(t, err)
	a, err := m.Enqueue(context.Background(), arrive)
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, a.Payload.ClientEventID)
	assert.Equal(t, now.UnixMilli(), a.CreatedAtMs)
	require.NotNil(t, a.Payload.TsUTC)
	assert.Equal(t, time.UTC, a.Payload.TsUTC.Location())
	assert.True(t, now.Equal(*a.Payload.TsUTC))

	stored, err := store.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Payload.ClientEventID, stored.Payload.ClientEventID)
}

func TestEnqueue_KeepsCallerEventIDAndTimestamp(t *testing.T) {
	m, _ := newTestManager(t, &recordingSender{})
	ts := time.Date(2026, 10, 16, 5, 0, 0, 0, time.UTC)

	a, err := m.Enqueue(context.Background(), domain.NewBreakStart().WithIdempotency("already-sent-once", ts))
	require.NoError(t, err)

	assert.Equal(t, "already-sent-once", a.ID)
	assert.True(t, ts.Equal(*a.Payload.TsUTC))
}

func TestEnqueue_SameMillisecondKeepsOrder(t *testing.T) {
	sender := &recordingSender{}
	m, _ := newTestManager(t, sender, WithClock(fixedClock(time.UnixMilli(1_000))))

	enqueueIDs(t, m, "c", "a", "b")

	list, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(1000), list[0].CreatedAtMs)
	assert.Equal(t, int64(1001), list[1].CreatedAtMs)
	assert.Equal(t, int64(1002), list[2].CreatedAtMs)

	_, err = m.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, sender.sentIDs())
}

func TestEnqueue_RejectsInvalidEvent(t *testing.T) {
	m, store := newTestManager(t, &recordingSender{})
	loc := domain.LocationHome

	_, err := m.Enqueue(context.Background(), domain.ClockEvent{Kind: domain.ClockBreakEnd, Location: &loc})
	assert.ErrorIs(t, err, domain.ErrFieldNotAllowed)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEnqueue_DoesNotSend(t *testing.T) {
	sender := &recordingSender{}
	m, _ := newTestManager(t, sender)

	enqueueIDs(t, m, "x")

	assert.Empty(t, sender.sentIDs())
}

func TestFlush_StopsAtFirstFailure(t *testing.T) {
	sender := &recordingSender{}
	m, _ := newTestManager(t, sender)
	enqueueIDs(t, m, "t1", "t2", "t3")
	sender.setFail("t2", errOffline)

	res, err := m.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 2, res.Remaining)
	assert.ErrorIs(t, res.StoppedBy, errOffline)
	assert.Equal(t, []string{"t1"}, sender.sentIDs())

	list, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t2", list[0].ID)
	assert.Equal(t, "t3", list[1].ID)

	sender.setFail("t2", nil)
	res, err = m.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Zero(t, res.Remaining)
	assert.NoError(t, res.StoppedBy)
	assert.Equal(t, []string{"t1", "t2", "t3"}, sender.sentIDs())
}

func TestFlush_EmptyQueue(t *testing.T) {
	m, _ := newTestManager(t, &recordingSender{})

	res, err := m.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FlushResult{}, res)
}

func TestFlush_ConcurrentCallsSendEachOnce(t *testing.T) {
	sender := &recordingSender{delay: 5 * time.Millisecond}
	m, _ := newTestManager(t, sender)
	enqueueIDs(t, m, "a", "b", "c", "d")

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Flush(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"a", "b", "c", "d"}, sender.sentIDs())
	n, err := m.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubscribe_ImmediateThenOnChange(t *testing.T) {
	sender := &recordingSender{}
	m, _ := newTestManager(t, sender)
	enqueueIDs(t, m, "pre")

	var order []string
	var counts []int
	unsubA, err := m.Subscribe(context.Background(), func(n int) {
		order = append(order, "a")
		counts = append(counts, n)
	})
	require.NoError(t, err)
	unsubB, err := m.Subscribe(context.Background(), func(int) { order = append(order, "b") })
	require.NoError(t, err)
	defer unsubB()

	enqueueIDs(t, m, "next")
	_, err = m.Flush(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 1, 0}, counts)
	assert.Equal(t, []string{"a", "b", "a", "b", "a", "b", "a", "b"}, order)

	unsubA()
	enqueueIDs(t, m, "after")
	assert.Len(t, counts, 4)
}

func TestDrop_RemovesStuckHead(t *testing.T) {
	sender := &recordingSender{}
	m, _ := newTestManager(t, sender)
	enqueueIDs(t, m, "stuck", "ok")
	sender.setFail("stuck", errors.New("Invalid transition"))

	res, err := m.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)

	require.NoError(t, m.Drop(context.Background(), "stuck"))
	res, err = m.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, []string{"ok"}, sender.sentIDs())

	err = m.Drop(context.Background(), "stuck")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorageFailureIsSurfaced(t *testing.T) {
	database := testutil.NewTestDB(t)
	m := NewManager(repository.NewSQLiteActionRepo(database), &recordingSender{})
	require.NoError(t, database.Close())

	_, err := m.Enqueue(context.Background(), domain.NewDepart())
	assert.ErrorIs(t, err, repository.ErrStorage)

	_, err = m.Flush(context.Background())
	assert.ErrorIs(t, err, repository.ErrStorage)

	_, err = m.Subscribe(context.Background(), func(int) {})
	assert.ErrorIs(t, err, repository.ErrStorage)
}

func TestRunAutoFlush_FlushesOnStartAndOnline(t *testing.T) {
	sender := &recordingSender{}
	m, _ := newTestManager(t, sender)
	enqueueIDs(t, m, "first")

	online := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunAutoFlush(ctx, online)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(sender.sentIDs()) == 1 }, 2*time.Second, 5*time.Millisecond)

	sender.setFail("second", errOffline)
	enqueueIDs(t, m, "second")
	online <- struct{}{}
	sender.setFail("second", nil)
	online <- struct{}{}

	require.Eventually(t, func() bool {
		n, err := m.Count(context.Background())
		return err == nil && n == 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, sender.sentIDs())

	cancel()
	<-done
}

func TestEnqueue_SameIDTwiceKeepsOneAction(t *testing.T) {
	sender := &recordingSender{}
	m, _ := newTestManager(t, sender)
	enqueueIDs(t, m, "dup", "dup")

	n, err := m.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := m.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, []string{"dup"}, sender.sentIDs())
}

func TestOldest_TracksQueueHead(t *testing.T) {
	m, _ := newTestManager(t, &recordingSender{})
	ctx := context.Background()

	oldest, err := m.Oldest(ctx)
	require.NoError(t, err)
	assert.True(t, oldest.IsZero())

	before := time.Now().Add(-time.Second)
	enqueueIDs(t, m, "a", "b")
	oldest, err = m.Oldest(ctx)
	require.NoError(t, err)
	assert.False(t, oldest.IsZero())
	assert.True(t, oldest.After(before))

	_, err = m.Flush(ctx)
	require.NoError(t, err)
	oldest, err = m.Oldest(ctx)
	require.NoError(t, err)
	assert.True(t, oldest.IsZero())
}

func TestEnqueue_ClockSteppedBackAcrossRestartKeepsOrder(t *testing.T) {
	sender := &recordingSender{}
	store := repository.NewSQLiteActionRepo(testutil.NewTestDB(t))
	now := time.Date(2026, 10, 16, 17, 0, 0, 0, time.UTC)

	first := NewManager(store, sender, WithClock(fixedClock(now)))
	enqueueIDs(t, first, "arrive")

	restarted := NewManager(store, sender, WithClock(fixedClock(now.Add(-2*time.Second))))
	enqueueIDs(t, restarted, "depart")

	arrive, err := store.Get(context.Background(), "arrive")
	require.NoError(t, err)
	depart, err := store.Get(context.Background(), "depart")
	require.NoError(t, err)
	assert.Greater(t, depart.CreatedAtMs, arrive.CreatedAtMs)

	res, err := restarted.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, []string{"arrive", "depart"}, sender.sentIDs())
}
