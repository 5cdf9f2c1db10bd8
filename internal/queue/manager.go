package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/observability"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/google/uuid"
)

// Sender delivers one clock event to the backend.
type Sender interface {
	SendClockEvent(ctx context.Context, ev domain.ClockEvent) error
}

// FlushResult summarizes one flush pass.
type FlushResult struct {
	Sent      int
	Remaining int
	// StoppedBy is the send error that ended the pass early, if any.
	StoppedBy error
}

// Manager queues clock events locally and replays them in creation order.
type Manager struct {
	store    repository.ActionStore
	sender   Sender
	observer observability.UseCaseObserver
	now      func() time.Time

	flushMu sync.Mutex

	mu        sync.Mutex
	lastMs    int64
	seeded    bool
	listeners map[int]func(int)
	nextSubID int
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithObserver reports enqueue and flush executions to obs.
func WithObserver(obs observability.UseCaseObserver) Option {
	return func(m *Manager) { m.observer = observability.OrNoop(obs) }
}

// NewManager creates a queue Manager over store, replaying through sender.
func NewManager(store repository.ActionStore, sender Sender, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		sender:    sender,
		observer:  observability.NoopUseCaseObserver{},
		now:       time.Now,
		listeners: make(map[int]func(int)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enqueue persists ev for later delivery. A ClientEventID already on ev is
// kept as the action ID so a send that may have reached the backend is
// replayed under the same key; otherwise a new UUID is assigned. No network
// I/O happens here.
func (m *Manager) Enqueue(ctx context.Context, ev domain.ClockEvent) (a *domain.PendingAction, err error) {
	done := observability.Track(ctx, m.observer, "queue.enqueue", map[string]any{"kind": string(ev.Kind)})
	defer func() { done(err) }()

	if err := ev.Validate(); err != nil {
		return nil, err
	}

	id := ev.ClientEventID
	if id == "" {
		id = uuid.NewString()
	}
	now := m.now()
	ts := now
	if ev.TsUTC != nil {
		ts = *ev.TsUTC
	}

	createdAtMs, err := m.nextCreatedAtMs(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("enqueueing %s: %w", ev.Kind, err)
	}
	a = &domain.PendingAction{
		ID:          id,
		CreatedAtMs: createdAtMs,
		Payload:     ev.WithIdempotency(id, ts),
	}
	if err := m.store.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("enqueueing %s: %w", ev.Kind, err)
	}
	if err := m.notify(ctx); err != nil {
		return a, err
	}
	return a, nil
}

// nextCreatedAtMs returns the wall clock in ms, bumped past the last value
// issued so actions enqueued in the same millisecond keep their order. The
// first call also starts after anything an earlier process left queued, so a
// clock that stepped back between runs cannot reorder the replay.
func (m *Manager) nextCreatedAtMs(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.seeded {
		stored, err := m.store.MaxCreatedAtMs(ctx)
		if err != nil {
			return 0, err
		}
		m.lastMs = max(m.lastMs, stored)
		m.seeded = true
	}
	ms := now.UnixMilli()
	if ms <= m.lastMs {
		ms = m.lastMs + 1
	}
	m.lastMs = ms
	return ms, nil
}

// Flush sends queued actions oldest first, deleting each after the backend
// accepts it. The first send failure stops the pass and leaves that action
// and everything after it queued. Storage failures are returned; send
// failures are reported in FlushResult.StoppedBy. Concurrent calls run one
// after another.
func (m *Manager) Flush(ctx context.Context) (res FlushResult, err error) {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	fields := map[string]any{}
	done := observability.Track(ctx, m.observer, "queue.flush", fields)
	defer func() {
		fields["sent"] = res.Sent
		fields["remaining"] = res.Remaining
		if res.StoppedBy != nil {
			fields["stopped_by"] = res.StoppedBy.Error()
		}
		done(err)
	}()

	for a, iterErr := range m.store.IterateOrdered(ctx) {
		if iterErr != nil {
			return m.finish(ctx, res, iterErr)
		}
		if sendErr := m.sender.SendClockEvent(ctx, a.Payload); sendErr != nil {
			res.StoppedBy = sendErr
			break
		}
		if delErr := m.store.Delete(ctx, a.ID); delErr != nil {
			return m.finish(ctx, res, delErr)
		}
		res.Sent++
		if notifyErr := m.notify(ctx); notifyErr != nil {
			return m.finish(ctx, res, notifyErr)
		}
	}
	return m.finish(ctx, res, nil)
}

func (m *Manager) finish(ctx context.Context, res FlushResult, err error) (FlushResult, error) {
	n, countErr := m.store.Count(ctx)
	if countErr != nil && err == nil {
		err = countErr
	}
	res.Remaining = n
	return res, err
}

// Count returns the number of queued actions.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.store.Count(ctx)
}

// Oldest reports when the action at the head of the queue was stored; zero
// when the queue is empty.
func (m *Manager) Oldest(ctx context.Context) (time.Time, error) {
	return m.store.OldestEnqueuedAt(ctx)
}

// List returns queued actions oldest first.
func (m *Manager) List(ctx context.Context) ([]*domain.PendingAction, error) {
	return m.store.List(ctx)
}

// Drop removes one queued action without sending it. It waits for any
// running flush.
func (m *Manager) Drop(ctx context.Context, id string) error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	if _, err := m.store.Get(ctx, id); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	return m.notify(ctx)
}

// Subscribe calls fn with the current count now and after every change,
// in subscription order on the goroutine that made the change.
func (m *Manager) Subscribe(ctx context.Context, fn func(int)) (unsubscribe func(), err error) {
	n, err := m.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.listeners[id] = fn
	m.mu.Unlock()

	fn(n)
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}, nil
}

func (m *Manager) notify(ctx context.Context) error {
	m.mu.Lock()
	if len(m.listeners) == 0 {
		m.mu.Unlock()
		return nil
	}
	fns := make([]func(int), 0, len(m.listeners))
	for id := 0; id < m.nextSubID; id++ {
		if fn, ok := m.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	n, err := m.store.Count(ctx)
	if err != nil {
		return err
	}
	for _, fn := range fns {
		fn(n)
	}
	return nil
}

// RunAutoFlush flushes once immediately and again on every signal from
// online until ctx ends or online closes. Failures are reported to the
// observer and otherwise ignored.
func (m *Manager) RunAutoFlush(ctx context.Context, online <-chan struct{}) {
	_, _ = m.Flush(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-online:
			if !ok {
				return
			}
			_, _ = m.Flush(ctx)
		}
	}
}
