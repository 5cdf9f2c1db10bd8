package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/punchclock/internal/accounting"
	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/observability"
	"github.com/alexanderramin/punchclock/internal/transport"
	"github.com/google/uuid"
)

// ErrActionNotAllowed is returned when today's state does not permit the
// requested clock action.
var ErrActionNotAllowed = errors.New("clock action not allowed in current state")

// RecordResult tells the caller where an event ended up. Exactly one of
// Event and Queued is set.
type RecordResult struct {
	Event  *domain.ClockEventRecord
	Queued *domain.PendingAction
}

// WasQueued reports whether the event was stored for later delivery.
func (r *RecordResult) WasQueued() bool { return r.Queued != nil }

type clockService struct {
	api      ClockAPI
	queue    ActionQueue
	observer observability.UseCaseObserver
}

func NewClockService(api ClockAPI, queue ActionQueue, observers ...observability.UseCaseObserver) ClockService {
	return &clockService{api: api, queue: queue, observer: firstObserver(observers)}
}

// Record sends ev to the backend. When no response arrives the same event,
// idempotency key included, is queued instead; a backend rejection is
// returned as is and nothing is queued.
func (s *clockService) Record(ctx context.Context, ev domain.ClockEvent) (res *RecordResult, err error) {
	fields := map[string]any{"kind": string(ev.Kind)}
	done := observability.Track(ctx, s.observer, "clock.record", fields)
	defer func() { done(err) }()

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if ev.ClientEventID == "" {
		ev.ClientEventID = uuid.NewString()
	}
	fields["client_event_id"] = ev.ClientEventID

	rec, err := s.api.CreateClockEvent(ctx, ev)
	if err == nil {
		return &RecordResult{Event: rec}, nil
	}
	if !errors.Is(err, transport.ErrNetworkUnreachable) {
		return nil, err
	}

	a, qerr := s.queue.Enqueue(ctx, ev)
	if qerr != nil {
		return nil, fmt.Errorf("queueing after %v: %w", err, qerr)
	}
	fields["queued"] = true
	return &RecordResult{Queued: a}, nil
}

// Check fetches today's status and returns ErrActionNotAllowed when kind is
// gated off. An unreachable backend is not an error: the action may still
// be queued and the server decides on replay.
func (s *clockService) Check(ctx context.Context, kind domain.ClockKind) error {
	status, err := s.api.Today(ctx)
	if errors.Is(err, transport.ErrNetworkUnreachable) {
		return nil
	}
	if err != nil {
		return err
	}
	if !accounting.Gate(*status).Allows(kind) {
		return fmt.Errorf("%w: %s while %s", ErrActionNotAllowed, kind, status.State)
	}
	return nil
}
