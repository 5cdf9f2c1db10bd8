package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/alexanderramin/punchclock/internal/queue"
	"github.com/alexanderramin/punchclock/internal/session"
)

// SessionPort is the part of the session manager the CLI drives.
type SessionPort interface {
	State() session.State
	Restore(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	Register(ctx context.Context, email, password string) (*domain.Identity, error)
	Logout(ctx context.Context) error
	TakeFlash(ctx context.Context) (string, error)
	TokenExpiry() (time.Time, bool)
}

// QueuePort is the part of the queue manager the CLI drives.
type QueuePort interface {
	Count(ctx context.Context) (int, error)
	Oldest(ctx context.Context) (time.Time, error)
	List(ctx context.Context) ([]*domain.PendingAction, error)
	Flush(ctx context.Context) (queue.FlushResult, error)
	Drop(ctx context.Context, id string) error
	Subscribe(ctx context.Context, fn func(int)) (func(), error)
}

// EventLister lists recorded clock events.
type EventLister interface {
	ListClockEvents(ctx context.Context, limit int) ([]domain.ClockEventRecord, error)
}

// OnlineChecker probes backend reachability once.
type OnlineChecker interface {
	Check(ctx context.Context) bool
}

// OnlineSignaller delivers unreachable -> reachable transitions.
type OnlineSignaller interface {
	Subscribe() <-chan struct{}
}

func (a *App) lang() i18n.Lang {
	if a.Lang == "" {
		return i18n.EN
	}
	return a.Lang
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) today() string {
	return a.now().Format(time.DateOnly)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) online(ctx context.Context) bool {
	return a.Online == nil || a.Online.Check(ctx)
}
