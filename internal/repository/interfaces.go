package repository

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
)

// ActionStore is the durable queue of pending clock actions.
type ActionStore interface {
	// Put upserts by ID; putting the same ID twice leaves one row.
	Put(ctx context.Context, a *domain.PendingAction) error
	Get(ctx context.Context, id string) (*domain.PendingAction, error)
	// IterateOrdered yields actions oldest first by CreatedAtMs. The sequence
	// is lazy and may be ranged over again to restart from the oldest row.
	IterateOrdered(ctx context.Context) iter.Seq2[*domain.PendingAction, error]
	List(ctx context.Context) ([]*domain.PendingAction, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	// MaxCreatedAtMs is the largest ordering key stored, 0 when empty.
	MaxCreatedAtMs(ctx context.Context) (int64, error)
	// OldestEnqueuedAt is the wall-clock time the head of the queue was
	// stored, or the zero time when the queue is empty.
	OldestEnqueuedAt(ctx context.Context) (time.Time, error)
}

// IdentityStore persists the last known identity and the sign-in flash
// message across process restarts. The access token is never stored.
type IdentityStore interface {
	LoadIdentity(ctx context.Context) (*domain.Identity, error)
	SaveIdentity(ctx context.Context, id domain.Identity) error
	ClearIdentity(ctx context.Context) error
	SetFlash(ctx context.Context, msg string) error
	TakeFlash(ctx context.Context) (string, error)
}

// StoredCookie is a cookie together with the host it was received from.
type StoredCookie struct {
	Host   string
	Cookie *http.Cookie
}

// CookieStore mirrors the HTTP cookie jar so refresh credentials survive
// restarts.
type CookieStore interface {
	LoadAll(ctx context.Context) ([]StoredCookie, error)
	ReplaceHost(ctx context.Context, host string, cookies []*http.Cookie) error
}
