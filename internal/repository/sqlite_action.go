package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/alexanderramin/punchclock/internal/db"
	"github.com/alexanderramin/punchclock/internal/domain"
)

// SQLiteActionRepo implements ActionStore on the pending_actions table.
type SQLiteActionRepo struct {
	db db.DBTX
}

// NewSQLiteActionRepo creates a new SQLiteActionRepo.
func NewSQLiteActionRepo(conn db.DBTX) *SQLiteActionRepo {
	return &SQLiteActionRepo{db: conn}
}

const actionColumns = `id, created_at_ms, kind, payload`

func (r *SQLiteActionRepo) Put(ctx context.Context, a *domain.PendingAction) error {
	payload, err := encodeJSON(a.Payload)
	if err != nil {
		return storageErr("encoding pending action", err)
	}

	query := `INSERT INTO pending_actions (id, created_at_ms, kind, payload, enqueued_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at_ms = excluded.created_at_ms,
			kind          = excluded.kind,
			payload       = excluded.payload,
			enqueued_at   = excluded.enqueued_at`
	_, err = r.db.ExecContext(ctx, query,
		a.ID,
		a.CreatedAtMs,
		string(a.Payload.Kind),
		payload,
		nowUTC(),
	)
	if err != nil {
		return storageErr("upserting pending action", err)
	}
	return nil
}

func (r *SQLiteActionRepo) Get(ctx context.Context, id string) (*domain.PendingAction, error) {
	query := `SELECT ` + actionColumns + ` FROM pending_actions WHERE id = ?`
	return r.scanAction(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteActionRepo) IterateOrdered(ctx context.Context) iter.Seq2[*domain.PendingAction, error] {
	return func(yield func(*domain.PendingAction, error) bool) {
		afterMs, afterID := int64(math.MinInt64), ""
		for {
			a, err := r.nextAfter(ctx, afterMs, afterID)
			if errors.Is(err, ErrNotFound) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(a, nil) {
				return
			}
			afterMs, afterID = a.CreatedAtMs, a.ID
		}
	}
}

// nextAfter returns the first action strictly after the (created_at_ms, id)
// key. Each step is its own query so no cursor stays open while the caller
// sends or deletes.
func (r *SQLiteActionRepo) nextAfter(ctx context.Context, afterMs int64, afterID string) (*domain.PendingAction, error) {
	query := `SELECT ` + actionColumns + ` FROM pending_actions
		WHERE created_at_ms > ? OR (created_at_ms = ? AND id > ?)
		ORDER BY created_at_ms, id
		LIMIT 1`
	return r.scanAction(r.db.QueryRowContext(ctx, query, afterMs, afterMs, afterID))
}

func (r *SQLiteActionRepo) List(ctx context.Context) ([]*domain.PendingAction, error) {
	query := `SELECT ` + actionColumns + ` FROM pending_actions ORDER BY created_at_ms, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("listing pending actions", err)
	}
	defer rows.Close()

	var out []*domain.PendingAction
	for rows.Next() {
		var a domain.PendingAction
		var kind, payload string
		if err := rows.Scan(&a.ID, &a.CreatedAtMs, &kind, &payload); err != nil {
			return nil, storageErr("scanning pending action", err)
		}
		if err := populateAction(&a, kind, payload); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating pending actions", err)
	}
	return out, nil
}

func (r *SQLiteActionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE id = ?`, id)
	if err != nil {
		return storageErr("deleting pending action", err)
	}
	return nil
}

func (r *SQLiteActionRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_actions`).Scan(&n); err != nil {
		return 0, storageErr("counting pending actions", err)
	}
	return n, nil
}

// MaxCreatedAtMs returns the ordering key of the newest queued action, or 0
// for an empty queue.
func (r *SQLiteActionRepo) MaxCreatedAtMs(ctx context.Context) (int64, error) {
	var ms int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(created_at_ms), 0) FROM pending_actions`).Scan(&ms)
	if err != nil {
		return 0, storageErr("reading newest pending action", err)
	}
	return ms, nil
}

// OldestEnqueuedAt reports when the oldest queued action was stored, or the
// zero time for an empty queue.
func (r *SQLiteActionRepo) OldestEnqueuedAt(ctx context.Context) (time.Time, error) {
	var s sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT enqueued_at FROM pending_actions ORDER BY created_at_ms, id LIMIT 1`).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, storageErr("reading oldest pending action", err)
	}
	if t := parseNullableTime(s, time.RFC3339); t != nil {
		return *t, nil
	}
	return time.Time{}, nil
}

func (r *SQLiteActionRepo) scanAction(row *sql.Row) (*domain.PendingAction, error) {
	var a domain.PendingAction
	var kind, payload string
	if err := row.Scan(&a.ID, &a.CreatedAtMs, &kind, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pending action: %w", ErrNotFound)
		}
		return nil, storageErr("scanning pending action", err)
	}
	if err := populateAction(&a, kind, payload); err != nil {
		return nil, err
	}
	return &a, nil
}

// populateAction decodes the stored payload. A payload that does not decode
// or disagrees with its kind column is corruption, not a missing row.
func populateAction(a *domain.PendingAction, kind, payload string) error {
	if err := decodeJSON(payload, &a.Payload); err != nil {
		return storageErr("decoding pending action "+a.ID, err)
	}
	if string(a.Payload.Kind) != kind {
		return storageErr("decoding pending action "+a.ID,
			fmt.Errorf("kind column %q does not match payload %q", kind, a.Payload.Kind))
	}
	return nil
}
