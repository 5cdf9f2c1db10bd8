package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/punchclock/internal/db"
	"github.com/alexanderramin/punchclock/internal/domain"
)

const (
	identityKey = "user_cache_v1"
	flashKey    = "flash"
)

// SQLiteIdentityRepo implements IdentityStore on the local_store table.
type SQLiteIdentityRepo struct {
	db db.DBTX
}

// NewSQLiteIdentityRepo creates a new SQLiteIdentityRepo.
func NewSQLiteIdentityRepo(conn db.DBTX) *SQLiteIdentityRepo {
	return &SQLiteIdentityRepo{db: conn}
}

// LoadIdentity returns ErrNotFound when nothing is cached. A cached value
// that no longer decodes is removed and reported as not found.
func (r *SQLiteIdentityRepo) LoadIdentity(ctx context.Context) (*domain.Identity, error) {
	raw, err := r.get(ctx, identityKey)
	if err != nil {
		return nil, err
	}
	var id domain.Identity
	if err := decodeJSON(raw, &id); err != nil {
		if delErr := r.del(ctx, identityKey); delErr != nil {
			return nil, delErr
		}
		return nil, fmt.Errorf("cached identity: %w", ErrNotFound)
	}
	return &id, nil
}

func (r *SQLiteIdentityRepo) SaveIdentity(ctx context.Context, id domain.Identity) error {
	raw, err := encodeJSON(id)
	if err != nil {
		return storageErr("encoding identity", err)
	}
	return r.set(ctx, identityKey, raw)
}

func (r *SQLiteIdentityRepo) ClearIdentity(ctx context.Context) error {
	return r.del(ctx, identityKey)
}

func (r *SQLiteIdentityRepo) SetFlash(ctx context.Context, msg string) error {
	return r.set(ctx, flashKey, msg)
}

// TakeFlash returns and removes the pending flash message; "" when none.
func (r *SQLiteIdentityRepo) TakeFlash(ctx context.Context) (string, error) {
	msg, err := r.get(ctx, flashKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return msg, r.del(ctx, flashKey)
}

func (r *SQLiteIdentityRepo) get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM local_store WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("local store %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", storageErr("reading "+key, err)
	}
	return v, nil
}

func (r *SQLiteIdentityRepo) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO local_store (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, nowUTC())
	if err != nil {
		return storageErr("writing "+key, err)
	}
	return nil
}

func (r *SQLiteIdentityRepo) del(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM local_store WHERE key = ?`, key); err != nil {
		return storageErr("deleting "+key, err)
	}
	return nil
}
