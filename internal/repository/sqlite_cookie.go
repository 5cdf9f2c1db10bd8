package repository

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexanderramin/punchclock/internal/db"
)

// SQLiteCookieRepo implements CookieStore on the cookies table.
type SQLiteCookieRepo struct {
	db  db.DBTX
	uow db.UnitOfWork
}

// NewSQLiteCookieRepo creates a new SQLiteCookieRepo. ReplaceHost runs
// inside uow so a host's cookie set is swapped atomically.
func NewSQLiteCookieRepo(conn db.DBTX, uow db.UnitOfWork) *SQLiteCookieRepo {
	return &SQLiteCookieRepo{db: conn, uow: uow}
}

// LoadAll returns every stored cookie that has not expired.
func (r *SQLiteCookieRepo) LoadAll(ctx context.Context) ([]StoredCookie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT host, name, path, value, expires, secure, http_only FROM cookies ORDER BY host, name`)
	if err != nil {
		return nil, storageErr("listing cookies", err)
	}
	defer rows.Close()

	now := time.Now()
	var out []StoredCookie
	for rows.Next() {
		var host string
		var c http.Cookie
		var expires sql.NullString
		var secure, httpOnly int
		if err := rows.Scan(&host, &c.Name, &c.Path, &c.Value, &expires, &secure, &httpOnly); err != nil {
			return nil, storageErr("scanning cookie", err)
		}
		if t := parseNullableTime(expires, time.RFC3339); t != nil {
			if t.Before(now) {
				continue
			}
			c.Expires = *t
		}
		c.Secure = intToBool(secure)
		c.HttpOnly = intToBool(httpOnly)
		out = append(out, StoredCookie{Host: host, Cookie: &c})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating cookies", err)
	}
	return out, nil
}

// ReplaceHost swaps the stored cookies for host with cookies.
func (r *SQLiteCookieRepo) ReplaceHost(ctx context.Context, host string, cookies []*http.Cookie) error {
	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cookies WHERE host = ?`, host); err != nil {
			return err
		}
		for _, c := range cookies {
			path := c.Path
			if path == "" {
				path = "/"
			}
			_, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO cookies (host, name, path, value, expires, secure, http_only)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				host, c.Name, path, c.Value,
				nullableTimeToString(c.Expires, time.RFC3339),
				boolToInt(c.Secure), boolToInt(c.HttpOnly),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("replacing cookies for "+host, err)
	}
	return nil
}
