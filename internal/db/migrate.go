package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form in SQLite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS pending_actions (
		id            TEXT PRIMARY KEY,
		created_at_ms INTEGER NOT NULL,
		kind          TEXT NOT NULL
		              CHECK(kind IN ('COME','GO','BREAK_START','BREAK_END')),
		payload       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_pending_actions_created ON pending_actions(created_at_ms, id)`,

	// Small key/value table for the cached identity and the sign-in flash
	// message.
	`CREATE TABLE IF NOT EXISTS local_store (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS cookies (
		host      TEXT NOT NULL,
		name      TEXT NOT NULL,
		path      TEXT NOT NULL DEFAULT '/',
		value     TEXT NOT NULL,
		expires   TEXT,
		secure    INTEGER NOT NULL DEFAULT 0,
		http_only INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (host, name, path)
	)`,

	`ALTER TABLE pending_actions ADD COLUMN enqueued_at TEXT NOT NULL DEFAULT ''`,
}
