package db

import (
	"database/sql"
	"fmt"
)

// schema is the full emulator schema.
const schema = `
CREATE TABLE IF NOT EXISTS databases (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL DEFAULT '',
    properties TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS pages (
    seq              INTEGER PRIMARY KEY AUTOINCREMENT,
    id               TEXT NOT NULL UNIQUE,
    database_id      TEXT NOT NULL REFERENCES databases(id),
    properties       TEXT NOT NULL,
    archived         INTEGER NOT NULL DEFAULT 0 CHECK (archived IN (0, 1)),
    created_time     TEXT NOT NULL,
    last_edited_time TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pages_database_active
    ON pages(database_id, created_time) WHERE archived = 0;
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
