package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/carregistry/internal/notion"
)

// Database is an emulated Notion database and its property schema.
type Database struct {
	ID         string
	Title      string
	Properties map[string]notion.PropertyType
}

// PutDatabase creates a database or replaces the schema of an existing one.
func PutDatabase(ctx context.Context, db *sql.DB, id, title string, props map[string]notion.PropertyType) error {
	schema, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encoding database schema: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO databases (id, title, properties) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, properties = excluded.properties`,
		id, title, string(schema),
	)
	if err != nil {
		return fmt.Errorf("storing database: %w", err)
	}
	return nil
}

// GetDatabase returns a database by ID, or nil if it does not exist.
func GetDatabase(ctx context.Context, db *sql.DB, id string) (*Database, error) {
	d := &Database{}
	var schema string
	err := db.QueryRowContext(ctx,
		`SELECT id, title, properties FROM databases WHERE id = ?`, id,
	).Scan(&d.ID, &d.Title, &schema)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting database: %w", err)
	}

	if err := json.Unmarshal([]byte(schema), &d.Properties); err != nil {
		return nil, fmt.Errorf("decoding database schema: %w", err)
	}
	return d, nil
}
