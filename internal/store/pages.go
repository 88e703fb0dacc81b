package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/carregistry/internal/notion"
)

// TimeFormat is the timestamp layout used for page times.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// ErrUnsupportedQuery is returned for filters and sorts the emulator cannot
// evaluate.
var ErrUnsupportedQuery = errors.New("unsupported query")

// PageQuery selects non-archived pages of a database.
type PageQuery struct {
	Filter *notion.Filter
	Sorts  []notion.Sort
	Offset int
	Limit  int
}

// CreatePage inserts a page with the given properties.
func CreatePage(ctx context.Context, db *sql.DB, databaseID string, props map[string]notion.PropertyValue, now time.Time) (*notion.Page, error) {
	data, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("encoding properties: %w", err)
	}

	id := uuid.NewString()
	ts := now.UTC().Format(TimeFormat)
	_, err = db.ExecContext(ctx,
		`INSERT INTO pages (id, database_id, properties, created_time, last_edited_time)
		 VALUES (?, ?, ?, ?, ?)`,
		id, databaseID, string(data), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	return GetPage(ctx, db, id)
}

// GetPage returns a page by ID, archived or not, or nil if it does not exist.
func GetPage(ctx context.Context, db *sql.DB, id string) (*notion.Page, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, database_id, properties, archived, created_time, last_edited_time
		 FROM pages WHERE id = ?`, id,
	)
	page, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting page: %w", err)
	}
	return page, nil
}

// UpdatePage merges props into the page's properties and sets the archived
// flag when given. Properties missing from props are kept.
func UpdatePage(ctx context.Context, db *sql.DB, id string, props map[string]notion.PropertyValue, archived *bool, now time.Time) (*notion.Page, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	var isArchived bool
	err = tx.QueryRowContext(ctx,
		`SELECT properties, archived FROM pages WHERE id = ?`, id,
	).Scan(&current, &isArchived)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting page: %w", err)
	}

	merged := map[string]notion.PropertyValue{}
	if err := json.Unmarshal([]byte(current), &merged); err != nil {
		return nil, fmt.Errorf("decoding properties: %w", err)
	}
	for name, value := range props {
		merged[name] = value
	}
	if archived != nil {
		isArchived = *archived
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encoding properties: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE pages SET properties = ?, archived = ?, last_edited_time = ? WHERE id = ?`,
		string(data), isArchived, now.UTC().Format(TimeFormat), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating page: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing page update: %w", err)
	}

	return GetPage(ctx, db, id)
}

// QueryPages returns the non-archived pages of a database matching q, and
// whether more pages follow the returned ones.
func QueryPages(ctx context.Context, db *sql.DB, databaseID string, q PageQuery) ([]notion.Page, bool, error) {
	query := `SELECT id, database_id, properties, archived, created_time, last_edited_time
	          FROM pages WHERE database_id = ? AND archived = 0`
	args := []any{databaseID}

	if q.Filter != nil {
		clause, filterArgs, err := filterClause(q.Filter)
		if err != nil {
			return nil, false, err
		}
		query += " AND " + clause
		args = append(args, filterArgs...)
	}

	order, err := orderClause(q.Sorts)
	if err != nil {
		return nil, false, err
	}
	query += " ORDER BY " + order

	if q.Limit > 0 {
		// One extra row tells whether another page exists.
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit+1, q.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	var pages []notion.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scanning page: %w", err)
		}
		pages = append(pages, *page)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("querying pages: %w", err)
	}

	hasMore := false
	if q.Limit > 0 && len(pages) > q.Limit {
		pages = pages[:q.Limit]
		hasMore = true
	}
	return pages, hasMore, nil
}

// filterClause translates an equality filter to a json_extract comparison.
func filterClause(f *notion.Filter) (string, []any, error) {
	if f.Property == "" || strings.ContainsAny(f.Property, `"\`) {
		return "", nil, fmt.Errorf("filter property %q: %w", f.Property, ErrUnsupportedQuery)
	}
	path := `$."` + f.Property + `"`

	switch {
	case f.Title != nil:
		path += ".title[0].text.content"
		return "json_extract(properties, ?) = ?", []any{path, f.Title.Equals}, nil
	case f.RichText != nil:
		path += ".rich_text[0].text.content"
		return "json_extract(properties, ?) = ?", []any{path, f.RichText.Equals}, nil
	case f.PhoneNumber != nil:
		path += ".phone_number"
		return "json_extract(properties, ?) = ?", []any{path, f.PhoneNumber.Equals}, nil
	case f.Number != nil:
		path += ".number"
		return "json_extract(properties, ?) = ?", []any{path, f.Number.Equals}, nil
	}
	return "", nil, fmt.Errorf("filter on %q has no condition: %w", f.Property, ErrUnsupportedQuery)
}

// orderClause translates timestamp sorts. Insertion order breaks ties so that
// pages created within the same millisecond keep a stable order.
func orderClause(sorts []notion.Sort) (string, error) {
	if len(sorts) == 0 {
		return "created_time ASC, seq ASC", nil
	}

	var terms []string
	tiebreak := "seq ASC"
	for i, s := range sorts {
		if s.Timestamp != notion.TimestampCreated && s.Timestamp != notion.TimestampLastEdited {
			return "", fmt.Errorf("sort %d: only timestamp sorts are supported: %w", i, ErrUnsupportedQuery)
		}

		dir := "ASC"
		switch s.Direction {
		case notion.SortAscending:
		case notion.SortDescending:
			dir = "DESC"
		default:
			return "", fmt.Errorf("sort %d: direction %q: %w", i, s.Direction, ErrUnsupportedQuery)
		}

		terms = append(terms, s.Timestamp+" "+dir)
		if i == 0 {
			tiebreak = "seq " + dir
		}
	}
	return strings.Join(append(terms, tiebreak), ", "), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (*notion.Page, error) {
	page := &notion.Page{Object: "page"}
	var props string
	if err := row.Scan(&page.ID, &page.Parent.DatabaseID, &props, &page.Archived, &page.CreatedTime, &page.LastEditedTime); err != nil {
		return nil, err
	}
	page.Parent.Type = "database_id"
	if err := json.Unmarshal([]byte(props), &page.Properties); err != nil {
		return nil, fmt.Errorf("decoding properties: %w", err)
	}
	return page, nil
}
