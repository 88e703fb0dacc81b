package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/carregistry/internal/db"
	"github.com/erazemk/carregistry/internal/notion"
)

const testDatabaseID = "cars-db"

func setupPages(t *testing.T) (context.Context, *testDB) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	err := PutDatabase(ctx, database, testDatabaseID, "Cars", map[string]notion.PropertyType{
		"Name":   notion.PropertyTitle,
		"Number": notion.PropertyNumber,
		"Phone":  notion.PropertyPhoneNumber,
	})
	require.NoError(t, err)

	return ctx, &testDB{t: t, ctx: ctx, DB: database, now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func TestCreateAndGetPage(t *testing.T) {
	ctx, tdb := setupPages(t)

	page := tdb.create("Alice", 123, "555-1234")
	assert.NotEmpty(t, page.ID)
	assert.Equal(t, "page", page.Object)
	assert.Equal(t, testDatabaseID, page.Parent.DatabaseID)
	assert.Equal(t, "2024-03-01T10:00:00.000Z", page.CreatedTime)
	assert.Equal(t, page.CreatedTime, page.LastEditedTime)
	assert.False(t, page.Archived)

	got, err := GetPage(ctx, tdb.DB, page.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Properties["Name"].FirstText())

	missing, err := GetPage(ctx, tdb.DB, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdatePageMergesProperties(t *testing.T) {
	ctx, tdb := setupPages(t)
	page := tdb.create("Alice", 1, "555")

	later := tdb.now.Add(time.Minute)
	updated, err := UpdatePage(ctx, tdb.DB, page.ID, map[string]notion.PropertyValue{
		"Phone": {Type: notion.PropertyPhoneNumber, PhoneNumber: ptr("777")},
	}, nil, later)
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "Alice", updated.Properties["Name"].FirstText())
	assert.Equal(t, "777", updated.Properties["Phone"].PhoneValue())
	assert.Equal(t, "2024-03-01T10:01:00.000Z", updated.LastEditedTime)
	assert.Equal(t, page.CreatedTime, updated.CreatedTime)

	missing, err := UpdatePage(ctx, tdb.DB, "nope", nil, nil, later)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestArchivedPagesAreNotQueried(t *testing.T) {
	ctx, tdb := setupPages(t)
	keep := tdb.create("Keep", 1, "1")
	drop := tdb.create("Drop", 2, "2")

	archived := true
	_, err := UpdatePage(ctx, tdb.DB, drop.ID, nil, &archived, tdb.now)
	require.NoError(t, err)

	pages, hasMore, err := QueryPages(ctx, tdb.DB, testDatabaseID, PageQuery{})
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, pages, 1)
	assert.Equal(t, keep.ID, pages[0].ID)

	// Archived pages stay readable by ID.
	got, err := GetPage(ctx, tdb.DB, drop.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)
}

func TestQueryPagesFilters(t *testing.T) {
	ctx, tdb := setupPages(t)
	alice := tdb.create("Alice", 123, "555-1234")
	tdb.create("Bob", 456, "555-9999")

	tests := []struct {
		name   string
		filter notion.Filter
		want   []string
	}{
		{"number", notion.Filter{Property: "Number", Number: &notion.NumberCondition{Equals: 123}}, []string{alice.ID}},
		{"phone", notion.Filter{Property: "Phone", PhoneNumber: &notion.TextCondition{Equals: "555-1234"}}, []string{alice.ID}},
		{"title", notion.Filter{Property: "Name", Title: &notion.TextCondition{Equals: "Alice"}}, []string{alice.ID}},
		{"no match", notion.Filter{Property: "Number", Number: &notion.NumberCondition{Equals: 7}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, _, err := QueryPages(ctx, tdb.DB, testDatabaseID, PageQuery{Filter: &tt.filter})
			require.NoError(t, err)

			var ids []string
			for _, p := range pages {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestQueryPagesSortAndLimit(t *testing.T) {
	ctx, tdb := setupPages(t)
	first := tdb.create("First", 1, "1")
	second := tdb.create("Second", 2, "2")
	tdb.now = tdb.now.Add(time.Second)
	third := tdb.create("Third", 3, "3")

	desc := []notion.Sort{{Timestamp: notion.TimestampCreated, Direction: notion.SortDescending}}
	pages, hasMore, err := QueryPages(ctx, tdb.DB, testDatabaseID, PageQuery{Sorts: desc, Limit: 2})
	require.NoError(t, err)
	assert.True(t, hasMore)
	require.Len(t, pages, 2)
	assert.Equal(t, third.ID, pages[0].ID)
	// Same timestamp: the later insert comes first.
	assert.Equal(t, second.ID, pages[1].ID)

	pages, hasMore, err = QueryPages(ctx, tdb.DB, testDatabaseID, PageQuery{Sorts: desc, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, pages, 1)
	assert.Equal(t, first.ID, pages[0].ID)
}

func TestQueryPagesRejectsUnsupported(t *testing.T) {
	ctx, tdb := setupPages(t)

	_, _, err := QueryPages(ctx, tdb.DB, testDatabaseID, PageQuery{Sorts: []notion.Sort{{Property: "Name", Direction: notion.SortAscending}}})
	assert.ErrorIs(t, err, ErrUnsupportedQuery)

	_, _, err = QueryPages(ctx, tdb.DB, testDatabaseID, PageQuery{Filter: &notion.Filter{Property: "Name"}})
	assert.ErrorIs(t, err, ErrUnsupportedQuery)
}

func TestPutDatabaseReplacesSchema(t *testing.T) {
	ctx, tdb := setupPages(t)

	err := PutDatabase(ctx, tdb.DB, testDatabaseID, "Cars v2", map[string]notion.PropertyType{"Name": notion.PropertyTitle})
	require.NoError(t, err)

	d, err := GetDatabase(ctx, tdb.DB, testDatabaseID)
	require.NoError(t, err)
	assert.Equal(t, "Cars v2", d.Title)
	assert.Equal(t, map[string]notion.PropertyType{"Name": notion.PropertyTitle}, d.Properties)

	missing, err := GetDatabase(ctx, tdb.DB, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
