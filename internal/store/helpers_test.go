package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/carregistry/internal/notion"
)

type testDB struct {
	t   *testing.T
	ctx context.Context
	DB  *sql.DB
	now time.Time
}

// create inserts a page the way the emulator stores it: with explicit types.
func (d *testDB) create(name string, number float64, phone string) *notion.Page {
	d.t.Helper()

	props := map[string]notion.PropertyValue{
		"Name":   {Type: notion.PropertyTitle, Title: []notion.RichText{{Type: "text", Text: &notion.Text{Content: name}, PlainText: name}}},
		"Number": {Type: notion.PropertyNumber, Number: &number},
		"Phone":  {Type: notion.PropertyPhoneNumber, PhoneNumber: &phone},
	}
	page, err := CreatePage(d.ctx, d.DB, testDatabaseID, props, d.now)
	require.NoError(d.t, err)
	require.NotNil(d.t, page)
	return page
}

func ptr[T any](v T) *T {
	return &v
}
