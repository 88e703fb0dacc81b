package emulator

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/erazemk/carregistry/internal/db"
	"github.com/erazemk/carregistry/internal/notion"
	"github.com/erazemk/carregistry/internal/store"
)

// NewTestServer starts an emulator over a fresh in-memory database holding a
// single database with the given schema. The server is closed when the test
// ends. Clients should use server.URL + "/v1" as their base URL.
func NewTestServer(t *testing.T, token, databaseID string, schema map[string]notion.PropertyType) *httptest.Server {
	t.Helper()

	database := db.NewTestDB(t)
	if err := store.PutDatabase(context.Background(), database, databaseID, "Test", schema); err != nil {
		t.Fatalf("creating emulated database: %v", err)
	}

	server := httptest.NewServer(NewServer(database, token, nil).Handler())
	t.Cleanup(server.Close)
	return server
}
