package cars_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/carregistry/internal/cars"
	"github.com/erazemk/carregistry/internal/emulator"
	"github.com/erazemk/carregistry/internal/model"
	"github.com/erazemk/carregistry/internal/notion"
)

const (
	testToken      = "secret_registry"
	testDatabaseID = "cars-database"
)

func setupRegistry(t *testing.T) *cars.Registry {
	t.Helper()
	server := emulator.NewTestServer(t, testToken, testDatabaseID, cars.Schema())
	client := notion.NewClient(testToken, notion.WithBaseURL(server.URL+"/v1"))
	return cars.NewRegistry(client, testDatabaseID, nil)
}

func TestCreateAndList(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	id, err := registry.Create(ctx, model.CarInput{Name: "Alice", CarNumber: 123, PhoneNumber: "555-1234"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	car := list[0]
	assert.Equal(t, id, car.ID)
	assert.Equal(t, "Alice", car.Name)
	require.NotNil(t, car.CarNumber)
	assert.Equal(t, 123.0, *car.CarNumber)
	assert.Equal(t, "555-1234", car.PhoneNumber)
	assert.Nil(t, car.ImageURL)
	assert.NotEmpty(t, car.CreatedTime)
}

func TestListNewestFirst(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		id, err := registry.Create(ctx, model.CarInput{Name: name, CarNumber: 1})
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(2 * time.Millisecond)
	}

	list, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
	assert.Equal(t, ids[0], list[2].ID)
}

func TestImageRoundTrip(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	id, err := registry.Create(ctx, model.CarInput{Name: "Alice", CarNumber: 1, ImageURL: "http://x/y.png"})
	require.NoError(t, err)

	list, err := registry.FindByName(ctx, "Alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	require.NotNil(t, list[0].ImageURL)
	assert.Equal(t, "http://x/y.png", *list[0].ImageURL)
}

func TestUpdateKeepsImageWhenOmitted(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	id, err := registry.Create(ctx, model.CarInput{Name: "Alice", CarNumber: 1, PhoneNumber: "1", ImageURL: "http://x/old.png"})
	require.NoError(t, err)

	car, err := registry.Update(ctx, id, model.CarInput{Name: "Alice B", CarNumber: 2, PhoneNumber: "2"})
	require.NoError(t, err)
	assert.Equal(t, id, car.ID)
	assert.Equal(t, "Alice B", car.Name)
	assert.Equal(t, 2.0, *car.CarNumber)
	assert.Equal(t, "2", car.PhoneNumber)
	require.NotNil(t, car.ImageURL)
	assert.Equal(t, "http://x/old.png", *car.ImageURL)
	assert.NotEmpty(t, car.UpdatedTime)

	car, err = registry.Update(ctx, id, model.CarInput{Name: "Alice B", CarNumber: 2, PhoneNumber: "2", ImageURL: "http://x/new.png"})
	require.NoError(t, err)
	require.NotNil(t, car.ImageURL)
	assert.Equal(t, "http://x/new.png", *car.ImageURL)
}

func TestFindByFields(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	alice, err := registry.Create(ctx, model.CarInput{Name: "Alice", CarNumber: 123, PhoneNumber: "555-1234"})
	require.NoError(t, err)
	_, err = registry.Create(ctx, model.CarInput{Name: "Bob", CarNumber: 456, PhoneNumber: "555-9999"})
	require.NoError(t, err)

	byNumber, err := registry.FindByNumber(ctx, 123)
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, alice, byNumber[0].ID)

	byPhone, err := registry.FindByPhone(ctx, "555-1234")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, alice, byPhone[0].ID)

	none, err := registry.FindByNumber(ctx, 789)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestArchiveHidesOnlyThatCar(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	keep, err := registry.Create(ctx, model.CarInput{Name: "Keep", CarNumber: 1})
	require.NoError(t, err)
	drop, err := registry.Create(ctx, model.CarInput{Name: "Drop", CarNumber: 2})
	require.NoError(t, err)

	require.NoError(t, registry.Archive(ctx, drop))

	list, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep, list[0].ID)

	byNumber, err := registry.FindByNumber(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, byNumber)
}

func TestUpdateMissingCarFails(t *testing.T) {
	registry := setupRegistry(t)

	_, err := registry.Update(context.Background(), "missing", model.CarInput{Name: "x"})
	require.Error(t, err)

	var apiErr *notion.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, notion.CodeObjectNotFound, apiErr.Code)
}

// failingPages fails every call.
type failingPages struct{ err error }

func (f failingPages) CreatePage(context.Context, *notion.CreatePageRequest) (*notion.Page, error) {
	return nil, f.err
}

func (f failingPages) QueryDatabase(context.Context, string, *notion.QueryRequest) (*notion.QueryResponse, error) {
	return nil, f.err
}

func (f failingPages) UpdatePage(context.Context, string, *notion.UpdatePageRequest) (*notion.Page, error) {
	return nil, f.err
}

func TestRemoteFailuresPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	registry := cars.NewRegistry(failingPages{err: boom}, testDatabaseID, nil)
	ctx := context.Background()

	_, err := registry.Create(ctx, model.CarInput{})
	assert.ErrorIs(t, err, boom)
	_, err = registry.List(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = registry.FindByPhone(ctx, "1")
	assert.ErrorIs(t, err, boom)
	_, err = registry.Update(ctx, "id", model.CarInput{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, registry.Archive(ctx, "id"), boom)
}

func TestProjectionDefaults(t *testing.T) {
	page := notion.Page{ID: "p1", Properties: map[string]notion.PropertyValue{}}
	stub := stubPages{query: &notion.QueryResponse{Results: []notion.Page{page}}}
	registry := cars.NewRegistry(stub, testDatabaseID, nil)

	list, err := registry.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	car := list[0]
	assert.Equal(t, "p1", car.ID)
	assert.Equal(t, "", car.Name)
	assert.Nil(t, car.CarNumber)
	assert.Equal(t, "", car.PhoneNumber)
	assert.Nil(t, car.ImageURL)
}

func TestImageURL(t *testing.T) {
	assert.Nil(t, cars.ImageURL(notion.PropertyValue{}))

	hosted := notion.PropertyValue{Type: notion.PropertyFiles, Files: []notion.File{
		{Name: "car-image", Type: notion.FileHosted, File: &notion.FileObject{URL: "https://files.example/a.png"}},
		{Name: "other", Type: notion.FileExternal, External: &notion.FileObject{URL: "http://x/b.png"}},
	}}
	url := cars.ImageURL(hosted)
	require.NotNil(t, url)
	assert.Equal(t, "https://files.example/a.png", *url)
}

// stubPages answers queries with a fixed response.
type stubPages struct {
	failingPages
	query *notion.QueryResponse
}

func (s stubPages) QueryDatabase(context.Context, string, *notion.QueryRequest) (*notion.QueryResponse, error) {
	return s.query, nil
}
