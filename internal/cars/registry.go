package cars

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/erazemk/carregistry/internal/model"
	"github.com/erazemk/carregistry/internal/notion"
)

// Property names of the car database.
const (
	PropName        = "Name"
	PropCarNumber   = "CarNumber"
	PropPhoneNumber = "OwnerPhoneNumber"
	PropImage       = "CarImage"
)

// ImageFileName is the name given to the external file holding the car image.
const ImageFileName = "car-image"

// Schema returns the property schema the car database is expected to have.
func Schema() map[string]notion.PropertyType {
	return map[string]notion.PropertyType{
		PropName:        notion.PropertyTitle,
		PropCarNumber:   notion.PropertyNumber,
		PropPhoneNumber: notion.PropertyPhoneNumber,
		PropImage:       notion.PropertyFiles,
	}
}

// Pages is the subset of the Notion API the registry needs.
type Pages interface {
	CreatePage(ctx context.Context, req *notion.CreatePageRequest) (*notion.Page, error)
	QueryDatabase(ctx context.Context, databaseID string, req *notion.QueryRequest) (*notion.QueryResponse, error)
	UpdatePage(ctx context.Context, pageID string, req *notion.UpdatePageRequest) (*notion.Page, error)
}

// Registry stores car records as pages of a single Notion database.
type Registry struct {
	pages      Pages
	databaseID string
	logger     *zap.Logger
}

// NewRegistry creates a registry backed by the given database.
func NewRegistry(pages Pages, databaseID string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{pages: pages, databaseID: databaseID, logger: logger}
}

// Create inserts a new car and returns its id.
func (r *Registry) Create(ctx context.Context, in model.CarInput) (string, error) {
	page, err := r.pages.CreatePage(ctx, &notion.CreatePageRequest{
		Parent:     notion.DatabaseParent(r.databaseID),
		Properties: properties(in),
	})
	if err != nil {
		return "", fmt.Errorf("creating car: %w", err)
	}
	return page.ID, nil
}

// List returns all cars, newest first.
func (r *Registry) List(ctx context.Context) ([]model.Car, error) {
	return r.query(ctx, &notion.QueryRequest{
		Sorts: []notion.Sort{{Timestamp: notion.TimestampCreated, Direction: notion.SortDescending}},
	})
}

// FindByNumber returns the cars with the given car number.
func (r *Registry) FindByNumber(ctx context.Context, number float64) ([]model.Car, error) {
	return r.query(ctx, &notion.QueryRequest{Filter: &notion.Filter{
		Property: PropCarNumber,
		Number:   &notion.NumberCondition{Equals: number},
	}})
}

// FindByPhone returns the cars whose owner has the given phone number.
func (r *Registry) FindByPhone(ctx context.Context, phone string) ([]model.Car, error) {
	return r.query(ctx, &notion.QueryRequest{Filter: &notion.Filter{
		Property:    PropPhoneNumber,
		PhoneNumber: &notion.TextCondition{Equals: phone},
	}})
}

// FindByName returns the cars with the given name.
func (r *Registry) FindByName(ctx context.Context, name string) ([]model.Car, error) {
	return r.query(ctx, &notion.QueryRequest{Filter: &notion.Filter{
		Property: PropName,
		Title:    &notion.TextCondition{Equals: name},
	}})
}

// Update overwrites the fields of an existing car and returns it as stored.
// The image is only replaced when in.ImageURL is set.
func (r *Registry) Update(ctx context.Context, id string, in model.CarInput) (*model.Car, error) {
	page, err := r.pages.UpdatePage(ctx, id, &notion.UpdatePageRequest{Properties: properties(in)})
	if err != nil {
		return nil, fmt.Errorf("updating car: %w", err)
	}
	car := r.project(page)
	return &car, nil
}

// Archive soft-deletes a car.
func (r *Registry) Archive(ctx context.Context, id string) error {
	archived := true
	if _, err := r.pages.UpdatePage(ctx, id, &notion.UpdatePageRequest{Archived: &archived}); err != nil {
		return fmt.Errorf("archiving car: %w", err)
	}
	return nil
}

func (r *Registry) query(ctx context.Context, req *notion.QueryRequest) ([]model.Car, error) {
	resp, err := r.pages.QueryDatabase(ctx, r.databaseID, req)
	if err != nil {
		return nil, fmt.Errorf("querying cars: %w", err)
	}

	cars := make([]model.Car, 0, len(resp.Results))
	for i := range resp.Results {
		cars = append(cars, r.project(&resp.Results[i]))
	}
	return cars, nil
}

// properties builds the outbound property map. The image is included only
// when a URL was given so that updates leave an existing image alone.
func properties(in model.CarInput) map[string]notion.PropertyValue {
	props := map[string]notion.PropertyValue{
		PropName:        notion.Title(in.Name),
		PropCarNumber:   notion.Number(in.CarNumber),
		PropPhoneNumber: notion.PhoneNumber(in.PhoneNumber),
	}
	if in.ImageURL != "" {
		props[PropImage] = notion.ExternalFile(ImageFileName, in.ImageURL)
	}
	return props
}

func (r *Registry) project(page *notion.Page) model.Car {
	return model.Car{
		ID:          page.ID,
		Name:        page.Properties[PropName].FirstText(),
		CarNumber:   page.Properties[PropCarNumber].NumberValue(),
		PhoneNumber: page.Properties[PropPhoneNumber].PhoneValue(),
		ImageURL:    r.imageURL(page.Properties),
		CreatedTime: page.CreatedTime,
		UpdatedTime: page.LastEditedTime,
	}
}

func (r *Registry) imageURL(props map[string]notion.PropertyValue) *string {
	prop, ok := props[PropImage]
	if !ok {
		return nil
	}
	r.logger.Debug("image property", zap.Any("files", prop.Files))
	return ImageURL(prop)
}

// ImageURL returns the URL of the first file of a files property, or nil if
// the property holds no files.
func ImageURL(prop notion.PropertyValue) *string {
	return prop.FirstFileURL()
}
