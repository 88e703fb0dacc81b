package notion

// PropertyType is the discriminator of a page property value.
type PropertyType string

// Property types used by the registry.
const (
	PropertyTitle       PropertyType = "title"
	PropertyRichText    PropertyType = "rich_text"
	PropertyNumber      PropertyType = "number"
	PropertyPhoneNumber PropertyType = "phone_number"
	PropertyFiles       PropertyType = "files"
)

// File hosting variants.
const (
	FileExternal = "external"
	FileHosted   = "file"
)

// Parent identifies the database a page belongs to.
type Parent struct {
	Type       string `json:"type,omitempty"`
	DatabaseID string `json:"database_id"`
}

// DatabaseParent returns a parent reference for the given database.
func DatabaseParent(databaseID string) Parent {
	return Parent{Type: "database_id", DatabaseID: databaseID}
}

// Page is a record in a database.
type Page struct {
	Object         string                   `json:"object"`
	ID             string                   `json:"id"`
	CreatedTime    string                   `json:"created_time"`
	LastEditedTime string                   `json:"last_edited_time"`
	Archived       bool                     `json:"archived"`
	Parent         Parent                   `json:"parent"`
	Properties     map[string]PropertyValue `json:"properties"`
	URL            string                   `json:"url,omitempty"`
}

// PropertyValue is a tagged union over the property kinds. Exactly one of the
// kind fields is meaningful, selected by Type. Outbound values built with the
// constructors below leave Type empty, matching what the API accepts on write.
type PropertyValue struct {
	ID          string       `json:"id,omitempty"`
	Type        PropertyType `json:"type,omitempty"`
	Title       []RichText   `json:"title,omitempty"`
	RichText    []RichText   `json:"rich_text,omitempty"`
	Number      *float64     `json:"number,omitempty"`
	PhoneNumber *string      `json:"phone_number,omitempty"`
	Files       []File       `json:"files,omitempty"`
}

// RichText is a single run of text.
type RichText struct {
	Type      string `json:"type,omitempty"`
	Text      *Text  `json:"text,omitempty"`
	PlainText string `json:"plain_text,omitempty"`
}

// Text is the content of a text run.
type Text struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// Link is a hyperlink attached to a text run.
type Link struct {
	URL string `json:"url"`
}

// File is one entry of a files property.
type File struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	External *FileObject `json:"external,omitempty"`
	File     *FileObject `json:"file,omitempty"`
}

// FileObject holds the URL of an attached file. ExpiryTime is only set for
// files hosted by Notion.
type FileObject struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// Title builds a title property holding a single text run.
func Title(content string) PropertyValue {
	return PropertyValue{Title: []RichText{{Type: "text", Text: &Text{Content: content}}}}
}

// Number builds a number property.
func Number(n float64) PropertyValue {
	return PropertyValue{Number: &n}
}

// PhoneNumber builds a phone number property.
func PhoneNumber(phone string) PropertyValue {
	return PropertyValue{PhoneNumber: &phone}
}

// ExternalFile builds a files property with a single externally hosted file.
func ExternalFile(name, url string) PropertyValue {
	return PropertyValue{Files: []File{{
		Name:     name,
		Type:     FileExternal,
		External: &FileObject{URL: url},
	}}}
}

// Kind reports the kind of the value. Values read from the API carry an
// explicit Type; outbound values are classified by which field is set.
func (p PropertyValue) Kind() PropertyType {
	if p.Type != "" {
		return p.Type
	}
	switch {
	case p.Title != nil:
		return PropertyTitle
	case p.RichText != nil:
		return PropertyRichText
	case p.Number != nil:
		return PropertyNumber
	case p.PhoneNumber != nil:
		return PropertyPhoneNumber
	case p.Files != nil:
		return PropertyFiles
	}
	return ""
}

// FirstText returns the content of the first run of a title or rich text
// property, or "" if there is none.
func (p PropertyValue) FirstText() string {
	runs := p.Title
	if p.Kind() == PropertyRichText {
		runs = p.RichText
	}
	if len(runs) == 0 {
		return ""
	}
	if runs[0].Text != nil {
		return runs[0].Text.Content
	}
	return runs[0].PlainText
}

// NumberValue returns the number, or nil when the property is empty.
func (p PropertyValue) NumberValue() *float64 {
	if p.Number == nil {
		return nil
	}
	n := *p.Number
	return &n
}

// PhoneValue returns the phone number, or "" when the property is empty.
func (p PropertyValue) PhoneValue() string {
	if p.PhoneNumber == nil {
		return ""
	}
	return *p.PhoneNumber
}

// FirstFileURL returns the URL of the first file, resolving both external and
// Notion-hosted entries. It returns nil when there are no files.
func (p PropertyValue) FirstFileURL() *string {
	if len(p.Files) == 0 {
		return nil
	}
	f := p.Files[0]
	var obj *FileObject
	switch f.Type {
	case FileExternal:
		obj = f.External
	case FileHosted:
		obj = f.File
	default:
		obj = f.External
		if obj == nil {
			obj = f.File
		}
	}
	if obj == nil {
		return nil
	}
	url := obj.URL
	return &url
}

// CreatePageRequest is the body of a page creation call.
type CreatePageRequest struct {
	Parent     Parent                   `json:"parent"`
	Properties map[string]PropertyValue `json:"properties"`
}

// UpdatePageRequest is the body of a page update call. Only the properties
// present in the map are changed.
type UpdatePageRequest struct {
	Properties map[string]PropertyValue `json:"properties,omitempty"`
	Archived   *bool                    `json:"archived,omitempty"`
}

// TextCondition matches text-like properties.
type TextCondition struct {
	Equals string `json:"equals"`
}

// NumberCondition matches number properties.
type NumberCondition struct {
	Equals float64 `json:"equals"`
}

// Filter is a single property filter of a database query.
type Filter struct {
	Property    string           `json:"property"`
	Title       *TextCondition   `json:"title,omitempty"`
	RichText    *TextCondition   `json:"rich_text,omitempty"`
	PhoneNumber *TextCondition   `json:"phone_number,omitempty"`
	Number      *NumberCondition `json:"number,omitempty"`
}

// Timestamps usable in sorts.
const (
	TimestampCreated    = "created_time"
	TimestampLastEdited = "last_edited_time"
)

// Sort directions.
const (
	SortAscending  = "ascending"
	SortDescending = "descending"
)

// Sort orders query results by a property or a page timestamp.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// QueryRequest is the body of a database query.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

// QueryResponse is one page of query results.
type QueryResponse struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}
