package emulator

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/erazemk/carregistry/internal/notion"
)

// normalize checks property values against a database schema and fills in the
// fields the API adds on read: type, id and plain_text.
func normalize(schema map[string]notion.PropertyType, props map[string]notion.PropertyValue) (map[string]notion.PropertyValue, *notion.APIError) {
	out := make(map[string]notion.PropertyValue, len(props))
	for name, value := range props {
		want, ok := schema[name]
		if !ok {
			return nil, validationError("%s is not a property that exists.", name)
		}
		if got := value.Kind(); got != want {
			return nil, validationError("%s is expected to be %s.", name, want)
		}

		value.Type = want
		value.ID = url.QueryEscape(name)

		switch want {
		case notion.PropertyTitle:
			value.Title = plainText(value.Title)
		case notion.PropertyRichText:
			value.RichText = plainText(value.RichText)
		case notion.PropertyFiles:
			for i, f := range value.Files {
				if f.Type == "" {
					if f.External != nil {
						f.Type = notion.FileExternal
					} else {
						f.Type = notion.FileHosted
					}
				}
				if (f.Type == notion.FileExternal && f.External == nil) || (f.Type == notion.FileHosted && f.File == nil) {
					return nil, validationError("%s.files[%d] should define %s.", name, i, f.Type)
				}
				value.Files[i] = f
			}
		}
		out[name] = value
	}
	return out, nil
}

func plainText(runs []notion.RichText) []notion.RichText {
	for i, r := range runs {
		if r.Type == "" {
			r.Type = "text"
		}
		if r.Text != nil {
			r.PlainText = r.Text.Content
		}
		runs[i] = r
	}
	return runs
}

// checkFilter verifies that a query filter targets an existing property with
// a condition of the matching kind.
func checkFilter(schema map[string]notion.PropertyType, f *notion.Filter) *notion.APIError {
	want, ok := schema[f.Property]
	if !ok {
		return validationError("Could not find property with name or id: %s", f.Property)
	}

	var got notion.PropertyType
	switch {
	case f.Title != nil:
		got = notion.PropertyTitle
	case f.RichText != nil:
		got = notion.PropertyRichText
	case f.PhoneNumber != nil:
		got = notion.PropertyPhoneNumber
	case f.Number != nil:
		got = notion.PropertyNumber
	}
	if got != want {
		return validationError("body.filter.%s should be defined for property %s.", want, f.Property)
	}
	return nil
}

func validationError(format string, args ...any) *notion.APIError {
	return notion.NewAPIError(http.StatusBadRequest, notion.CodeValidationError, fmt.Sprintf(format, args...))
}
