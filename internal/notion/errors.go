package notion

import "fmt"

// Error codes returned by the API.
const (
	CodeUnauthorized    = "unauthorized"
	CodeMissingVersion  = "missing_version"
	CodeObjectNotFound  = "object_not_found"
	CodeValidationError = "validation_error"
	CodeInvalidJSON     = "invalid_json"
	CodeInternalError   = "internal_server_error"
)

// APIError is an error object returned by the API.
type APIError struct {
	Object    string `json:"object"`
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// NewAPIError builds an error object.
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Object: "error", Status: status, Code: code, Message: message}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("notion: %s (status %d)", e.Code, e.Status)
	}
	return e.Message
}
