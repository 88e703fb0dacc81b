package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/erazemk/carregistry/internal/notion"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		// The status line is already out; nothing useful can be done on failure.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// jsonSuccess writes a 200 response with success set and the given fields.
func jsonSuccess(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	jsonResponse(w, http.StatusOK, body)
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]any{"success": false, "error": message})
}

// decodeJSON decodes a JSON request body into the given target. An empty body
// leaves the target untouched.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// errorMessage returns the message reported to clients for a failed remote
// call: the API's own message when there is one.
func errorMessage(err error) string {
	var apiErr *notion.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}
