package api

import "net/http"

// Health handles GET /healthz.
func Health(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, map[string]any{"status": "ok"})
}
