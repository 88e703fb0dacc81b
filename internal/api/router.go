package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/carregistry/internal/cars"
)

// NewRouter creates the API router with all endpoints registered. When
// authSecret is set, every car endpoint requires a bearer token signed with it.
func NewRouter(registry *cars.Registry, authSecret string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	carsHandler := &CarsHandler{Registry: registry, Logger: logger}

	guard := func(h http.HandlerFunc) http.Handler { return h }
	if authSecret != "" {
		authMW := AuthMiddleware(authSecret)
		guard = func(h http.HandlerFunc) http.Handler { return authMW(h) }
	}

	// Public.
	mux.HandleFunc("GET /healthz", Health)

	// Cars.
	mux.Handle("POST /add-car", guard(carsHandler.Create))
	mux.Handle("GET /cars", guard(carsHandler.List))
	mux.Handle("GET /cars/number/{carNumber}", guard(carsHandler.GetByNumber))
	mux.Handle("GET /cars/phone/{phoneNumber}", guard(carsHandler.GetByPhone))
	mux.Handle("GET /cars/name/{name}", guard(carsHandler.GetByName))
	mux.Handle("PUT /cars/{id}", guard(carsHandler.Update))
	mux.Handle("DELETE /cars/{id}", guard(carsHandler.Delete))

	return mux
}
