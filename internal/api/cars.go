package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/carregistry/internal/cars"
	"github.com/erazemk/carregistry/internal/model"
)

// CarsHandler handles the car registry endpoints.
type CarsHandler struct {
	Registry *cars.Registry
	Logger   *zap.Logger
}

// carRequest is the body of create and update requests. Fields are kept raw
// and coerced, so that e.g. a numeric name or a string car number is accepted.
type carRequest struct {
	Name        json.RawMessage `json:"name"`
	CarNumber   json.RawMessage `json:"carNumber"`
	PhoneNumber json.RawMessage `json:"phoneNumber"`
	ImageURL    json.RawMessage `json:"imageUrl"`
}

// input coerces the request fields. Only a JSON string is taken as an image
// URL; anything else leaves the image alone.
func (req carRequest) input() (model.CarInput, error) {
	number, err := model.CoerceNumber(req.CarNumber)
	if err != nil {
		return model.CarInput{}, err
	}

	var imageURL string
	if len(req.ImageURL) > 0 && req.ImageURL[0] == '"' {
		imageURL = model.CoerceString(req.ImageURL)
	}

	return model.CarInput{
		Name:        model.CoerceString(req.Name),
		CarNumber:   number,
		PhoneNumber: model.CoerceString(req.PhoneNumber),
		ImageURL:    imageURL,
	}, nil
}

// decodeCar reads and coerces a create or update body, writing a 400 response
// on failure.
func decodeCar(w http.ResponseWriter, r *http.Request) (model.CarInput, bool) {
	var req carRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return model.CarInput{}, false
	}

	in, err := req.input()
	if err != nil {
		jsonError(w, http.StatusBadRequest, "carNumber must be a number")
		return model.CarInput{}, false
	}
	return in, true
}

// Create handles POST /add-car.
func (h *CarsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeCar(w, r)
	if !ok {
		return
	}

	id, err := h.Registry.Create(r.Context(), in)
	if err != nil {
		h.remoteFailure(w, r, err)
		return
	}

	jsonSuccess(w, map[string]any{"id": id})
}

// List handles GET /cars.
func (h *CarsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Registry.List(r.Context())
	if err != nil {
		h.remoteFailure(w, r, err)
		return
	}
	jsonSuccess(w, map[string]any{"data": list})
}

// GetByNumber handles GET /cars/number/{carNumber}.
func (h *CarsHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("carNumber")
	number, err := model.ParseNumber(raw)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "carNumber must be a number")
		return
	}

	list, err := h.Registry.FindByNumber(r.Context(), number)
	h.writeMatches(w, r, list, err, "car number", raw)
}

// GetByPhone handles GET /cars/phone/{phoneNumber}.
func (h *CarsHandler) GetByPhone(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phoneNumber")
	list, err := h.Registry.FindByPhone(r.Context(), phone)
	h.writeMatches(w, r, list, err, "phone number", phone)
}

// GetByName handles GET /cars/name/{name}.
func (h *CarsHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	list, err := h.Registry.FindByName(r.Context(), name)
	h.writeMatches(w, r, list, err, "name", name)
}

// Update handles PUT /cars/{id}.
func (h *CarsHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeCar(w, r)
	if !ok {
		return
	}

	car, err := h.Registry.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.remoteFailure(w, r, err)
		return
	}

	jsonSuccess(w, map[string]any{"data": car})
}

// Delete handles DELETE /cars/{id}.
func (h *CarsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Archive(r.Context(), r.PathValue("id")); err != nil {
		h.remoteFailure(w, r, err)
		return
	}

	jsonSuccess(w, map[string]any{"message": "Car entry deleted successfully"})
}

func (h *CarsHandler) writeMatches(w http.ResponseWriter, r *http.Request, list []model.Car, err error, field, value string) {
	if err != nil {
		h.remoteFailure(w, r, err)
		return
	}
	if len(list) == 0 {
		jsonError(w, http.StatusNotFound, "No car found with "+field+" "+value)
		return
	}
	jsonSuccess(w, map[string]any{"data": list})
}

// remoteFailure logs a failed registry call and answers with a 500.
func (h *CarsHandler) remoteFailure(w http.ResponseWriter, r *http.Request, err error) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	if claims := GetClaims(r.Context()); claims != nil {
		fields = append(fields, zap.String("client", claims.Subject))
	}
	h.Logger.Error("Notion API error", fields...)

	jsonError(w, http.StatusInternalServerError, errorMessage(err))
}
