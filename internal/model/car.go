package model

// Car is a car-owner record as exposed to API clients.
type Car struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	CarNumber   *float64 `json:"carNumber"`
	PhoneNumber string   `json:"phoneNumber"`
	ImageURL    *string  `json:"imageUrl"`
	CreatedTime string   `json:"createdTime,omitempty"`
	UpdatedTime string   `json:"updatedTime,omitempty"`
}

// CarInput holds the coerced fields of a create or update request. An empty
// ImageURL means the image is left as it is.
type CarInput struct {
	Name        string
	CarNumber   float64
	PhoneNumber string
	ImageURL    string
}
