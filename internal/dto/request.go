package dto

import "github.com/noah-isme/civic-desk-api/internal/models"

// LocationPayload is a point picked on the request form map.
type LocationPayload struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// CreateRequestPayload captures POST /requests payload.
type CreateRequestPayload struct {
	CategoryID   string           `json:"category_id" validate:"required,uuid"`
	Title        string           `json:"title" validate:"required,min=5"`
	Description  string           `json:"description" validate:"required,min=20"`
	Priority     models.Priority  `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
	Location     *LocationPayload `json:"location,omitempty"`
	LocationText *string          `json:"location_text,omitempty"`
}

// UpdateRequestPayload captures PUT /requests/:id payload. Only present fields are applied.
type UpdateRequestPayload struct {
	CategoryID      *string               `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Title           *string               `json:"title,omitempty" validate:"omitempty,min=5"`
	Description     *string               `json:"description,omitempty" validate:"omitempty,min=20"`
	Priority        *models.Priority      `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
	Status          *models.RequestStatus `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress resolved rejected closed"`
	Location        *LocationPayload      `json:"location,omitempty"`
	LocationText    *string               `json:"location_text,omitempty"`
	ResolutionNotes *string               `json:"resolution_notes,omitempty"`
	Rating          *int                  `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Feedback        *string               `json:"feedback,omitempty"`
}

// RequestQuery binds GET /requests and GET /requests/export query strings.
type RequestQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	CategoryID string `form:"category_id"`
	Format     string `form:"format"`
}

// CategoryPayload captures POST/PUT /categories payload.
type CategoryPayload struct {
	Name        string  `json:"name" validate:"required,min=3"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
}
