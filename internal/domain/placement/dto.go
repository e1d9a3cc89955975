package placement

import (
	"time"
)

// CreateRequest for creating a new placement
type CreateRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Slot       string `json:"slot" validate:"omitempty,max=64"`
	Type       string `json:"type" validate:"required,placement_type"`
	Format     string `json:"format" validate:"required,ad_format"`
	Location   string `json:"location" validate:"required,page_location"`
	IsEnabled  *bool  `json:"is_enabled"`
	Position   *int64 `json:"position" validate:"omitempty,gte=0"`
	Responsive *bool  `json:"responsive"`
	CustomCode string `json:"custom_code"`
}

// UpdateRequest for partially updating a placement
type UpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=255"`
	Slot       *string `json:"slot" validate:"omitempty,max=64"`
	Type       *string `json:"type" validate:"omitempty,placement_type"`
	Format     *string `json:"format" validate:"omitempty,ad_format"`
	Location   *string `json:"location" validate:"omitempty,page_location"`
	IsEnabled  *bool   `json:"is_enabled"`
	Position   *int64  `json:"position" validate:"omitempty,gte=0"`
	Responsive *bool   `json:"responsive"`
	CustomCode *string `json:"custom_code"`
}

// SetEnabledRequest toggles a placement on or off
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// Response for API responses
type Response struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slot       string `json:"slot,omitempty"`
	Type       string `json:"type"`
	Format     string `json:"format"`
	Location   string `json:"location"`
	IsEnabled  bool   `json:"is_enabled"`
	Position   *int64 `json:"position,omitempty"`
	Responsive bool   `json:"responsive"`
	CustomCode string `json:"custom_code,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ToResponse converts entity to response
func (p *Placement) ToResponse() *Response {
	resp := &Response{
		ID:         p.ID.String(),
		Name:       p.Name,
		Slot:       p.Slot,
		Type:       string(p.Type),
		Format:     string(p.Format),
		Location:   string(p.Location),
		IsEnabled:  p.IsEnabled,
		Responsive: p.Responsive,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}

	if p.Position.Valid {
		v := p.Position.Int64
		resp.Position = &v
	}
	if p.CustomCode.Valid {
		resp.CustomCode = p.CustomCode.String
	}

	return resp
}
