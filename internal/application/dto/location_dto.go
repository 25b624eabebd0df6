package dto

import "time"

// CreateLocationRequest entrada para crear una ubicación.
type CreateLocationRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=255"`
	Address       string `json:"address" validate:"max=500"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
}

// UpdateLocationRequest entrada para actualizar una ubicación.
type UpdateLocationRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	Address       *string `json:"address" validate:"omitempty,max=500"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=100"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	ContactPerson string    `json:"contact_person"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// LocationRefResponse referencia a una ubicación (id + nombre) en historiales y niveles.
type LocationRefResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
}
