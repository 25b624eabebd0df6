package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name              string           `json:"name" validate:"required,min=1,max=255"`
	SKU               string           `json:"sku" validate:"required,min=1,max=50"`
	Description       string           `json:"description" validate:"max=1000"`
	Category          string           `json:"category" validate:"max=100"`
	UnitOfMeasurement string           `json:"unit_of_measurement" validate:"max=20"`
	Price             *decimal.Decimal `json:"price" validate:"required,gte=0" swaggertype:"number"`
	IsActive          *bool            `json:"is_active"`
}

// UpdateProductRequest entrada para actualizar un producto. El SKU no se modifica.
type UpdateProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description       *string          `json:"description" validate:"omitempty,max=1000"`
	Category          *string          `json:"category" validate:"omitempty,max=100"`
	UnitOfMeasurement *string          `json:"unit_of_measurement" validate:"omitempty,min=1,max=20"`
	Price             *decimal.Decimal `json:"price" validate:"omitempty,gte=0" swaggertype:"number"`
	IsActive          *bool            `json:"is_active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	UnitOfMeasurement string          `json:"unit_of_measurement"`
	Price             decimal.Decimal `json:"price" swaggertype:"number"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductRefResponse datos resumidos de un producto dentro de otra respuesta.
type ProductRefResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Category          string          `json:"category"`
	UnitOfMeasurement string          `json:"unit_of_measurement"`
	Price             decimal.Decimal `json:"price" swaggertype:"number"`
	IsActive          bool            `json:"is_active"`
}
