package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnitOfMeasurement unidad usada cuando el producto no declara una.
const DefaultUnitOfMeasurement = "pcs"

// Product representa un producto del catálogo. El stock se lleva por ubicación en StockLevel.
type Product struct {
	ID                string
	Name              string
	SKU               string // único, normalizado en mayúsculas
	Description       string
	Category          string
	UnitOfMeasurement string
	Price             decimal.Decimal // precio >= 0
	IsActive          bool            // solo los activos entran en el reporte de bajo stock
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
