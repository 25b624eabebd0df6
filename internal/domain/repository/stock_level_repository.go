package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// LocationStock nivel de stock de un producto junto con los datos de su ubicación.
type LocationStock struct {
	entity.StockLevel
	LocationName  string
	Address       string
	ContactPerson string
}

// ProductStock nivel de stock en una ubicación junto con los datos del producto.
type ProductStock struct {
	entity.StockLevel
	ProductName       string
	SKU               string
	Category          string
	UnitOfMeasurement string
	Price             decimal.Decimal
	IsActive          bool
}

// LowStockItem total de stock de un producto activo sumado en todas sus ubicaciones.
type LowStockItem struct {
	ProductID  string
	Name       string
	SKU        string
	Category   string
	Price      decimal.Decimal
	TotalStock int64
	Locations  int // cantidad de niveles de stock que suman al total
}

// StockLevelRepository define el puerto para consultar/actualizar niveles de stock por producto+ubicación.
// Los métodos ForUpdate solo tienen sentido dentro de una transacción (TxRunner).
type StockLevelRepository interface {
	// Get devuelve (nil, nil) si no hay nivel para el par.
	Get(ctx context.Context, productID, locationID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea el nivel hasta el fin de la transacción; (nil, nil) si no existe.
	GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockLevel, error)
	// GetOrCreateForUpdate crea el nivel con cantidad 0 si no existe (usando level.ID) y lo bloquea.
	// created indica si la fila fue creada por esta llamada.
	GetOrCreateForUpdate(ctx context.Context, level *entity.StockLevel) (stock *entity.StockLevel, created bool, err error)
	UpdateQuantity(ctx context.Context, id string, quantity int64, at time.Time) error

	// ListByProduct niveles del producto ordenados por nombre de ubicación.
	ListByProduct(ctx context.Context, productID string) ([]LocationStock, error)
	// ListByLocation niveles de la ubicación ordenados por nombre de producto.
	ListByLocation(ctx context.Context, locationID string) ([]ProductStock, error)
	// LowStock productos activos con total < threshold, ordenados por total y nombre.
	// includeUnstocked incluye productos activos sin ningún nivel (total 0).
	LowStock(ctx context.Context, threshold int64, includeUnstocked bool) ([]LowStockItem, error)
}
