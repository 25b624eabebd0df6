package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SetInitialStockRequest body para POST /api/stocklevels/initial.
type SetInitialStockRequest struct {
	ProductID  string `json:"product_id" validate:"required,objectid"`
	LocationID string `json:"location_id" validate:"required,objectid"`
	Quantity   *int64 `json:"quantity" validate:"required,gte=0,max=9007199254740991"`
}

// AdjustStockRequest body para POST /api/stockadjustments.
// quantity_change lleva el signo; adjustment_type solo clasifica el ajuste.
type AdjustStockRequest struct {
	ProductID      string `json:"product_id" validate:"required,objectid"`
	LocationID     string `json:"location_id" validate:"required,objectid"`
	AdjustmentType string `json:"adjustment_type" validate:"required,oneof=add remove damage loss"`
	QuantityChange *int64 `json:"quantity_change" validate:"required,min=-9007199254740991,max=9007199254740991"`
	Reason         string `json:"reason" validate:"max=500"`
	AdjustedBy     string `json:"adjusted_by" validate:"max=100"`
}

// TransferStockRequest body para POST /api/stocktransfers.
type TransferStockRequest struct {
	ProductID      string `json:"product_id" validate:"required,objectid"`
	FromLocationID string `json:"from_location_id" validate:"required,objectid"`
	ToLocationID   string `json:"to_location_id" validate:"required,objectid,nefield=FromLocationID"`
	Quantity       *int64 `json:"quantity" validate:"required,gte=1,max=9007199254740991"`
	RequestedBy    string `json:"requested_by" validate:"max=100"`
}

// StockLevelResponse salida de un nivel de stock.
type StockLevelResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	LocationID  string    `json:"location_id"`
	Quantity    int64     `json:"quantity"`
	LastUpdated time.Time `json:"last_updated"`
}

// LocationStockResponse nivel de stock de un producto en una ubicación (GET /products/:id/stock).
type LocationStockResponse struct {
	StockLevelResponse
	Location LocationRefResponse `json:"location"`
}

// ProductStockResponse nivel de stock de un producto en la ubicación consultada (GET /locations/:id/stock).
type ProductStockResponse struct {
	StockLevelResponse
	Product ProductRefResponse `json:"product"`
}

// StockAdjustmentResponse salida de un ajuste de stock.
type StockAdjustmentResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	LocationID     string    `json:"location_id"`
	AdjustmentType string    `json:"adjustment_type"`
	QuantityChange int64     `json:"quantity_change"`
	CurrentStock   int64     `json:"current_stock"`
	Reason         string    `json:"reason,omitempty"`
	AdjustedBy     string    `json:"adjusted_by,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// StockTransferResponse salida de un traslado.
type StockTransferResponse struct {
	ID                  string     `json:"id"`
	ProductID           string     `json:"product_id"`
	FromLocationID      string     `json:"from_location_id"`
	ToLocationID        string     `json:"to_location_id"`
	Quantity            int64      `json:"quantity"`
	Status              string     `json:"status"`
	RequestTimestamp    time.Time  `json:"request_timestamp"`
	CompletionTimestamp *time.Time `json:"completion_timestamp,omitempty"`
	RequestedBy         string     `json:"requested_by,omitempty"`
}

// InitialStockResponse resultado de la carga inicial de stock.
type InitialStockResponse struct {
	StockLevel StockLevelResponse      `json:"stock_level"`
	Adjustment StockAdjustmentResponse `json:"adjustment"`
	Created    bool                    `json:"created"`
}

// AdjustStockResponse resultado de un ajuste de stock.
type AdjustStockResponse struct {
	StockLevel StockLevelResponse      `json:"stock_level"`
	Adjustment StockAdjustmentResponse `json:"adjustment"`
}

// TransferStockResponse resultado de un traslado con ambos niveles ya actualizados.
type TransferStockResponse struct {
	Transfer    StockTransferResponse `json:"transfer"`
	Source      StockLevelResponse    `json:"source"`
	Destination StockLevelResponse    `json:"destination"`
}

// LowStockItemResponse producto activo cuyo stock total está bajo el umbral.
type LowStockItemResponse struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price" swaggertype:"number"`
	TotalStock int64           `json:"total_stock"`
	Locations  int             `json:"locations"`
}
