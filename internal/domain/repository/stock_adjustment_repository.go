package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockAdjustmentRepository puerto append-only para ajustes de stock.
type StockAdjustmentRepository interface {
	Create(ctx context.Context, adjustment *entity.StockAdjustment) error
	// ListByProduct ajustes del producto, más recientes primero.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockAdjustment, error)
}
