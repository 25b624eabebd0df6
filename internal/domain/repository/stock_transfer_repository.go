package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockTransferRepository puerto para traslados de stock.
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	// ListByProduct traslados del producto, más recientes (por RequestTimestamp) primero.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockTransfer, error)
}
