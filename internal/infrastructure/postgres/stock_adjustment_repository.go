package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

// StockAdjustmentRepo implementación append-only de StockAdjustmentRepository sobre PostgreSQL.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

// Create inserta un ajuste.
func (r *StockAdjustmentRepo) Create(ctx context.Context, a *entity.StockAdjustment) error {
	query := `
		INSERT INTO stock_adjustments (id, product_id, location_id, type, quantity_change, current_stock, reason, adjusted_by, adjusted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.ProductID, a.LocationID, a.Type, a.QuantityChange, a.CurrentStock,
		a.Reason, a.AdjustedBy, a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert stock adjustment: %w", err)
	}
	return nil
}

// ListByProduct ajustes del producto, más recientes primero.
func (r *StockAdjustmentRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockAdjustment, error) {
	query := `
		SELECT id, product_id, location_id, type, quantity_change, current_stock, reason, adjusted_by, adjusted_at
		FROM stock_adjustments
		WHERE product_id = $1
		ORDER BY adjusted_at DESC`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAdjustment
	for rows.Next() {
		var a entity.StockAdjustment
		if err := rows.Scan(&a.ID, &a.ProductID, &a.LocationID, &a.Type, &a.QuantityChange,
			&a.CurrentStock, &a.Reason, &a.AdjustedBy, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan stock adjustment: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
