package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo implementación de StockTransferRepository sobre PostgreSQL.
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

// Create inserta un traslado.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (id, product_id, from_location_id, to_location_id, quantity, status, requested_at, completed_at, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProductID, t.FromLocationID, t.ToLocationID, t.Quantity, t.Status,
		t.RequestTimestamp, t.CompletionTimestamp, t.RequestedBy,
	)
	if err != nil {
		return fmt.Errorf("insert stock transfer: %w", err)
	}
	return nil
}

// ListByProduct traslados del producto, más recientes primero.
func (r *StockTransferRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockTransfer, error) {
	query := `
		SELECT id, product_id, from_location_id, to_location_id, quantity, status, requested_at, completed_at, requested_by
		FROM stock_transfers
		WHERE product_id = $1
		ORDER BY requested_at DESC`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransfer
	for rows.Next() {
		var t entity.StockTransfer
		if err := rows.Scan(&t.ID, &t.ProductID, &t.FromLocationID, &t.ToLocationID, &t.Quantity,
			&t.Status, &t.RequestTimestamp, &t.CompletionTimestamp, &t.RequestedBy); err != nil {
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
