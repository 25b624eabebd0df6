package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)
	_ repository.StockTransferRepository   = (*StockTransferRepo)(nil)
)

// StockAdjustmentRepo registros append-only de ajustes.
type StockAdjustmentRepo struct {
	col *mongo.Collection
}

func NewStockAdjustmentRepository(db *mongo.Database) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{col: db.Collection(colAdjustments)}
}

func (r *StockAdjustmentRepo) Create(ctx context.Context, a *entity.StockAdjustment) error {
	ids, err := parseIDs(a.ID, a.ProductID, a.LocationID)
	if err != nil {
		return err
	}
	doc := stockAdjustmentDoc{
		ID:             ids[0],
		ProductID:      ids[1],
		LocationID:     ids[2],
		Type:           a.Type,
		QuantityChange: a.QuantityChange,
		CurrentStock:   a.CurrentStock,
		Reason:         a.Reason,
		AdjustedBy:     a.AdjustedBy,
		Timestamp:      a.Timestamp,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert stock adjustment: %w", err)
	}
	return nil
}

// ListByProduct ajustes del producto, más recientes primero.
func (r *StockAdjustmentRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockAdjustment, error) {
	list := []*entity.StockAdjustment{}
	pid, ok := objectID(productID)
	if !ok {
		return list, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.D{{Key: "product_id", Value: pid}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list stock adjustments: %w", err)
	}
	var docs []stockAdjustmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock adjustments: %w", err)
	}
	for i := range docs {
		list = append(list, docs[i].toEntity())
	}
	return list, nil
}

// StockTransferRepo registros de traslados entre ubicaciones.
type StockTransferRepo struct {
	col *mongo.Collection
}

func NewStockTransferRepository(db *mongo.Database) *StockTransferRepo {
	return &StockTransferRepo{col: db.Collection(colTransfers)}
}

func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	ids, err := parseIDs(t.ID, t.ProductID, t.FromLocationID, t.ToLocationID)
	if err != nil {
		return err
	}
	doc := stockTransferDoc{
		ID:                  ids[0],
		ProductID:           ids[1],
		FromLocationID:      ids[2],
		ToLocationID:        ids[3],
		Quantity:            t.Quantity,
		Status:              t.Status,
		RequestTimestamp:    t.RequestTimestamp,
		CompletionTimestamp: t.CompletionTimestamp,
		RequestedBy:         t.RequestedBy,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert stock transfer: %w", err)
	}
	return nil
}

// ListByProduct traslados del producto, más recientes primero.
func (r *StockTransferRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockTransfer, error) {
	list := []*entity.StockTransfer{}
	pid, ok := objectID(productID)
	if !ok {
		return list, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "request_timestamp", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.D{{Key: "product_id", Value: pid}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	var docs []stockTransferDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock transfers: %w", err)
	}
	for i := range docs {
		list = append(list, docs[i].toEntity())
	}
	return list, nil
}
