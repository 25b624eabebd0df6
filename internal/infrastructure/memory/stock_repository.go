package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.StockLevelRepository      = (*StockLevelRepo)(nil)
	_ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)
	_ repository.StockTransferRepository   = (*StockTransferRepo)(nil)
)

// StockLevelRepo implementación en memoria de StockLevelRepository.
// Dentro de TxRunner el bloqueo lo da la transacción de escritura única de memdb.
type StockLevelRepo struct {
	s scope
}

func (r *StockLevelRepo) Get(_ context.Context, productID, locationID string) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.s.view(func(txn *memdb.Txn) error {
		l, err := levelByPair(txn, productID, locationID)
		out = l
		return err
	})
	return out, err
}

func (r *StockLevelRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockLevel, error) {
	return r.Get(ctx, productID, locationID)
}

func (r *StockLevelRepo) GetOrCreateForUpdate(_ context.Context, level *entity.StockLevel) (*entity.StockLevel, bool, error) {
	var (
		out     *entity.StockLevel
		created bool
	)
	err := r.s.update(func(txn *memdb.Txn) error {
		existing, err := levelByPair(txn, level.ProductID, level.LocationID)
		if err != nil {
			return err
		}
		if existing != nil {
			out = existing
			return nil
		}
		cp := *level
		cp.Quantity = 0
		if err := txn.Insert(tableLevels, &cp); err != nil {
			return fmt.Errorf("insert stock level: %w", err)
		}
		fresh := cp
		out, created = &fresh, true
		return nil
	})
	return out, created, err
}

func (r *StockLevelRepo) UpdateQuantity(_ context.Context, id string, quantity int64, at time.Time) error {
	if quantity < 0 {
		return fmt.Errorf("update stock level: cantidad negativa %d", quantity)
	}
	return r.s.update(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableLevels, indexID, id)
		if err != nil {
			return fmt.Errorf("update stock level: %w", err)
		}
		if raw == nil {
			return domain.ErrStockLevelNotFound
		}
		cp := *raw.(*entity.StockLevel)
		cp.Quantity = quantity
		cp.LastUpdated = at
		return txn.Insert(tableLevels, &cp)
	})
}

func (r *StockLevelRepo) ListByProduct(_ context.Context, productID string) ([]repository.LocationStock, error) {
	out := []repository.LocationStock{}
	err := r.s.view(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableLevels, indexProduct, productID)
		if err != nil {
			return fmt.Errorf("list stock levels by product: %w", err)
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			l := raw.(*entity.StockLevel)
			loc, err := txn.First(tableLocations, indexID, l.LocationID)
			if err != nil {
				return fmt.Errorf("list stock levels by product: %w", err)
			}
			if loc == nil {
				continue
			}
			location := loc.(*entity.Location)
			out = append(out, repository.LocationStock{
				StockLevel:    *l,
				LocationName:  location.Name,
				Address:       location.Address,
				ContactPerson: location.ContactPerson,
			})
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].LocationName < out[j].LocationName })
	return out, err
}

func (r *StockLevelRepo) ListByLocation(_ context.Context, locationID string) ([]repository.ProductStock, error) {
	out := []repository.ProductStock{}
	err := r.s.view(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableLevels, indexLocation, locationID)
		if err != nil {
			return fmt.Errorf("list stock levels by location: %w", err)
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			l := raw.(*entity.StockLevel)
			p, err := txn.First(tableProducts, indexID, l.ProductID)
			if err != nil {
				return fmt.Errorf("list stock levels by location: %w", err)
			}
			if p == nil {
				continue
			}
			product := p.(*entity.Product)
			out = append(out, repository.ProductStock{
				StockLevel:        *l,
				ProductName:       product.Name,
				SKU:               product.SKU,
				Category:          product.Category,
				UnitOfMeasurement: product.UnitOfMeasurement,
				Price:             product.Price,
				IsActive:          product.IsActive,
			})
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, err
}

func (r *StockLevelRepo) LowStock(_ context.Context, threshold int64, includeUnstocked bool) ([]repository.LowStockItem, error) {
	out := []repository.LowStockItem{}
	err := r.s.view(func(txn *memdb.Txn) error {
		products, err := txn.Get(tableProducts, indexID)
		if err != nil {
			return fmt.Errorf("low stock: %w", err)
		}
		for raw := products.Next(); raw != nil; raw = products.Next() {
			p := raw.(*entity.Product)
			if !p.IsActive {
				continue
			}
			levels, err := txn.Get(tableLevels, indexProduct, p.ID)
			if err != nil {
				return fmt.Errorf("low stock: %w", err)
			}
			var total int64
			count := 0
			for l := levels.Next(); l != nil; l = levels.Next() {
				total += l.(*entity.StockLevel).Quantity
				count++
			}
			if count == 0 && !includeUnstocked {
				continue
			}
			if total >= threshold {
				continue
			}
			out = append(out, repository.LowStockItem{
				ProductID:  p.ID,
				Name:       p.Name,
				SKU:        p.SKU,
				Category:   p.Category,
				Price:      p.Price,
				TotalStock: total,
				Locations:  count,
			})
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalStock != out[j].TotalStock {
			return out[i].TotalStock < out[j].TotalStock
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func levelByPair(txn *memdb.Txn, productID, locationID string) (*entity.StockLevel, error) {
	raw, err := txn.First(tableLevels, indexPair, productID, locationID)
	if err != nil {
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	cp := *raw.(*entity.StockLevel)
	return &cp, nil
}

// StockAdjustmentRepo implementación en memoria (append-only) de StockAdjustmentRepository.
type StockAdjustmentRepo struct {
	s scope
}

func (r *StockAdjustmentRepo) Create(_ context.Context, adjustment *entity.StockAdjustment) error {
	return r.s.update(func(txn *memdb.Txn) error {
		cp := *adjustment
		if err := txn.Insert(tableAdjustments, &cp); err != nil {
			return fmt.Errorf("insert stock adjustment: %w", err)
		}
		return nil
	})
}

func (r *StockAdjustmentRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockAdjustment, error) {
	var out []*entity.StockAdjustment
	err := r.s.view(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableAdjustments, indexProduct, productID)
		if err != nil {
			return fmt.Errorf("list stock adjustments: %w", err)
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			cp := *raw.(*entity.StockAdjustment)
			out = append(out, &cp)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, err
}

// StockTransferRepo implementación en memoria de StockTransferRepository.
type StockTransferRepo struct {
	s scope
}

func (r *StockTransferRepo) Create(_ context.Context, transfer *entity.StockTransfer) error {
	return r.s.update(func(txn *memdb.Txn) error {
		cp := copyTransfer(transfer)
		if err := txn.Insert(tableTransfers, cp); err != nil {
			return fmt.Errorf("insert stock transfer: %w", err)
		}
		return nil
	})
}

func (r *StockTransferRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockTransfer, error) {
	var out []*entity.StockTransfer
	err := r.s.view(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableTransfers, indexProduct, productID)
		if err != nil {
			return fmt.Errorf("list stock transfers: %w", err)
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			out = append(out, copyTransfer(raw.(*entity.StockTransfer)))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestTimestamp.After(out[j].RequestTimestamp) })
	return out, err
}

func copyTransfer(t *entity.StockTransfer) *entity.StockTransfer {
	cp := *t
	if t.CompletionTimestamp != nil {
		at := *t.CompletionTimestamp
		cp.CompletionTimestamp = &at
	}
	return &cp
}
