package memory

import (
	"context"
	"fmt"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
)

// ProductRepo implementación en memoria de ProductRepository.
// Guarda y devuelve copias: memdb exige que los objetos indexados no se modifiquen.
type ProductRepo struct {
	s scope
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.s.update(func(txn *memdb.Txn) error {
		if existing, err := txn.First(tableProducts, indexID, product.ID); err != nil {
			return fmt.Errorf("insert product: %w", err)
		} else if existing != nil {
			return domain.ErrDuplicate
		}
		if existing, err := txn.First(tableProducts, indexSKU, product.SKU); err != nil {
			return fmt.Errorf("insert product: %w", err)
		} else if existing != nil {
			return domain.ErrDuplicate
		}
		cp := *product
		return txn.Insert(tableProducts, &cp)
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.first(indexID, id)
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	return r.first(indexSKU, sku)
}

func (r *ProductRepo) first(index, value string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableProducts, index, value)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if raw != nil {
			cp := *raw.(*entity.Product)
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.s.update(func(txn *memdb.Txn) error {
		current, err := txn.First(tableProducts, indexID, product.ID)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if current == nil {
			return domain.ErrNotFound
		}
		other, err := txn.First(tableProducts, indexSKU, product.SKU)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if other != nil && other.(*entity.Product).ID != product.ID {
			return domain.ErrDuplicate
		}
		cp := *product
		return txn.Insert(tableProducts, &cp)
	})
}

// List recorre el índice por nombre, por lo que el resultado ya sale ordenado.
func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	var matched []*entity.Product
	err := r.s.view(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableProducts, indexName)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			p := raw.(*entity.Product)
			if filter.Active != nil && p.IsActive != *filter.Active {
				continue
			}
			cp := *p
			matched = append(matched, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.s.update(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableProducts, indexID, id)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		if raw == nil {
			return domain.ErrNotFound
		}
		return txn.Delete(tableProducts, raw)
	})
}

// LocationRepo implementación en memoria de LocationRepository.
type LocationRepo struct {
	s scope
}

func (r *LocationRepo) Create(_ context.Context, location *entity.Location) error {
	return r.s.update(func(txn *memdb.Txn) error {
		for index, value := range map[string]string{indexID: location.ID, indexName: location.Name} {
			existing, err := txn.First(tableLocations, index, value)
			if err != nil {
				return fmt.Errorf("insert location: %w", err)
			}
			if existing != nil {
				return domain.ErrDuplicate
			}
		}
		cp := *location
		return txn.Insert(tableLocations, &cp)
	})
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	return r.first(indexID, id)
}

func (r *LocationRepo) GetByName(_ context.Context, name string) (*entity.Location, error) {
	return r.first(indexName, name)
}

func (r *LocationRepo) first(index, value string) (*entity.Location, error) {
	var out *entity.Location
	err := r.s.view(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableLocations, index, value)
		if err != nil {
			return fmt.Errorf("get location: %w", err)
		}
		if raw != nil {
			cp := *raw.(*entity.Location)
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Location, error) {
	var out []*entity.Location
	err := r.s.view(func(txn *memdb.Txn) error {
		for _, id := range ids {
			raw, err := txn.First(tableLocations, indexID, id)
			if err != nil {
				return fmt.Errorf("list locations by ids: %w", err)
			}
			if raw != nil {
				cp := *raw.(*entity.Location)
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) Update(_ context.Context, location *entity.Location) error {
	return r.s.update(func(txn *memdb.Txn) error {
		current, err := txn.First(tableLocations, indexID, location.ID)
		if err != nil {
			return fmt.Errorf("update location: %w", err)
		}
		if current == nil {
			return domain.ErrNotFound
		}
		other, err := txn.First(tableLocations, indexName, location.Name)
		if err != nil {
			return fmt.Errorf("update location: %w", err)
		}
		if other != nil && other.(*entity.Location).ID != location.ID {
			return domain.ErrDuplicate
		}
		cp := *location
		return txn.Insert(tableLocations, &cp)
	})
}

func (r *LocationRepo) List(_ context.Context, limit, offset int) ([]*entity.Location, int, error) {
	var all []*entity.Location
	err := r.s.view(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableLocations, indexName)
		if err != nil {
			return fmt.Errorf("list locations: %w", err)
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			cp := *raw.(*entity.Location)
			all = append(all, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return paginate(all, limit, offset), len(all), nil
}

func (r *LocationRepo) Delete(_ context.Context, id string) error {
	return r.s.update(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableLocations, indexID, id)
		if err != nil {
			return fmt.Errorf("delete location: %w", err)
		}
		if raw == nil {
			return domain.ErrNotFound
		}
		return txn.Delete(tableLocations, raw)
	})
}

// paginate aplica limit/offset sobre una lista ya ordenada; limit <= 0 devuelve todo.
func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
