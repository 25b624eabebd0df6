package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ProductFilter criterios de listado de productos.
type ProductFilter struct {
	Active *bool // nil = todos
	Limit  int
	Offset int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetBySKU devuelven (nil, nil) cuando no existe el registro.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// List devuelve los productos ordenados por nombre y el total sin paginar.
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	// Delete elimina el producto; domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}
