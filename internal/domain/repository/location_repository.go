package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location (DIP).
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByName(ctx context.Context, name string) (*entity.Location, error)
	// ListByIDs resuelve varias ubicaciones a la vez; los ids inexistentes se omiten.
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	List(ctx context.Context, limit, offset int) ([]*entity.Location, int, error)
	Delete(ctx context.Context, id string) error
}
