package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para ubicaciones.
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// Create crea una nueva ubicación. El nombre debe ser único.
func (uc *LocationUseCase) Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateLocation
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	location := &entity.Location{
		ID:            primitive.NewObjectID().Hex(),
		Name:          name,
		Address:       strings.TrimSpace(in.Address),
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, location); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicateLocation
		}
		return nil, err
	}
	return toLocationResponse(location), nil
}

// GetByID obtiene una ubicación por ID. Devuelve (nil, nil) si no existe.
func (uc *LocationUseCase) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, nil
	}
	return toLocationResponse(location), nil
}

// Update actualiza nombre, dirección y contacto. Devuelve (nil, nil) si no existe.
func (uc *LocationUseCase) Update(ctx context.Context, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		if name != location.Name {
			other, err := uc.repo.GetByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != location.ID {
				return nil, domain.ErrDuplicateLocation
			}
		}
		location.Name = name
	}
	if in.Address != nil {
		location.Address = strings.TrimSpace(*in.Address)
	}
	if in.ContactPerson != nil {
		location.ContactPerson = strings.TrimSpace(*in.ContactPerson)
	}
	location.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if err := uc.repo.Update(ctx, location); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicateLocation
		}
		return nil, err
	}
	return toLocationResponse(location), nil
}

// List lista ubicaciones ordenadas por nombre con paginación.
func (uc *LocationUseCase) List(ctx context.Context, limit, offset int) (*dto.LocationListResponse, error) {
	list, total, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Delete elimina una ubicación por ID.
func (uc *LocationUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrLocationNotFound
		}
		return err
	}
	return nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:            l.ID,
		Name:          l.Name,
		Address:       l.Address,
		ContactPerson: l.ContactPerson,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
