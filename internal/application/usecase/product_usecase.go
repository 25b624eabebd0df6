package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja vía el ledger.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// NormalizeSKU recorta espacios y pasa el SKU a mayúsculas.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// Create crea un nuevo producto. El SKU se normaliza y debe ser único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := NormalizeSKU(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" || in.Price == nil || in.Price.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateSKU
	}
	unit := strings.TrimSpace(in.UnitOfMeasurement)
	if unit == "" {
		unit = entity.DefaultUnitOfMeasurement
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	product := &entity.Product{
		ID:                primitive.NewObjectID().Hex(),
		Name:              name,
		SKU:               sku,
		Description:       strings.TrimSpace(in.Description),
		Category:          strings.TrimSpace(in.Category),
		UnitOfMeasurement: unit,
		Price:             *in.Price,
		IsActive:          active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicateSKU
		}
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update aplica solo los campos permitidos (el SKU no se modifica).
// Devuelve (nil, nil) si el producto no existe.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.UnitOfMeasurement != nil {
		product.UnitOfMeasurement = strings.TrimSpace(*in.UnitOfMeasurement)
	}
	if in.Price != nil {
		if in.Price.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos ordenados por nombre con paginación. active filtra por estado si no es nil.
func (uc *ProductUseCase) List(ctx context.Context, active *bool, limit, offset int) (*dto.ProductListResponse, error) {
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{Active: active, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Delete elimina un producto por ID. Los niveles y registros de stock no se eliminan.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrProductNotFound
		}
		return err
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		SKU:               p.SKU,
		Description:       p.Description,
		Category:          p.Category,
		UnitOfMeasurement: p.UnitOfMeasurement,
		Price:             p.Price,
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
