package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre MongoDB.
type ProductRepo struct {
	col *mongo.Collection
}

// NewProductRepository construye el adaptador de productos.
func NewProductRepository(db *mongo.Database) *ProductRepo {
	return &ProductRepo{col: db.Collection(colProducts)}
}

// Create persiste un nuevo producto; domain.ErrDuplicate si el SKU ya existe.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	doc, err := newProductDoc(product)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// GetBySKU obtiene un producto por SKU normalizado.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.findOne(ctx, bson.D{{Key: "sku", Value: sku}})
}

func (r *ProductRepo) findOne(ctx context.Context, filter bson.D) (*entity.Product, error) {
	var doc productDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toEntity(), nil
}

// Update reemplaza los campos editables del producto.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	oid, ok := objectID(product.ID)
	if !ok {
		return domain.ErrNotFound
	}
	price, err := toDecimal128(product.Price)
	if err != nil {
		return err
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: product.Name},
		{Key: "description", Value: product.Description},
		{Key: "category", Value: product.Category},
		{Key: "unit_of_measurement", Value: product.UnitOfMeasurement},
		{Key: "price", Value: price},
		{Key: "is_active", Value: product.IsActive},
		{Key: "updated_at", Value: product.UpdatedAt},
	}}}
	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List productos ordenados por nombre, con filtro opcional por estado.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	query := bson.D{}
	if filter.Active != nil {
		query = append(query, bson.E{Key: "is_active", Value: *filter.Active})
	}
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	list := make([]*entity.Product, 0, len(docs))
	for i := range docs {
		list = append(list, docs[i].toEntity())
	}
	return list, int(total), nil
}

// Delete elimina el producto; domain.ErrNotFound si no existe.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
