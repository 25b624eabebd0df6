package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre MongoDB.
// Dentro de una transacción el ctx recibido es el mongo.SessionContext del TxRunner.
type StockLevelRepo struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewStockLevelRepository(db *mongo.Database) *StockLevelRepo {
	return &StockLevelRepo{db: db, col: db.Collection(colLevels)}
}

func pairFilter(productID, locationID string) (bson.D, bool) {
	pid, ok := objectID(productID)
	if !ok {
		return nil, false
	}
	lid, ok := objectID(locationID)
	if !ok {
		return nil, false
	}
	return bson.D{{Key: "product_id", Value: pid}, {Key: "location_id", Value: lid}}, true
}

// Get obtiene el nivel sin bloquear.
func (r *StockLevelRepo) Get(ctx context.Context, productID, locationID string) (*entity.StockLevel, error) {
	filter, ok := pairFilter(productID, locationID)
	if !ok {
		return nil, nil
	}
	var doc stockLevelDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return doc.toEntity(), nil
}

// GetForUpdate incrementa version con findOneAndUpdate: la escritura toma el lock del documento
// y cualquier otra transacción que lo toque falla con WriteConflict hasta el commit.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockLevel, error) {
	filter, ok := pairFilter(productID, locationID)
	if !ok {
		return nil, nil
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}}}
	var doc stockLevelDoc
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level for update: %w", err)
	}
	return doc.toEntity(), nil
}

// GetOrCreateForUpdate upsert con $setOnInsert; created es true cuando el documento devuelto
// tiene el _id propuesto por el llamador.
func (r *StockLevelRepo) GetOrCreateForUpdate(ctx context.Context, level *entity.StockLevel) (*entity.StockLevel, bool, error) {
	filter, ok := pairFilter(level.ProductID, level.LocationID)
	if !ok {
		return nil, false, errInvalidID(level.ProductID + "/" + level.LocationID)
	}
	newID, ok := objectID(level.ID)
	if !ok {
		return nil, false, errInvalidID(level.ID)
	}
	update := bson.D{
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "_id", Value: newID},
			{Key: "quantity", Value: int64(0)},
			{Key: "last_updated", Value: level.LastUpdated},
		}},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc stockLevelDoc
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, false, fmt.Errorf("upsert stock level: %w", err)
	}
	return doc.toEntity(), doc.ID == newID, nil
}

// UpdateQuantity fija la cantidad y la fecha de actualización del nivel.
func (r *StockLevelRepo) UpdateQuantity(ctx context.Context, id string, quantity int64, at time.Time) error {
	if quantity < 0 {
		return fmt.Errorf("update stock level: cantidad negativa %d", quantity)
	}
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrStockLevelNotFound
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "quantity", Value: quantity},
		{Key: "last_updated", Value: at},
	}}}
	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update stock level: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrStockLevelNotFound
	}
	return nil
}

type levelWithLocation struct {
	stockLevelDoc `bson:",inline"`
	Location      locationDoc `bson:"location"`
}

type levelWithProduct struct {
	stockLevelDoc `bson:",inline"`
	Product       productDoc `bson:"product"`
}

// joinStage $lookup + $unwind; el $unwind descarta niveles cuyo documento referenciado ya no existe.
func joinStage(from, localField, as string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: from},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: "$" + as}},
	}
}

// ListByProduct niveles del producto con los datos de cada ubicación, por nombre de ubicación.
func (r *StockLevelRepo) ListByProduct(ctx context.Context, productID string) ([]repository.LocationStock, error) {
	list := []repository.LocationStock{}
	pid, ok := objectID(productID)
	if !ok {
		return list, nil
	}
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "product_id", Value: pid}}}}}
	pipeline = append(pipeline, joinStage(colLocations, "location_id", "location")...)
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "location.name", Value: 1}}}})

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list stock levels by product: %w", err)
	}
	var docs []levelWithLocation
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock levels: %w", err)
	}
	for i := range docs {
		list = append(list, repository.LocationStock{
			StockLevel:    *docs[i].toEntity(),
			LocationName:  docs[i].Location.Name,
			Address:       docs[i].Location.Address,
			ContactPerson: docs[i].Location.ContactPerson,
		})
	}
	return list, nil
}

// ListByLocation niveles de la ubicación con los datos de cada producto, por nombre de producto.
func (r *StockLevelRepo) ListByLocation(ctx context.Context, locationID string) ([]repository.ProductStock, error) {
	list := []repository.ProductStock{}
	lid, ok := objectID(locationID)
	if !ok {
		return list, nil
	}
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "location_id", Value: lid}}}}}
	pipeline = append(pipeline, joinStage(colProducts, "product_id", "product")...)
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "product.name", Value: 1}}}})

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list stock levels by location: %w", err)
	}
	var docs []levelWithProduct
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock levels: %w", err)
	}
	for i := range docs {
		p := docs[i].Product
		list = append(list, repository.ProductStock{
			StockLevel:        *docs[i].toEntity(),
			ProductName:       p.Name,
			SKU:               p.SKU,
			Category:          p.Category,
			UnitOfMeasurement: p.UnitOfMeasurement,
			Price:             fromDecimal128(p.Price),
			IsActive:          p.IsActive,
		})
	}
	return list, nil
}

type lowStockDoc struct {
	ID         primitive.ObjectID   `bson:"_id"`
	Name       string               `bson:"name"`
	SKU        string               `bson:"sku"`
	Category   string               `bson:"category"`
	Price      primitive.Decimal128 `bson:"price"`
	TotalStock int64                `bson:"total_stock"`
	Locations  int                  `bson:"locations"`
}

// LowStock agrega desde products: $lookup de niveles, $sum de cantidades y filtro por umbral.
func (r *StockLevelRepo) LowStock(ctx context.Context, threshold int64, includeUnstocked bool) ([]repository.LowStockItem, error) {
	match := bson.D{{Key: "total_stock", Value: bson.D{{Key: "$lt", Value: threshold}}}}
	if !includeUnstocked {
		match = append(match, bson.E{Key: "locations", Value: bson.D{{Key: "$gt", Value: 0}}})
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "is_active", Value: true}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colLevels},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "product_id"},
			{Key: "as", Value: "levels"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "sku", Value: 1},
			{Key: "category", Value: 1},
			{Key: "price", Value: 1},
			{Key: "total_stock", Value: bson.D{{Key: "$toLong", Value: bson.D{{Key: "$sum", Value: "$levels.quantity"}}}}},
			{Key: "locations", Value: bson.D{{Key: "$size", Value: "$levels"}}},
		}}},
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "total_stock", Value: 1}, {Key: "name", Value: 1}}}},
	}

	cur, err := r.db.Collection(colProducts).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	var docs []lowStockDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode low stock: %w", err)
	}
	list := make([]repository.LowStockItem, 0, len(docs))
	for _, d := range docs {
		list = append(list, repository.LowStockItem{
			ProductID:  d.ID.Hex(),
			Name:       d.Name,
			SKU:        d.SKU,
			Category:   d.Category,
			Price:      fromDecimal128(d.Price),
			TotalStock: d.TotalStock,
			Locations:  d.Locations,
		})
	}
	return list, nil
}
