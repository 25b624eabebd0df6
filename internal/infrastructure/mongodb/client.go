package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

// Nombres de colecciones.
const (
	colProducts    = "products"
	colLocations   = "locations"
	colLevels      = "stock_levels"
	colAdjustments = "stock_adjustments"
	colTransfers   = "stock_transfers"
)

// Connect abre el cliente MongoDB y verifica la conexión con Ping.
// Las transacciones multi-documento requieren un replica set o un clúster sharded.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(cfg.AppName).
		SetMaxPoolSize(cfg.MaxPoolSize)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("conectar a MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes crea los índices únicos y de consulta (idempotente).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		colProducts: {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		colLocations: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colLevels: {
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "location_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "location_id", Value: 1}}},
		},
		colAdjustments: {
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		colTransfers: {
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "request_timestamp", Value: -1}}},
		},
	}
	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("crear índices de %s: %w", collection, err)
		}
	}
	return nil
}
