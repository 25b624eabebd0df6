//go:build integration

package mongodb_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

// Ejecutar con: TEST_MONGO_URI=mongodb://localhost:27017/?replicaSet=rs0 go test -tags integration ./...
// Las transacciones requieren replica set. Cada prueba usa una base propia que se elimina al terminar.
type testEnv struct {
	client *mongo.Client
	db     *mongo.Database
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI no definido")
	}
	ctx := context.Background()
	client, err := mongodb.Connect(ctx, config.MongoConfig{URI: uri, AppName: "stock-ledger-it", MaxPoolSize: 10})
	require.NoError(t, err)

	db := client.Database("stock_ledger_it_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, mongodb.EnsureIndexes(ctx, db))
	return &testEnv{client: client, db: db}
}

func newID() string { return primitive.NewObjectID().Hex() }

func (e *testEnv) createProduct(t *testing.T, name string, active bool) string {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Product{
		ID:                newID(),
		Name:              name,
		SKU:               strings.ToUpper(name),
		UnitOfMeasurement: entity.DefaultUnitOfMeasurement,
		Price:             decimal.RequireFromString("12.50"),
		IsActive:          active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, mongodb.NewProductRepository(e.db).Create(context.Background(), p))
	return p.ID
}

func (e *testEnv) createLocation(t *testing.T, name string) string {
	t.Helper()
	now := time.Now().UTC()
	l := &entity.Location{ID: newID(), Name: name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, mongodb.NewLocationRepository(e.db).Create(context.Background(), l))
	return l.ID
}

func (e *testEnv) ledger() *inventory.StockLedgerUseCase {
	return inventory.NewStockLedgerUseCase(
		mongodb.NewTxRunner(e.client, e.db),
		mongodb.NewProductRepository(e.db),
		mongodb.NewLocationRepository(e.db),
		nil, nil, zerolog.Nop(),
	)
}

func TestStockLevelRepo_UpsertConSetOnInsert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.createProduct(t, "Taladro", true)
	locationID := env.createLocation(t, "Norte")
	runner := mongodb.NewTxRunner(env.client, env.db)

	var firstID string
	err := runner.Run(ctx, func(ctx context.Context, levels repository.StockLevelRepository, _ repository.StockAdjustmentRepository, _ repository.StockTransferRepository) error {
		level, created, err := levels.GetOrCreateForUpdate(ctx, &entity.StockLevel{ID: newID(), ProductID: productID, LocationID: locationID, LastUpdated: time.Now().UTC()})
		if err != nil {
			return err
		}
		assert.True(t, created)
		assert.Zero(t, level.Quantity)
		firstID = level.ID
		return levels.UpdateQuantity(ctx, level.ID, 7, time.Now().UTC())
	})
	require.NoError(t, err)

	err = runner.Run(ctx, func(ctx context.Context, levels repository.StockLevelRepository, _ repository.StockAdjustmentRepository, _ repository.StockTransferRepository) error {
		level, created, err := levels.GetOrCreateForUpdate(ctx, &entity.StockLevel{ID: newID(), ProductID: productID, LocationID: locationID, LastUpdated: time.Now().UTC()})
		if err != nil {
			return err
		}
		assert.False(t, created)
		assert.Equal(t, firstID, level.ID)
		assert.Equal(t, int64(7), level.Quantity)
		return nil
	})
	require.NoError(t, err)

	errAbort := errors.New("abortar")
	otherLocation := env.createLocation(t, "Sur")
	err = runner.Run(ctx, func(ctx context.Context, levels repository.StockLevelRepository, _ repository.StockAdjustmentRepository, _ repository.StockTransferRepository) error {
		if _, _, err := levels.GetOrCreateForUpdate(ctx, &entity.StockLevel{ID: newID(), ProductID: productID, LocationID: otherLocation, LastUpdated: time.Now().UTC()}); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	level, err := mongodb.NewStockLevelRepository(env.db).Get(ctx, productID, otherLocation)
	require.NoError(t, err)
	assert.Nil(t, level, "el abort descarta el upsert")
}

func TestStockLevelRepo_AgregacionesLowStockYListados(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ledger := env.ledger()
	levels := mongodb.NewStockLevelRepository(env.db)

	arandela := env.createProduct(t, "Arandela", true)
	broca := env.createProduct(t, "Broca", true)
	clavo := env.createProduct(t, "Clavo", false)
	destornillador := env.createProduct(t, "Destornillador", true)
	sur := env.createLocation(t, "Sur")
	norte := env.createLocation(t, "Norte")

	for _, in := range []inventory.SetInitialStockInput{
		{ProductID: arandela, LocationID: norte, Quantity: 3},
		{ProductID: arandela, LocationID: sur, Quantity: 2},
		{ProductID: clavo, LocationID: norte, Quantity: 0},
		{ProductID: destornillador, LocationID: norte, Quantity: 50},
	} {
		_, err := ledger.SetInitialStock(ctx, in)
		require.NoError(t, err)
	}

	low, err := levels.LowStock(ctx, 10, false)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, arandela, low[0].ProductID)
	assert.Equal(t, int64(5), low[0].TotalStock)
	assert.Equal(t, 2, low[0].Locations)
	assert.True(t, decimal.RequireFromString("12.50").Equal(low[0].Price))

	low, err = levels.LowStock(ctx, 10, true)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, broca, low[0].ProductID)
	assert.Zero(t, low[0].TotalStock)
	assert.Zero(t, low[0].Locations)
	assert.Equal(t, arandela, low[1].ProductID)

	byProduct, err := levels.ListByProduct(ctx, arandela)
	require.NoError(t, err)
	require.Len(t, byProduct, 2)
	assert.Equal(t, "Norte", byProduct[0].LocationName)
	assert.Equal(t, "Sur", byProduct[1].LocationName)

	byLocation, err := levels.ListByLocation(ctx, norte)
	require.NoError(t, err)
	require.Len(t, byLocation, 3)
	assert.Equal(t, []string{"Arandela", "Clavo", "Destornillador"},
		[]string{byLocation[0].ProductName, byLocation[1].ProductName, byLocation[2].ProductName})

	// $unwind descarta el nivel cuya ubicación ya no existe.
	require.NoError(t, mongodb.NewLocationRepository(env.db).Delete(ctx, sur))
	byProduct, err = levels.ListByProduct(ctx, arandela)
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	assert.Equal(t, "Norte", byProduct[0].LocationName)
}

func TestLedger_MongoTrasladoCreaDestino(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ledger := env.ledger()
	productID := env.createProduct(t, "Tuerca", true)
	norte := env.createLocation(t, "Norte")
	sur := env.createLocation(t, "Sur")

	_, err := ledger.SetInitialStock(ctx, inventory.SetInitialStockInput{ProductID: productID, LocationID: norte, Quantity: 30})
	require.NoError(t, err)

	out, err := ledger.TransferStock(ctx, inventory.TransferStockInput{ProductID: productID, FromLocationID: norte, ToLocationID: sur, Quantity: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.Source.Quantity)
	assert.Equal(t, int64(20), out.Destination.Quantity)

	levels, err := mongodb.NewStockLevelRepository(env.db).ListByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, int64(30), levels[0].Quantity+levels[1].Quantity)

	transfers, err := mongodb.NewStockTransferRepository(env.db).ListByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, entity.TransferStatusCompleted, transfers[0].Status)
}
