package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

var _ inventory.TxRunner = (*memory.TxRunner)(nil)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.MustNewStore()
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", Name: "Zapato", SKU: "ZAP-1", Price: decimal.NewFromInt(3), IsActive: true}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p2", Name: "Abrigo", SKU: "ABR-1", Price: decimal.NewFromInt(9), IsActive: false}))
	require.NoError(t, store.Locations().Create(ctx, &entity.Location{ID: "l1", Name: "Sur"}))
	require.NoError(t, store.Locations().Create(ctx, &entity.Location{ID: "l2", Name: "Norte"}))
	return store
}

func TestProductRepo_UnicidadYCopias(t *testing.T) {
	store := seed(t)
	ctx := context.Background()

	err := store.Products().Create(ctx, &entity.Product{ID: "p3", Name: "Otro", SKU: "ZAP-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	p, err := store.Products().GetBySKU(ctx, "ZAP-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	p.Name = "modificado fuera del store"

	again, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Zapato", again.Name)

	missing, err := store.Products().GetByID(ctx, "nada")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, store.Products().Delete(ctx, "nada"), domain.ErrNotFound)
	assert.ErrorIs(t, store.Products().Update(ctx, &entity.Product{ID: "nada"}), domain.ErrNotFound)
	assert.ErrorIs(t, store.Products().Update(ctx, &entity.Product{ID: "p2", SKU: "ZAP-1"}), domain.ErrDuplicate)
}

func TestProductRepo_ListOrdenadoYFiltrado(t *testing.T) {
	store := seed(t)
	ctx := context.Background()

	all, total, err := store.Products().List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "Abrigo", all[0].Name)

	active := true
	items, total, err := store.Products().List(ctx, repository.ProductFilter{Active: &active, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "p1", items[0].ID)

	page, total, err := store.Products().List(ctx, repository.ProductFilter{Limit: 1, Offset: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Empty(t, page)
}

func TestLocationRepo_ListByIDsOmiteInexistentes(t *testing.T) {
	store := seed(t)
	ctx := context.Background()

	locations, err := store.Locations().ListByIDs(ctx, []string{"l1", "nada", "l2"})
	require.NoError(t, err)
	require.Len(t, locations, 2)

	assert.ErrorIs(t, store.Locations().Create(ctx, &entity.Location{ID: "l3", Name: "Sur"}), domain.ErrDuplicate)

	list, total, err := store.Locations().List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "Norte", list[0].Name)
}

func TestTxRunner_ConfirmaORevierte(t *testing.T) {
	store := seed(t)
	ctx := context.Background()
	runner := memory.NewTxRunner(store)
	now := time.Now().UTC()

	err := runner.Run(ctx, func(ctx context.Context, levels repository.StockLevelRepository, adjustments repository.StockAdjustmentRepository, _ repository.StockTransferRepository) error {
		level, created, err := levels.GetOrCreateForUpdate(ctx, &entity.StockLevel{ID: "s1", ProductID: "p1", LocationID: "l1", Quantity: 99})
		if err != nil {
			return err
		}
		if !created || level.Quantity != 0 {
			return errors.New("el nivel nuevo debe empezar en cero")
		}
		if err := levels.UpdateQuantity(ctx, level.ID, 4, now); err != nil {
			return err
		}
		return adjustments.Create(ctx, &entity.StockAdjustment{ID: "a1", ProductID: "p1", LocationID: "l1", Type: entity.AdjustmentTypeInitial, QuantityChange: 4, CurrentStock: 4, Timestamp: now})
	})
	require.NoError(t, err)

	boom := errors.New("fallo")
	err = runner.Run(ctx, func(ctx context.Context, levels repository.StockLevelRepository, _ repository.StockAdjustmentRepository, transfers repository.StockTransferRepository) error {
		if err := levels.UpdateQuantity(ctx, "s1", 100, now); err != nil {
			return err
		}
		if err := transfers.Create(ctx, &entity.StockTransfer{ID: "t1", ProductID: "p1", FromLocationID: "l1", ToLocationID: "l2", Quantity: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	level, err := store.StockLevels().Get(ctx, "p1", "l1")
	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, int64(4), level.Quantity)

	transfers, err := store.Transfers().ListByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, transfers)

	adjustments, err := store.Adjustments().ListByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, adjustments, 1)
}

func TestTxRunner_ContextoCancelado(t *testing.T) {
	store := seed(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := memory.NewTxRunner(store).Run(ctx, func(context.Context, repository.StockLevelRepository, repository.StockAdjustmentRepository, repository.StockTransferRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStockLevelRepo_Consultas(t *testing.T) {
	store := seed(t)
	ctx := context.Background()
	levels := store.StockLevels()

	for _, l := range []*entity.StockLevel{
		{ID: "s1", ProductID: "p1", LocationID: "l1"},
		{ID: "s2", ProductID: "p1", LocationID: "l2"},
		{ID: "s3", ProductID: "p2", LocationID: "l1"},
	} {
		_, _, err := levels.GetOrCreateForUpdate(ctx, l)
		require.NoError(t, err)
	}
	require.NoError(t, levels.UpdateQuantity(ctx, "s1", 2, time.Now()))
	require.NoError(t, levels.UpdateQuantity(ctx, "s2", 1, time.Now()))

	assert.Error(t, levels.UpdateQuantity(ctx, "s1", -1, time.Now()))
	assert.ErrorIs(t, levels.UpdateQuantity(ctx, "nada", 1, time.Now()), domain.ErrStockLevelNotFound)

	byProduct, err := levels.ListByProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, byProduct, 2)
	assert.Equal(t, "Norte", byProduct[0].LocationName)

	byLocation, err := levels.ListByLocation(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, byLocation, 2)
	assert.Equal(t, "Abrigo", byLocation[0].ProductName)

	low, err := levels.LowStock(ctx, 5, false)
	require.NoError(t, err)
	require.Len(t, low, 1, "el producto inactivo no cuenta")
	assert.Equal(t, int64(3), low[0].TotalStock)
	assert.Equal(t, 2, low[0].Locations)
}
